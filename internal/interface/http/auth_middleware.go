package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/twin-dashboard/internal/domain/auth"
	apperrors "github.com/yanqian/twin-dashboard/pkg/errors"
)

// authMiddleware accepts a Bearer header, or ?token= on GET so the forecast
// chart can be used directly as an <img> source.
func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, httpErr := requestToken(c)
		if httpErr != nil {
			abortWithError(c, httpErr)
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if apperrors.IsCode(err, apperrors.CodeInvalidToken) {
				abortWithError(c, NewHTTPError(http.StatusUnauthorized, apperrors.CodeInvalidToken, apperrors.MessageOf(err), err))
				return
			}
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, apperrors.CodeAuth, "token validation failed", err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

func requestToken(c *gin.Context) (string, *HTTPError) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if token := c.Query("token"); token != "" && c.Request.Method == http.MethodGet {
			return token, nil
		}
		return "", NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "missing authorization header", nil)
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", NewHTTPError(http.StatusUnauthorized, apperrors.CodeUnauthorized, "invalid authorization header", nil)
	}
	return strings.TrimSpace(token), nil
}
