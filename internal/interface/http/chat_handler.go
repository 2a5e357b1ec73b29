package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
)

// ChatGreeting returns the twin's opening messages.
func (h *Handler) ChatGreeting(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	msgs, err := h.chatSvc.Greeting(c.Request.Context(), claims.UserID, claims.Username)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, twinchat.Reply{Messages: msgs})
}

// ChatMessage answers one user message.
func (h *Handler) ChatMessage(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req twinchat.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	reply, err := h.chatSvc.Send(c.Request.Context(), claims.UserID, claims.Username, req)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Missions lists the mission catalog.
func (h *Handler) Missions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"missions": h.chatSvc.Missions()})
}

// AcceptMission activates the mission in the path.
func (h *Handler) AcceptMission(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	active, reply, err := h.chatSvc.Accept(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activeMission": active, "messages": reply.Messages})
}

// DeclineMission acknowledges a declined suggestion.
func (h *Handler) DeclineMission(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	reply, err := h.chatSvc.Decline(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// ActiveMission returns the caller's current mission.
func (h *Handler) ActiveMission(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	active, err := h.chatSvc.Active(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, active)
}

// ChatHistory returns the caller's recorded conversation, oldest first.
func (h *Handler) ChatHistory(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		limit = parsed
	}
	msgs, err := h.chatSvc.History(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, twinchat.Reply{Messages: msgs})
}
