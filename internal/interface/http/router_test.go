package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/twin-dashboard/internal/domain/auth"
	"github.com/yanqian/twin-dashboard/internal/domain/dashboard"
	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
	"github.com/yanqian/twin-dashboard/internal/infra/chart"
	"github.com/yanqian/twin-dashboard/internal/infra/chatlog"
	"github.com/yanqian/twin-dashboard/internal/infra/config"
	"github.com/yanqian/twin-dashboard/internal/infra/forecaststore"
	"github.com/yanqian/twin-dashboard/internal/infra/healthrepo"
	"github.com/yanqian/twin-dashboard/internal/infra/missionstore"
	"github.com/yanqian/twin-dashboard/internal/infra/storage"
	"github.com/yanqian/twin-dashboard/internal/infra/userrepo"
	"github.com/yanqian/twin-dashboard/pkg/metrics"
)

type testPublisher struct {
	events []string
}

func (p *testPublisher) Publish(_ context.Context, eventType string, _ int64, _ any) error {
	p.events = append(p.events, eventType)
	return nil
}

func newRouterUnderTest(t *testing.T) (*http.Server, *testPublisher) {
	t.Helper()
	logger := newTestLogger()
	publisher := &testPublisher{}

	authSvc := auth.NewService(auth.Config{Secret: "test-secret", TokenTTL: time.Hour, RefreshTokenTTL: 2 * time.Hour}, userrepo.NewMemoryRepository(), logger)
	healthSvc := healthdata.NewService(healthdata.Config{}, healthrepo.NewMemoryRepository(), storage.NewMemoryStorage(), publisher, logger)
	gen := prediction.NewGenerator(prediction.WithSource(prediction.NewSeededSource(7)))
	predictionSvc := prediction.NewService(prediction.Config{ForecastTTL: time.Hour}, gen, forecaststore.NewMemoryStore(), chart.NewRenderer(), logger)
	chatSvc := twinchat.NewService(nil, missionstore.NewMemoryStore(), chatlog.NewMemoryLog(), logger)
	dashboardSvc := dashboard.NewService(dashboard.Config{}, authSvc, predictionSvc, chatSvc, healthSvc, prediction.DefaultScores(), logger)

	handler := NewHandler(authSvc, healthSvc, predictionSvc, chatSvc, dashboardSvc, nil, logger)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler, metrics.New()), publisher
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func performRequest(server *http.Server, method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &body))
	var nested map[string]string
	require.NoError(t, json.Unmarshal(body["error"], &nested))
	return map[string]map[string]string{"error": nested}
}

func registerAndLogin(t *testing.T, server *http.Server) auth.LoginResponse {
	t.Helper()
	rec := performRequest(server, http.MethodPost, "/register_user", `{"username":"ada","email":"ada@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = performRequest(server, http.MethodPost, "/login", `{"username":"ada","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp
}

func TestRouter_AuthFlow(t *testing.T) {
	server, _ := newRouterUnderTest(t)
	login := registerAndLogin(t, server)

	rec := performRequest(server, http.MethodGet, "/api/v1/auth/me", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var me auth.UserView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	require.Equal(t, "ada", me.Username)

	rec = performRequest(server, http.MethodPost, "/api/v1/auth/refresh", `{"refreshToken":"`+login.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodPost, "/register_user", `{"username":"ada","email":"other@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "username_exists", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(server, http.MethodPost, "/login", `{"username":"ada","password":"wrong-password"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_credentials", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_RequiresToken(t *testing.T) {
	server, _ := newRouterUnderTest(t)

	rec := performRequest(server, http.MethodGet, "/api/v1/dashboard", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "unauthorized", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(server, http.MethodGet, "/health/data", "", "not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_token", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_InvalidJSON(t *testing.T) {
	server, _ := newRouterUnderTest(t)
	rec := performRequest(server, http.MethodPost, "/login", `{"username":123}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_HealthUploadAndList(t *testing.T) {
	server, publisher := newRouterUnderTest(t)
	login := registerAndLogin(t, server)

	sample := healthdata.GenerateSample("watch-1", nil, time.Now())
	payload, err := json.Marshal(sample)
	require.NoError(t, err)

	rec := performRequest(server, http.MethodPost, "/health/upload_health", string(payload), login.Token)
	require.Equal(t, http.StatusCreated, rec.Code)
	var uploaded struct {
		SyncID string `json:"sync_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	require.NotEmpty(t, uploaded.SyncID)
	require.Equal(t, []string{healthdata.EventNewHealthData}, publisher.events)

	rec = performRequest(server, http.MethodGet, "/health/data?limit=5", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Records []healthdata.Record `json:"records"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	require.Equal(t, "watch-1", list.Records[0].Sample.DeviceID)

	rec = performRequest(server, http.MethodGet, "/health/data/"+uploaded.SyncID+"/raw", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"device_id":"watch-1"`)

	rec = performRequest(server, http.MethodPost, "/health/upload_health", `{"device_id":"","heart_rate":500}`, login.Token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_input", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_Predictions(t *testing.T) {
	server, _ := newRouterUnderTest(t)
	login := registerAndLogin(t, server)

	rec := performRequest(server, http.MethodGet, "/api/v1/predictions/latest?mode=tomorrow", "", login.Token)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/predictions", `{"mode":"7days","behavior":{"sleepConsistency":"improving"}}`, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var forecast prediction.Forecast
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forecast))
	require.Equal(t, prediction.ModeSevenDays, forecast.Mode)
	require.Len(t, forecast.Series[prediction.MetricEnergy], 21)

	rec = performRequest(server, http.MethodGet, "/api/v1/predictions/latest?mode=sevenDays", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/predictions/chart?mode=tomorrow&metric=stress", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = performRequest(server, http.MethodGet, "/api/v1/predictions/chart?mode=tomorrow&metric=energy&token="+login.Token, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/predictions/latest?mode=tomorrow", "", login.Token)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/predictions", `{"mode":"tomorrow","scores":{"health":70}}`, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forecast))
	require.Equal(t, prediction.Scores{Health: 70, Energy: 75, Cognitive: 83, Stress: 42}, forecast.Scores)

	rec = performRequest(server, http.MethodPost, "/api/v1/predictions?token="+login.Token, `{"mode":"tomorrow"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/predictions", `{"mode":"yesterday"}`, login.Token)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/predictions/chart?metric=mood", "", login.Token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ChatAndMissions(t *testing.T) {
	server, _ := newRouterUnderTest(t)
	login := registerAndLogin(t, server)

	rec := performRequest(server, http.MethodPost, "/api/v1/chat/messages", `{"text":"hello"}`, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var reply twinchat.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	require.Equal(t, "Hi ada! How are you feeling today?", reply.Messages[0].Text)

	rec = performRequest(server, http.MethodGet, "/api/v1/missions/active", "", login.Token)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/missions/sleep-consistency/accept", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/missions/active", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var active twinchat.ActiveMission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
	require.Equal(t, 5, active.TotalDays)
	require.Equal(t, 0, active.Progress)

	rec = performRequest(server, http.MethodGet, "/api/v1/chat/messages?limit=3", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var history twinchat.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Messages, 3)
	require.Equal(t, "Hi ada! How are you feeling today?", history.Messages[0].Text)
	require.Equal(t, twinchat.SenderUser, history.Messages[1].Sender)

	rec = performRequest(server, http.MethodGet, "/api/v1/chat/messages?limit=many", "", login.Token)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/missions/unknown/decline", "", login.Token)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/missions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Dashboard(t *testing.T) {
	server, _ := newRouterUnderTest(t)
	login := registerAndLogin(t, server)

	rec := performRequest(server, http.MethodGet, "/api/v1/dashboard", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var state dashboard.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, "ada", state.User.Username)
	require.Equal(t, 71, state.Overall)
	require.Len(t, state.ModelAccuracies, 4)
}

func TestRouter_CORSPreflight(t *testing.T) {
	server, _ := newRouterUnderTest(t)
	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Metrics(t *testing.T) {
	server, _ := newRouterUnderTest(t)
	login := registerAndLogin(t, server)

	rec := performRequest(server, http.MethodGet, "/health/data/missing-id/raw", "", login.Token)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = performRequest(server, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `http_requests_total{route="/login",status="200"} 1`)
	require.Contains(t, body, `http_requests_total{route="/health/data/:id/raw",status="404"} 1`)
}
