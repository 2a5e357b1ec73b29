package unit

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/twin-dashboard/internal/domain/auth"
	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
	"github.com/yanqian/twin-dashboard/internal/infra/events"
	"github.com/yanqian/twin-dashboard/internal/infra/healthrepo"
	"github.com/yanqian/twin-dashboard/internal/infra/storage"
	"github.com/yanqian/twin-dashboard/internal/interface/ws"
)

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestUploadIsPushedToDashboardSocket(t *testing.T) {
	ctx := context.Background()
	authSvc := newAuthService()
	_, err := authSvc.Register(ctx, auth.RegisterRequest{Username: "grace", Email: "grace@example.com", Password: "password123"})
	require.NoError(t, err)
	login, err := authSvc.Login(ctx, auth.LoginRequest{Username: "grace", Password: "password123"})
	require.NoError(t, err)

	bus := events.NewInProcessBus()
	hub := ws.NewHub(ws.Config{PingInterval: time.Minute}, authSvc, newTestLogger())
	bus.SetHandler(hub.Dispatch)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = bus.Close()
		_ = hub.Close(closeCtx)
		srv.Close()
	})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + login.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	welcome := readMessage(t, conn)
	require.Equal(t, ws.TypeWelcome, welcome["type"])
	require.EqualValues(t, login.User.ID, welcome["user_id"])

	healthSvc := healthdata.NewService(healthdata.Config{}, healthrepo.NewMemoryRepository(), storage.NewMemoryStorage(), bus, newTestLogger())
	record, err := healthSvc.Upload(ctx, login.User.ID, healthdata.GenerateSample("watch-7", nil, time.Now()))
	require.NoError(t, err)

	pushed := readMessage(t, conn)
	require.Equal(t, healthdata.EventNewHealthData, pushed["type"])
	require.Equal(t, record.ID, pushed["sync_id"])
	data, ok := pushed["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "watch-7", data["device_id"])
}
