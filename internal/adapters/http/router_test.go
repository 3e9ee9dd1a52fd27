package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Composite/internal/adapters/livekit"
	"github.com/dkeye/Composite/internal/adapters/signal"
	"github.com/dkeye/Composite/internal/app"
	"github.com/dkeye/Composite/internal/app/orch"
	"github.com/dkeye/Composite/internal/config"
	"github.com/dkeye/Composite/internal/core"
)

type testServer struct {
	*httptest.Server
	client *http.Client
	orch   *orch.Orchestrator
}

func newTestServer(t *testing.T, limit int) *testServer {
	t.Helper()

	cfg := &config.Config{
		Mode:        "test",
		StaticPath:  t.TempDir(),
		Secret:      "test-secret-test-secret-test-sec",
		CORSOrigins: []string{"http://localhost:3000"},
	}
	o := orch.NewOrchestrator(app.SimplePolicy{}, func(app.SessionID) orch.Options {
		return orch.Options{
			Initial: core.InitialOptions{DisplayName: "Guest"},
			Events:  signal.NewEventFeed(),
		}
	})
	limiter := signal.NewIntentRateLimiter(limit, time.Minute)
	deps := Deps{
		Orch:    o,
		WS:      signal.NewStateWSController(o, limiter),
		Limiter: limiter,
		LiveKit: livekit.NewHub(livekit.Config{}),
	}

	srv := httptest.NewServer(Handler(cfg, SetupRouter(context.Background(), cfg, deps)))
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		srv.Close()
		o.Close()
	})
	return &testServer{Server: srv, client: &http.Client{Jar: jar}, orch: o}
}

func (s *testServer) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

type stateFrame struct {
	Type   string `json:"type"`
	Seq    uint64 `json:"seq"`
	Action string `json:"action"`
	State  struct {
		LocalUserState struct {
			DisplayName string `json:"displayName"`
		} `json:"localUserState"`
	} `json:"state"`
}

func (s *testServer) state(t *testing.T) stateFrame {
	t.Helper()
	resp := s.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var f stateFrame
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
	return f
}

func TestStateAndActions(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, 100)

	first := s.state(t)
	require.Equal(t, "snapshot", first.Type)
	require.Equal(t, "Guest", first.State.LocalUserState.DisplayName)
	require.Equal(t, 1, s.orch.Registry.Len())

	resp := s.do(t, http.MethodPost, "/api/actions", `{"type":"DisplayNameUpdated","name":"  Ann  "}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	// Same cookie, same composite.
	next := s.state(t)
	require.Equal(t, "Ann", next.State.LocalUserState.DisplayName)
	require.Equal(t, "DisplayNameUpdated", next.Action)
	require.Greater(t, next.Seq, first.Seq)
	require.Equal(t, 1, s.orch.Registry.Len())
}

func TestActionErrors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, 2)

	resp := s.do(t, http.MethodPost, "/api/actions", `{"type":"Teleport"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/actions", `not json`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/actions", `{"type":"HoldRequested"}`)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestParticipantsNeedCallScreen(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, 100)

	resp := s.do(t, http.MethodGet, "/api/participants", "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/actions", `{"type":"CallingViewLaunched"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		resp, err := s.client.Get(s.URL + "/api/participants")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	resp = s.do(t, http.MethodGet, "/api/participants", "")
	var body participantsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.Local.IsLocalParticipant)
	require.Equal(t, "Guest", body.Local.DisplayName)
	require.Empty(t, body.Remote)
}

func TestViewDataAndRelease(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, 100)
	_ = s.state(t)

	resp := s.do(t, http.MethodPut, "/api/participants/u1/view-data", `{"displayName":"Bob","avatarUrl":"https://a/b.png"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	comp, ok := s.orch.Registry.Get(s.orch.Registry.IDs()[0])
	require.True(t, ok)
	vd, ok := comp.ViewData().ViewData("u1")
	require.True(t, ok)
	require.Equal(t, "Bob", vd.DisplayName)

	resp = s.do(t, http.MethodPut, "/api/participants/u1/view-data", `{"displayName":"`+strings.Repeat("x", 300)+`"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/session", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 0, s.orch.Registry.Len())
}

func TestLiveKitRoutes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, 100)

	resp := s.do(t, http.MethodGet, "/api/livekit/token", "")
	require.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/hooks/livekit", `{"event":"room_started","room":{"name":"lobby","sid":"RM_1"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/hooks/livekit", `{`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, 100)

	req, err := http.NewRequest(http.MethodOptions, s.URL+"/api/actions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
