package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/hud/internal/backend/headless"
	"github.com/rook-computer/hud/internal/lines"
	"github.com/rook-computer/hud/internal/metrics"
	"github.com/rook-computer/hud/internal/osd"
)

var _ Overlay = (*osd.Session)(nil)

type fixture struct {
	srv     *httptest.Server
	session *osd.Session
	backend *headless.Backend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := headless.New(640, 480)
	m := metrics.New()
	s, err := osd.Create(3, osd.WithBackend(b.Opener()), osd.WithMetrics(m))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Destroy() })

	srv := httptest.NewServer(NewDefaultMux(APIV1Config{Overlay: s}, m.Registry()))
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, session: s, backend: b}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestPutLineShowsOverlay(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPut, "/api/v1/lines/0", `{"kind":"text","text":"hello"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, 5.0, body["result"])

	resp, body = f.do(t, http.MethodPut, "/api/v1/lines/1", `{"kind":"percentage","value":150}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100.0, body["result"])

	ls, err := f.session.Lines()
	require.NoError(t, err)
	assert.Equal(t, "hello", ls[0].Text)
	assert.Equal(t, lines.Percentage, ls[1].Kind)

	resp, body = f.do(t, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["onscreen"])
	assert.Equal(t, 3.0, body["lines"])
	assert.Equal(t, "#00ff00", body["colour"])
	assert.Equal(t, -1.0, body["monitors"])
	assert.Equal(t, f.session.ID(), body["id"])

	resp, body = f.do(t, http.MethodGet, "/api/v1/lines/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "percentage", body["kind"])
	assert.Equal(t, 100.0, body["value"])
}

func TestLineErrors(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPut, "/api/v1/lines/7", `{"text":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_argument", body["error"])

	resp, _ = f.do(t, http.MethodPut, "/api/v1/lines/abc", `{"text":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPut, "/api/v1/lines/0", `{"kind":"sparkline"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(t, http.MethodPut, "/api/v1/lines/0", `{"colour":"red"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "bad_request", body["error"])

	resp, _ = f.do(t, http.MethodDelete, "/api/v1/lines/0", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestScrollAndLines(t *testing.T) {
	f := newFixture(t)
	for i, text := range []string{"a", "b", "c"} {
		_, err := f.session.SetText(i, text)
		require.NoError(t, err)
	}

	resp, _ := f.do(t, http.MethodPost, "/api/v1/scroll", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodPost, "/api/v1/scroll", `{"n":9}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := f.do(t, http.MethodGet, "/api/v1/lines", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := body["lines"].([]any)
	require.Len(t, got, 3)
	assert.Equal(t, map[string]any{"kind": "text", "text": "b"}, got[0])
	assert.Equal(t, map[string]any{"kind": "blank"}, got[2])
}

func TestShowHide(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/v1/hide", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", body["error"])

	resp, _ = f.do(t, http.MethodPost, "/api/v1/show", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	on, err := f.session.IsOnscreen()
	require.NoError(t, err)
	assert.True(t, on)

	resp, _ = f.do(t, http.MethodGet, "/api/v1/show", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/hide", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Eventually(t, func() bool { return !f.backend.State().Mapped }, 3*time.Second, 5*time.Millisecond)
}

func TestStyle(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/api/v1/style", `{"colour":"red","timeout":4,"barLength":6,"align":"center"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	timeout, err := f.session.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 4, timeout)
	n, err := f.session.BarLength()
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	resp, _ = f.do(t, http.MethodPost, "/api/v1/style", `{"barLength":-1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	n, err = f.session.BarLength()
	require.NoError(t, err)
	assert.Equal(t, -1, n)

	// a bad enumeration changes nothing
	resp, _ = f.do(t, http.MethodPost, "/api/v1/style", `{"timeout":9,"position":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	timeout, err = f.session.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 4, timeout)

	resp, body := f.do(t, http.MethodPost, "/api/v1/style", `{"colour":"not-a-colour"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["message"], "colour")

	resp, _ = f.do(t, http.MethodPost, "/api/v1/style", `{"shadowDirection":12}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMonitorFallback(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodPost, "/api/v1/monitor", `{"index":2}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unavailable", body["error"])
}

func TestClosedSession(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Destroy())
	resp, body := f.do(t, http.MethodGet, "/api/v1/status", "")
	assert.Equal(t, http.StatusGone, resp.StatusCode)
	assert.Equal(t, "closed", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.SetText(0, "count me")
	require.NoError(t, err)

	resp, err := f.srv.Client().Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `hud_transitions_total{direction="show"} 1`)
	assert.Contains(t, string(body), "hud_sessions_active 1")
}

func TestHTTPServerLifecycle(t *testing.T) {
	f := newFixture(t)
	s := NewHTTPServer(ServerConfig{ListenAddr: "127.0.0.1:0", DevMode: true})
	s.Handler = NewDefaultMux(APIV1Config{Overlay: f.session}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))

	req, err := http.NewRequest(http.MethodOptions, "http://"+s.ListenAddr()+"/api/v1/status", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://remote.test")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://remote.test", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get("http://" + s.ListenAddr() + "/api/v1/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
	assert.Error(t, s.Start(ctx))
}
