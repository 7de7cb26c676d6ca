package main

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/hud/internal/backend/headless"
	"github.com/rook-computer/hud/internal/osd"
	"github.com/rook-computer/hud/internal/web"
)

func newSim(t *testing.T) (*httptest.Server, *osd.Session, *headless.Backend) {
	t.Helper()
	display := headless.New(320, 200, splitHeads(320, 200, 2)...)
	s, err := osd.Create(1, osd.WithBackend(display.Opener()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Destroy() })

	mux := web.NewDefaultMux(web.APIV1Config{Overlay: s}, nil)
	registerSimEndpoints(mux, NewSimControl(display))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, s, display
}

func TestSplitHeads(t *testing.T) {
	assert.Nil(t, splitHeads(100, 50, 0))
	heads := splitHeads(100, 50, 2)
	require.Len(t, heads, 2)
	assert.Equal(t, 50, heads[0].Dx())
	assert.Equal(t, 50, heads[1].Min.X)
}

func TestSnapshotShowsOverlay(t *testing.T) {
	srv, s, display := newSim(t)
	_, err := s.SetText(0, "hi")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return display.State().Mapped }, 3*time.Second, 5*time.Millisecond)

	resp, err := srv.Client().Get(srv.URL + "/sim/snapshot.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestSimState(t *testing.T) {
	srv, _, _ := newSim(t)
	resp, err := srv.Client().Get(srv.URL + "/sim/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st simState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.False(t, st.Mapped)
	assert.Equal(t, 320, st.Screen.Width)
	assert.Len(t, st.Heads, 2)
}

func TestExposeAndDisconnect(t *testing.T) {
	srv, s, _ := newSim(t)

	resp, err := srv.Client().Post(srv.URL+"/sim/expose", "application/json", strings.NewReader(`{"x":0,"y":0,"width":10,"height":10}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = srv.Client().Post(srv.URL+"/sim/expose", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = srv.Client().Get(srv.URL + "/sim/disconnect")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = srv.Client().Post(srv.URL+"/sim/disconnect", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The session notices the lost display and stops accepting work.
	assert.Eventually(t, func() bool {
		_, err := s.SetText(0, "gone")
		return err != nil
	}, 3*time.Second, 5*time.Millisecond)

	resp, err = srv.Client().Post(srv.URL+"/sim/expose", "application/json", strings.NewReader(`{"width":1,"height":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusGone, resp.StatusCode)
}
