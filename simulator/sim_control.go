package main

import (
	"encoding/json"
	"image"
	"image/png"
	"net/http"

	"github.com/rook-computer/hud/internal/backend/headless"
)

// SimControl exposes the headless display behind the simulated overlay.
type SimControl struct {
	display *headless.Backend
}

func NewSimControl(display *headless.Backend) *SimControl {
	return &SimControl{display: display}
}

type simRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type simState struct {
	Mapped  bool      `json:"mapped"`
	Origin  [2]int    `json:"origin"`
	Size    [2]int    `json:"size"`
	Shape   int       `json:"shapeRects"`
	Copies  int       `json:"copies"`
	Flushes int       `json:"flushes"`
	Maps    int       `json:"maps"`
	Unmaps  int       `json:"unmaps"`
	Closed  bool      `json:"closed"`
	Screen  simRect   `json:"screen"`
	Heads   []simRect `json:"heads,omitempty"`
}

func toSimRect(r image.Rectangle) simRect {
	return simRect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

func (c *SimControl) State() simState {
	st := c.display.State()
	out := simState{
		Mapped:  st.Mapped,
		Origin:  [2]int{st.Origin.X, st.Origin.Y},
		Size:    [2]int{st.Size.X, st.Size.Y},
		Shape:   len(st.Shape),
		Copies:  st.Copies,
		Flushes: st.Flushes,
		Maps:    st.Maps,
		Unmaps:  st.Unmaps,
		Closed:  st.Closed,
		Screen:  toSimRect(c.display.Geometry()),
	}
	if heads, err := c.display.Monitors(); err == nil {
		for _, h := range heads {
			out.Heads = append(out.Heads, toSimRect(h))
		}
	}
	return out
}

func registerSimEndpoints(handler http.Handler, control *SimControl) {
	mux, ok := handler.(*http.ServeMux)
	if !ok {
		// Only supported when the simulator uses the default mux.
		return
	}

	mux.HandleFunc("/sim/snapshot.png", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		if err := png.Encode(w, control.display.Snapshot()); err != nil {
			writeSimError(w, http.StatusInternalServerError, err.Error())
		}
	})

	mux.HandleFunc("/sim/state", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeSimJSON(w, http.StatusOK, control.State())
	})

	mux.HandleFunc("/sim/expose", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var rect simRect
		if err := json.NewDecoder(r.Body).Decode(&rect); err != nil {
			writeSimError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}
		area := image.Rect(rect.X, rect.Y, rect.X+rect.Width, rect.Y+rect.Height)
		if !control.display.Expose(area) {
			writeSimError(w, http.StatusGone, "display disconnected")
			return
		}
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	mux.HandleFunc("/sim/disconnect", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		control.display.Disconnect()
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": message})
}
