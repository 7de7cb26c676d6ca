package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rook-computer/hud/internal/lines"
	"github.com/rook-computer/hud/internal/logging"
	"github.com/rook-computer/hud/internal/osd"
	"github.com/rook-computer/hud/internal/render/layout"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// Overlay is the part of an osd.Session the API drives.
type Overlay interface {
	ID() string
	NumberOfLines() int
	Lines() ([]lines.Line, error)
	Display(i int, l lines.Line) (int, error)
	Scroll(n int) error
	Show() error
	Hide() error
	IsOnscreen() (bool, error)
	Timeout() (int, error)
	BarLength() (int, error)
	Colour() (r, g, b uint16, err error)
	MonitorCount() int
	SelectMonitor(index int) error

	SetFont(spec string) error
	SetColour(name string) error
	SetShadowColour(name string) error
	SetOutlineColour(name string) error
	SetTimeout(seconds int) error
	SetShadowOffset(px int) error
	SetShadowDirection(dir int) error
	SetOutlineOffset(px int) error
	SetHorizontalOffset(px int) error
	SetVerticalOffset(px int) error
	SetPosition(p osd.Position) error
	SetAlignment(a osd.Alignment) error
	SetBarLength(n int) error
	ResetBarLength() error
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type lineJSON struct {
	Kind  string `json:"kind"`
	Text  string `json:"text,omitempty"`
	Value int    `json:"value,omitempty"`
}

type linesResponse struct {
	Lines []lineJSON `json:"lines"`
}

type displayResponse struct {
	OK     bool `json:"ok"`
	Result int  `json:"result"`
}

type statusResponse struct {
	ID        string `json:"id"`
	Lines     int    `json:"lines"`
	Onscreen  bool   `json:"onscreen"`
	Monitors  int    `json:"monitors"`
	Timeout   int    `json:"timeout"`
	BarLength int    `json:"barLength"`
	Colour    string `json:"colour"`
}

type scrollRequest struct {
	N int `json:"n"`
}

type monitorRequest struct {
	Index int `json:"index"`
}

// styleRequest changes only the fields that are present.
type styleRequest struct {
	Font             *string `json:"font"`
	Colour           *string `json:"colour"`
	ShadowColour     *string `json:"shadowColour"`
	OutlineColour    *string `json:"outlineColour"`
	Timeout          *int    `json:"timeout"`
	ShadowOffset     *int    `json:"shadowOffset"`
	ShadowDirection  *int    `json:"shadowDirection"`
	OutlineOffset    *int    `json:"outlineOffset"`
	HorizontalOffset *int    `json:"horizontalOffset"`
	VerticalOffset   *int    `json:"verticalOffset"`
	Position         *string `json:"position"`
	Align            *string `json:"align"`
	BarLength        *int    `json:"barLength"`
}

func apiV1Router(cfg APIV1Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logging.NoopLogger{}
	}
	o := cfg.Overlay
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) { handleStatus(w, r, o) })
	mux.HandleFunc("/lines", func(w http.ResponseWriter, r *http.Request) { handleLines(w, r, o) })
	mux.HandleFunc("/lines/", func(w http.ResponseWriter, r *http.Request) { handleLine(w, r, o, log) })
	mux.HandleFunc("/scroll", func(w http.ResponseWriter, r *http.Request) { handleScroll(w, r, o) })
	mux.HandleFunc("/show", func(w http.ResponseWriter, r *http.Request) { handleVisibility(w, r, o.Show) })
	mux.HandleFunc("/hide", func(w http.ResponseWriter, r *http.Request) { handleVisibility(w, r, o.Hide) })
	mux.HandleFunc("/monitor", func(w http.ResponseWriter, r *http.Request) { handleMonitor(w, r, o) })
	mux.HandleFunc("/style", func(w http.ResponseWriter, r *http.Request) { handleStyle(w, r, o, log) })
	return mux
}

func handleStatus(w http.ResponseWriter, r *http.Request, o Overlay) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	onscreen, err := o.IsOnscreen()
	if err != nil {
		writeOverlayError(w, err)
		return
	}
	timeout, err := o.Timeout()
	if err != nil {
		writeOverlayError(w, err)
		return
	}
	barLength, err := o.BarLength()
	if err != nil {
		writeOverlayError(w, err)
		return
	}
	cr, cg, cb, err := o.Colour()
	if err != nil {
		writeOverlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		ID:        o.ID(),
		Lines:     o.NumberOfLines(),
		Onscreen:  onscreen,
		Monitors:  o.MonitorCount(),
		Timeout:   timeout,
		BarLength: barLength,
		Colour:    fmt.Sprintf("#%02x%02x%02x", cr>>8, cg>>8, cb>>8),
	})
}

func handleLines(w http.ResponseWriter, r *http.Request, o Overlay) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	ls, err := o.Lines()
	if err != nil {
		writeOverlayError(w, err)
		return
	}
	out := linesResponse{Lines: make([]lineJSON, 0, len(ls))}
	for _, l := range ls {
		out.Lines = append(out.Lines, encodeLine(l))
	}
	writeJSON(w, http.StatusOK, out)
}

func handleLine(w http.ResponseWriter, r *http.Request, o Overlay, log logging.Logger) {
	rel := strings.Trim(strings.TrimPrefix(r.URL.Path, "/lines/"), "/")
	i, err := strconv.Atoi(rel)
	if err != nil {
		writeAPIError(w, http.StatusNotFound, "not_found", "line index must be a number")
		return
	}

	switch r.Method {
	case http.MethodGet:
		ls, err := o.Lines()
		if err != nil {
			writeOverlayError(w, err)
			return
		}
		if i < 0 || i >= len(ls) {
			writeAPIError(w, http.StatusBadRequest, "invalid_argument", lines.ErrIndexOutOfRange.Error())
			return
		}
		writeJSON(w, http.StatusOK, encodeLine(ls[i]))
	case http.MethodPut, http.MethodPost:
		var req lineJSON
		if !readJSON(w, r, &req) {
			return
		}
		l, err := decodeLine(req)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_argument", err.Error())
			return
		}
		n, err := o.Display(i, l)
		if err != nil {
			log.Errorf("web", "display line %d: %v", i, err)
			writeOverlayError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, displayResponse{OK: true, Result: n})
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func handleScroll(w http.ResponseWriter, r *http.Request, o Overlay) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	req := scrollRequest{N: 1}
	if r.ContentLength != 0 && !readJSON(w, r, &req) {
		return
	}
	if err := o.Scroll(req.N); err != nil {
		writeOverlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func handleVisibility(w http.ResponseWriter, r *http.Request, change func() error) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if err := change(); err != nil {
		writeOverlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func handleMonitor(w http.ResponseWriter, r *http.Request, o Overlay) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	var req monitorRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := o.SelectMonitor(req.Index); err != nil {
		writeOverlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func handleStyle(w http.ResponseWriter, r *http.Request, o Overlay, log logging.Logger) {
	if r.Method != http.MethodPost && r.Method != http.MethodPatch {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	var req styleRequest
	if !readJSON(w, r, &req) {
		return
	}
	steps, err := styleSteps(o, req)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	for _, st := range steps {
		if err := st.apply(); err != nil {
			log.Errorf("web", "style %s: %v", st.field, err)
			writeOverlayError(w, fmt.Errorf("%s: %w", st.field, err))
			return
		}
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type styleStep struct {
	field string
	apply func() error
}

// styleSteps turns the present fields into setter calls. Enumerations are
// parsed up front so a bad request changes nothing.
func styleSteps(o Overlay, req styleRequest) ([]styleStep, error) {
	var steps []styleStep
	str := func(field string, v *string, set func(string) error) {
		if v != nil {
			steps = append(steps, styleStep{field, func() error { return set(*v) }})
		}
	}
	num := func(field string, v *int, set func(int) error) {
		if v != nil {
			steps = append(steps, styleStep{field, func() error { return set(*v) }})
		}
	}

	str("font", req.Font, o.SetFont)
	str("colour", req.Colour, o.SetColour)
	str("shadowColour", req.ShadowColour, o.SetShadowColour)
	str("outlineColour", req.OutlineColour, o.SetOutlineColour)
	num("timeout", req.Timeout, o.SetTimeout)
	num("shadowOffset", req.ShadowOffset, o.SetShadowOffset)
	num("shadowDirection", req.ShadowDirection, o.SetShadowDirection)
	num("outlineOffset", req.OutlineOffset, o.SetOutlineOffset)
	num("horizontalOffset", req.HorizontalOffset, o.SetHorizontalOffset)
	num("verticalOffset", req.VerticalOffset, o.SetVerticalOffset)
	if req.Position != nil {
		p, err := layout.ParsePosition(*req.Position)
		if err != nil {
			return nil, err
		}
		steps = append(steps, styleStep{"position", func() error { return o.SetPosition(p) }})
	}
	if req.Align != nil {
		a, err := layout.ParseAlignment(*req.Align)
		if err != nil {
			return nil, err
		}
		steps = append(steps, styleStep{"align", func() error { return o.SetAlignment(a) }})
	}
	if req.BarLength != nil {
		n := *req.BarLength
		set := func() error { return o.SetBarLength(n) }
		if n == -1 {
			set = o.ResetBarLength
		}
		steps = append(steps, styleStep{"barLength", set})
	}
	return steps, nil
}

func encodeLine(l lines.Line) lineJSON {
	out := lineJSON{Kind: l.Kind.String()}
	switch {
	case l.Kind == lines.Text:
		out.Text = l.Text
	case l.Kind.IsBar():
		out.Value = l.Value
	}
	return out
}

func decodeLine(in lineJSON) (lines.Line, error) {
	switch strings.ToLower(in.Kind) {
	case "text", "":
		return lines.TextLine(in.Text), nil
	case "percentage":
		return lines.BarLine(lines.Percentage, in.Value), nil
	case "slider":
		return lines.BarLine(lines.Slider, in.Value), nil
	case "blank":
		return lines.BlankLine(), nil
	}
	return lines.Line{}, fmt.Errorf("unknown line kind %q", in.Kind)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeAPIError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// writeOverlayError maps the osd error kinds onto HTTP statuses.
func writeOverlayError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, osd.ErrAlreadyShown), errors.Is(err, osd.ErrAlreadyHidden):
		writeAPIError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, osd.ErrInvalidArgument):
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, osd.ErrNotFound):
		writeAPIError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, osd.ErrClosed):
		writeAPIError(w, http.StatusGone, "closed", err.Error())
	case errors.Is(err, osd.ErrUnsupported):
		writeAPIError(w, http.StatusNotImplemented, "unsupported", err.Error())
	case errors.Is(err, osd.ErrResourceUnavailable):
		writeAPIError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	default:
		writeAPIError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
