package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/railfence/pkg/buildinfo"
	"github.com/matzehuels/railfence/pkg/errors"
	"github.com/matzehuels/railfence/pkg/imaging"
	"github.com/matzehuels/railfence/pkg/pipeline"
	"github.com/matzehuels/railfence/pkg/render"
)

// Rails is a rail count that decodes from a JSON number or a numeric string.
type Rails struct {
	Value int
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rails) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil && f == float64(int(f)) {
			n, err = int(f), nil
		}
	}
	if err != nil {
		return errors.New(errors.ErrCodeInvalidRails, "rails must be an integer, got %s", data)
	}
	r.Value, r.Set = n, true
	return nil
}

// Or returns the rail count, or def when none was given.
func (r Rails) Or(def int) int {
	if !r.Set {
		return def
	}
	return r.Value
}

// TextRequest is the body of the text endpoints.
type TextRequest struct {
	Text  string `json:"text"`
	Rails Rails  `json:"rails"`
}

// TextResponse is returned by the text endpoints.
type TextResponse struct {
	Success       bool   `json:"success"`
	Result        string `json:"result"`
	Length        int    `json:"length"`
	Rails         int    `json:"rails"`
	Visualization string `json:"visualization"`
}

// ImageRequest is the body of the image endpoints.
type ImageRequest struct {
	ImageData string `json:"imageData"`
	Rails     Rails  `json:"rails"`
}

// ImageResponse is returned by the image endpoints.
type ImageResponse struct {
	Success   bool   `json:"success"`
	ImageData string `json:"imageData"`
	Pixels    int    `json:"pixels"`
	Rails     int    `json:"rails"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Channels  int    `json:"channels"`
}

// VisualizeRequest is the body of the visualize endpoint.
type VisualizeRequest struct {
	Text   string `json:"text"`
	Rails  Rails  `json:"rails"`
	Format string `json:"format"`
}

// VisualizeResponse is returned by the visualize endpoint. Binary formats
// are returned as data URLs.
type VisualizeResponse struct {
	Success bool   `json:"success"`
	Format  string `json:"format"`
	Output  string `json:"output"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	respond(w, http.StatusOK, HealthResponse{Status: "ok", Version: info.Version, Commit: info.Commit})
}

func (s *Server) handleText(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TextRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}

		rails := req.Rails.Or(s.cfg.DefaultRails)
		res, err := s.runner.Execute(r.Context(), pipeline.Options{
			Mode:      pipeline.ModeText,
			Operation: op,
			Rails:     rails,
			Text:      req.Text,
			Visualize: true,
		})
		if err != nil {
			respondError(w, err)
			return
		}

		// A fence over the cell budget is left out; the result still stands.
		var viz string
		if err := render.CheckSize(*res.Grid); err != nil {
			s.logger.Debug("visualization skipped", "rails", rails, "length", res.Length, "err", err)
		} else {
			viz = render.HTML(*res.Grid)
		}

		respond(w, http.StatusOK, TextResponse{
			Success:       true,
			Result:        res.Text,
			Length:        res.Length,
			Rails:         rails,
			Visualization: viz,
		})
	}
}

func (s *Server) handleImage(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImageRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}

		rails := req.Rails.Or(s.cfg.DefaultRails)
		if err := errors.ValidateRails(rails); err != nil {
			respondError(w, err)
			return
		}
		data, err := imaging.ParseDataURL(req.ImageData)
		if err != nil {
			respondError(w, err)
			return
		}

		res, err := s.runner.Execute(r.Context(), pipeline.Options{
			Mode:      pipeline.ModeImage,
			Operation: op,
			Rails:     rails,
			Image:     data,
		})
		if err != nil {
			respondError(w, err)
			return
		}

		respond(w, http.StatusOK, ImageResponse{
			Success:   true,
			ImageData: imaging.DataURL(imaging.MIMEPNG, res.Image),
			Pixels:    res.Pixels,
			Rails:     rails,
			Width:     res.Width,
			Height:    res.Height,
			Channels:  res.Channels,
		})
	}
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	var req VisualizeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Format == "" {
		req.Format = render.FormatHTML
	}

	out, _, err := s.runner.Visualize(r.Context(), req.Text, req.Rails.Or(s.cfg.DefaultRails), req.Format)
	if err != nil {
		respondError(w, err)
		return
	}

	output := string(out)
	if render.IsBinary(req.Format) {
		output = imaging.DataURL(mimeTypes[req.Format], out)
	}
	respond(w, http.StatusOK, VisualizeResponse{Success: true, Format: req.Format, Output: output})
}

var mimeTypes = map[string]string{
	render.FormatPNG: imaging.MIMEPNG,
	render.FormatPDF: "application/pdf",
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		var coded *errors.Error
		switch {
		case stderrors.As(err, &tooLarge):
			return errors.New(errors.ErrCodePayloadTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
		case stderrors.As(err, &coded):
			return coded
		case stderrors.Is(err, io.EOF):
			return errors.New(errors.ErrCodeInvalidInput, "request body must be a JSON object")
		default:
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
		}
	}
	return nil
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if code == errors.ErrCodeInternal {
		msg = "internal server error"
	}
	respond(w, errors.HTTPStatus(err), ErrorResponse{Success: false, Error: msg, Code: string(code)})
}

func errNotFound(r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error: "method " + r.Method + " not allowed on " + r.URL.Path,
		Code:  "METHOD_NOT_ALLOWED",
	})
}
