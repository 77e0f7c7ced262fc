package export

import (
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchpad/sketchpad/backend-go/internal/document"
	"github.com/sketchpad/sketchpad/backend-go/internal/engine"
	"github.com/sketchpad/sketchpad/backend-go/internal/session"
)

type stubFrames map[string]engine.Frame

func (s stubFrames) Frame(id string) (engine.Frame, error) {
	if id == "sess_broken" {
		return engine.Frame{}, errors.New("boom")
	}
	f, ok := s[id]
	if !ok {
		return engine.Frame{}, fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	return f, nil
}

func serve(t *testing.T, frames FrameSource, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/api/sessions/{sessionId}/export.png", NewHandler(frames).ExportPNG)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestExportPNG(t *testing.T) {
	e := engine.NewEngine()
	e.SetViewport(320, 200)
	e.LoadDocument(document.NewSampleDocument())
	f, err := e.Frame()
	require.NoError(t, err)

	rec := serve(t, stubFrames{"sess_a": f}, "/api/sessions/sess_a/export.png?name=my%20drawing")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="my-drawing.png"`, rec.Header().Get("Content-Disposition"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestExportPNGErrors(t *testing.T) {
	frames := stubFrames{"sess_empty": engine.Frame{}}

	assert.Equal(t, http.StatusNotFound, serve(t, frames, "/api/sessions/sess_nope/export.png").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(t, frames, "/api/sessions/sess_broken/export.png").Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, frames, "/api/sessions/sess_empty/export.png").Code)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "sketch", sanitizeName(""))
	assert.Equal(t, "a-b_c-1", sanitizeName("a/b_c 1"))
}
