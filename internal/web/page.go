package web

import (
	"image"
	"net/http"

	"github.com/flosch/pongo2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/dominant-colors/internal/imaging"
	"github.com/ironsheep/dominant-colors/internal/upload"
)

var indexTemplate = pongo2.Must(pongo2.FromString(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Dominant Colors</title>
  <style>
    body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
    .swatch { display: inline-block; width: 2.5rem; height: 1.5rem; border: 1px solid #999; vertical-align: middle; }
    .error { color: #b00020; }
    img { max-width: 100%; }
  </style>
</head>
<body>
  <h1>Dominant Colors</h1>
  {% if error %}<p class="error">{{ error }}</p>{% endif %}
  <form method="post" enctype="multipart/form-data">
    <input type="file" name="file" accept="{{ accept }}">
    <label>Step <input type="number" name="step" min="1" max="256" value="{{ step }}"></label>
    <button type="submit">Analyze</button>
  </form>
  {% if image_url %}
  <h2>Uploaded image</h2>
  <img src="{{ image_url }}" alt="uploaded image">
  <h2>Colors</h2>
  <table>
    <tr><th></th><th>Hex</th><th>Share</th><th>HSL</th></tr>
    {% for c in colors %}
    <tr>
      <td><span class="swatch" style="background: {{ c.Hex }}"></span></td>
      <td><code>{{ c.Hex }}</code></td>
      <td>{{ c.Percentage|floatformat:2 }}%</td>
      <td>{{ c.HSL.H }}&deg; {{ c.HSL.S }}% {{ c.HSL.L }}%</td>
    </tr>
    {% endfor %}
  </table>
  {% endif %}
</body>
</html>
`))

// page holds the values rendered into the index template.
type page struct {
	Error    string
	Step     int
	ImageURL string
	Colors   []imaging.ColorFrequency
}

func (s *Server) renderIndex(w http.ResponseWriter, status int, p page) {
	if p.Step == 0 {
		p.Step = s.step
	}
	ctx := pongo2.Context{
		"error":     p.Error,
		"step":      p.Step,
		"accept":    s.accept,
		"image_url": p.ImageURL,
		"colors":    p.Colors,
	}

	body, err := indexTemplate.ExecuteBytes(ctx)
	if err != nil {
		s.logger.Error("render index", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, http.StatusOK, page{})
}

// handleUpload stores the posted file, analyzes it and renders the result.
// A request without a file is redirected back to the form.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := formFile(w, r, s.maxBytes)
	if err != nil {
		if errors.Is(err, upload.ErrNoFile) || errors.Is(err, upload.ErrEmptyFilename) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.renderError(w, err, 0)
		return
	}
	defer file.Close()

	step, err := optionalInt(r, "step")
	if err != nil {
		s.renderError(w, err, 0)
		return
	}

	name, _, err := s.store.Save(header.Filename, file)
	if err != nil {
		s.renderError(w, err, step)
		return
	}

	img, err := s.decodeStored(name)
	if err != nil {
		s.renderError(w, err, step)
		return
	}

	resp, err := s.analyze(r.Context(), analyzeRequest{Image: img, Step: step})
	if err != nil {
		s.renderError(w, err, step)
		return
	}
	result := resp.(*imaging.DominantColorsResult)

	s.renderIndex(w, http.StatusOK, page{
		Step:     result.Step,
		ImageURL: "/uploads/" + name,
		Colors:   result.Colors,
	})
}

// decodeStored reads an upload back from disk. Nothing is kept in memory
// between requests.
func (s *Server) decodeStored(name string) (image.Image, error) {
	f, err := s.store.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open stored upload")
	}
	defer f.Close()
	return imaging.Decode(f)
}

// renderError re-renders the form with a message. A disallowed extension
// is not a failed request: the form is simply shown again.
func (s *Server) renderError(w http.ResponseWriter, err error, step int) {
	code := statusCode(err)
	if errors.Is(err, upload.ErrExtensionNotAllowed) {
		code = http.StatusOK
	}
	msg := "Invalid file: " + err.Error()
	if code == http.StatusInternalServerError {
		s.logger.Error("upload failed", zap.Error(err))
		msg = "Something went wrong while processing the file."
	}
	s.renderIndex(w, code, page{Error: msg, Step: step})
}

// handleUploadFile serves a stored upload by name.
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	name := pathVar(r, "name")
	f, err := s.store.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, name, stat.ModTime(), f)
}

func colorCount(response interface{}) (int, bool) {
	result, ok := response.(*imaging.DominantColorsResult)
	if !ok || result == nil {
		return 0, false
	}
	return len(result.Colors), true
}
