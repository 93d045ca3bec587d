package web

import (
	"context"
	"encoding/json"
	"image"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-kit/kit/endpoint"
	"github.com/pkg/errors"

	"github.com/ironsheep/dominant-colors/internal/histogram"
	"github.com/ironsheep/dominant-colors/internal/imaging"
	"github.com/ironsheep/dominant-colors/internal/upload"
)

// analyzeRequest is the decoded input of the analyze endpoint.
type analyzeRequest struct {
	Image  image.Image
	Step   int
	Top    int
	Region *imaging.Region
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MakeAnalyzeEndpoint ranks the dominant colors of an already decoded image.
func MakeAnalyzeEndpoint(analyzer *histogram.Analyzer, defaultStep int) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(analyzeRequest)
		step := req.Step
		if step == 0 {
			step = defaultStep
		}
		result, err := imaging.DominantColors(req.Image, imaging.Options{
			Step:     step,
			Count:    req.Top,
			Analyzer: analyzer,
		}, req.Region)
		if err != nil {
			return nil, errors.Wrap(err, "analyze colors failed")
		}
		return result, nil
	}
}

// makeDecodeAnalyzeRequest reads the multipart "file" field plus optional
// "step", "top" and "region" values. The region is either "x1,y1,x2,y2" or a
// name such as "top-left". Nothing is written to disk.
func makeDecodeAnalyzeRequest(store *upload.Store, maxBytes int64) func(context.Context, *http.Request) (interface{}, error) {
	return func(ctx context.Context, r *http.Request) (interface{}, error) {
		file, header, err := formFile(nil, r, maxBytes)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		if !store.Allowed(header.Filename) {
			return nil, errors.Wrapf(upload.ErrExtensionNotAllowed, "%q", header.Filename)
		}

		req := analyzeRequest{}
		if req.Step, err = optionalInt(r, "step"); err != nil {
			return nil, err
		}
		if req.Top, err = optionalInt(r, "top"); err != nil {
			return nil, err
		}
		if req.Image, err = imaging.Decode(file); err != nil {
			return nil, err
		}
		if req.Region, err = imaging.ParseRegion(r.FormValue("region"), req.Image.Bounds()); err != nil {
			return nil, err
		}
		return req, nil
	}
}

// formFile parses a multipart body of at most maxBytes and returns the
// "file" part. w may be nil when no response writer is at hand.
func formFile(w http.ResponseWriter, r *http.Request, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(maxMemory(maxBytes)); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, errors.Wrapf(upload.ErrTooLarge, "limit is %d bytes", maxBytes)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, upload.ErrNoFile
		}
		return nil, nil, errors.Wrap(err, "parse multipart form")
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, upload.ErrNoFile
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "read form file")
	}
	if header.Filename == "" {
		file.Close()
		return nil, nil, upload.ErrEmptyFilename
	}
	return file, header, nil
}

func maxMemory(maxBytes int64) int64 {
	const defaultMemory = 32 << 20
	if maxBytes > 0 && maxBytes < defaultMemory {
		return maxBytes
	}
	return defaultMemory
}

func optionalInt(r *http.Request, key string) (int, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(histogram.ErrInvalidInput, "%s %q is not an integer", key, v)
	}
	return n, nil
}

func encodeJSONResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

// statusCode maps domain errors to HTTP status codes.
func statusCode(err error) int {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, histogram.ErrInvalidInput),
		errors.Is(err, imaging.ErrDecode),
		errors.Is(err, upload.ErrNoFile),
		errors.Is(err, upload.ErrEmptyFilename),
		errors.Is(err, upload.ErrExtensionNotAllowed):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func encodeErrorResponse(ctx context.Context, err error, w http.ResponseWriter) {
	code := statusCode(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorResponse{Code: code, Message: msg})
}
