// Package web serves the upload form, a JSON analyze API and the stored
// uploads over HTTP.
package web

import (
	"net/http"
	"strings"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ironsheep/dominant-colors/internal/histogram"
	"github.com/ironsheep/dominant-colors/internal/upload"
)

// Options configures a Server.
type Options struct {
	Analyzer *histogram.Analyzer
	Store    *upload.Store
	// Step is used when a request does not name one.
	Step           int
	MaxUploadBytes int64
	// Metrics exposes /metrics backed by a registry private to the server.
	Metrics bool
	Logger  *zap.Logger
}

// Server is the HTTP front end.
type Server struct {
	store    *upload.Store
	step     int
	maxBytes int64
	accept   string
	logger   *zap.Logger
	registry *prometheus.Registry
	analyze  endpoint.Endpoint
	router   *mux.Router
}

// New wires the routes of a Server.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("web: upload store is required")
	}
	if opts.Step == 0 {
		opts.Step = histogram.DefaultStep
	}
	if opts.Step < 0 || opts.Step > histogram.MaxStep {
		return nil, errors.Wrapf(histogram.ErrInvalidInput, "default step %d", opts.Step)
	}
	if opts.Analyzer == nil {
		a, err := histogram.NewAnalyzer(histogram.DefaultConfig())
		if err != nil {
			return nil, err
		}
		opts.Analyzer = a
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Server{
		store:    opts.Store,
		step:     opts.Step,
		maxBytes: opts.MaxUploadBytes,
		accept:   acceptList(opts.Store),
		logger:   opts.Logger,
		registry: prometheus.NewRegistry(),
	}

	ins := newInstruments(s.registry)
	analyze := MakeAnalyzeEndpoint(opts.Analyzer, opts.Step)
	s.analyze = endpoint.Chain(
		CreateLoggingMiddleware(s.logger, "upload"),
		ins.CreateMetricsMiddleware("upload"),
	)(analyze)
	api := endpoint.Chain(
		CreateLoggingMiddleware(s.logger, "api"),
		ins.CreateMetricsMiddleware("api"),
	)(analyze)

	r := mux.NewRouter()
	r.Methods("GET").Path("/").HandlerFunc(s.handleIndex)
	r.Methods("POST").Path("/").HandlerFunc(s.handleUpload)
	r.Methods("POST").Path("/api/v1/colors").Handler(
		httptransport.NewServer(
			api,
			makeDecodeAnalyzeRequest(opts.Store, opts.MaxUploadBytes),
			encodeJSONResponse,
			httptransport.ServerErrorEncoder(encodeErrorResponse),
		),
	)
	r.Methods("GET").Path("/uploads/{name}").HandlerFunc(s.handleUploadFile)
	if opts.Metrics {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	s.router = r

	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Registry returns the registry holding the server metrics.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

func pathVar(r *http.Request, key string) string {
	return mux.Vars(r)[key]
}

func acceptList(store *upload.Store) string {
	exts := store.Extensions()
	for i, ext := range exts {
		exts[i] = "." + ext
	}
	return strings.Join(exts, ",")
}
