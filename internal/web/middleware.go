package web

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	metricsNamespace = "dominant_colors"
	metricsSubsystem = "web"
)

// CreateLoggingMiddleware logs every endpoint call with its latency and error.
func CreateLoggingMiddleware(logger *zap.Logger, method string) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			defer func(begin time.Time) {
				fields := []zap.Field{
					zap.String("method", method),
					zap.Duration("latency", time.Since(begin)),
				}
				if err != nil {
					fields = append(fields, zap.Error(err), zap.Int("status", statusCode(err)))
					if statusCode(err) >= 500 {
						logger.Error("request failed", fields...)
						return
					}
					logger.Warn("request rejected", fields...)
					return
				}
				logger.Debug("request served", fields...)
			}(time.Now())
			return next(ctx, request)
		}
	}
}

// instruments holds the endpoint metrics registered on a server's registry.
type instruments struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	colorsReturned metrics.Histogram
}

func newInstruments(registry stdprometheus.Registerer) *instruments {
	fieldKeys := []string{"method", "error"}

	count := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "request_count",
		Help:      "Number of analyze requests received.",
	}, fieldKeys)
	latency := stdprometheus.NewHistogramVec(stdprometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "request_latency_seconds",
		Help:      "Duration of analyze requests in seconds.",
		Buckets:   stdprometheus.DefBuckets,
	}, fieldKeys)
	colors := stdprometheus.NewHistogramVec(stdprometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "colors_returned",
		Help:      "Number of dominant colors returned per successful request.",
		Buckets:   stdprometheus.LinearBuckets(1, 1, 10),
	}, []string{"method"})
	registry.MustRegister(count, latency, colors)

	return &instruments{
		requestCount:   kitprometheus.NewCounter(count),
		requestLatency: kitprometheus.NewHistogram(latency),
		colorsReturned: kitprometheus.NewHistogram(colors),
	}
}

// CreateMetricsMiddleware records request counts, latencies and result sizes.
func (m *instruments) CreateMetricsMiddleware(method string) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			defer func(begin time.Time) {
				lvs := []string{"method", method, "error", fmt.Sprint(err != nil)}
				m.requestCount.With(lvs...).Add(1)
				m.requestLatency.With(lvs...).Observe(time.Since(begin).Seconds())
				if err == nil {
					if n, ok := colorCount(response); ok {
						m.colorsReturned.With("method", method).Observe(float64(n))
					}
				}
			}(time.Now())
			return next(ctx, request)
		}
	}
}
