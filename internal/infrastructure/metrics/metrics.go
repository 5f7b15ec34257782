package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"edge-lab-bot/internal/domain/entity"
	"edge-lab-bot/internal/domain/port"
)

// Collector метрики конвейера и загрузок.
type Collector struct {
	detectionsTotal   *prometheus.CounterVec
	detectionDuration *prometheus.HistogramVec
	uploadSizeBytes   prometheus.Histogram
	decodeFailures    prometheus.Counter
}

// NewCollector регистрирует метрики в reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		detectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgelab_detections_total",
				Help: "Total number of detection runs",
			},
			[]string{"operator", "status"}, // status: ok, invalid_parameter, unsupported_operator, decode_error, error
		),
		detectionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edgelab_detection_duration_seconds",
				Help:    "Detection duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operator"},
		),
		uploadSizeBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "edgelab_upload_size_bytes",
				Help:    "Size of uploaded images in bytes",
				Buckets: []float64{10 * 1024, 100 * 1024, 512 * 1024, 1024 * 1024, 5 * 1024 * 1024, 20 * 1024 * 1024},
			},
		),
		decodeFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "edgelab_decode_failures_total",
				Help: "Total number of uploads that could not be decoded",
			},
		),
	}
}

// ObserveUpload учитывает размер загрузки.
func (c *Collector) ObserveUpload(size int, err error) {
	c.uploadSizeBytes.Observe(float64(size))
	if err != nil {
		c.decodeFailures.Inc()
	}
}

// InstrumentDetector оборачивает детектор счётчиками и гистограммой длительности.
func (c *Collector) InstrumentDetector(next port.EdgeDetector) port.EdgeDetector {
	return &instrumentedDetector{next: next, c: c}
}

type instrumentedDetector struct {
	next port.EdgeDetector
	c    *Collector
}

func (d *instrumentedDetector) Detect(ctx context.Context, img *entity.Raster, op entity.Operator, params entity.ParameterSet) (*entity.DetectionResult, error) {
	start := time.Now()
	result, err := d.next.Detect(ctx, img, op, params)

	d.c.detectionDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
	d.c.detectionsTotal.WithLabelValues(string(op), status(err)).Inc()

	return result, err
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, entity.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, entity.ErrUnsupportedOperator):
		return "unsupported_operator"
	case errors.Is(err, entity.ErrDecode):
		return "decode_error"
	}
	return "error"
}

// Handler отдаёт метрики из gatherer в формате Prometheus.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// InstrumentCodec учитывает размер каждой декодируемой загрузки.
func (c *Collector) InstrumentCodec(next port.ImageCodec) port.ImageCodec {
	return &instrumentedCodec{ImageCodec: next, c: c}
}

type instrumentedCodec struct {
	port.ImageCodec
	c *Collector
}

func (ic *instrumentedCodec) Decode(data []byte) (*entity.Raster, error) {
	r, err := ic.ImageCodec.Decode(data)
	ic.c.ObserveUpload(len(data), err)
	return r, err
}
