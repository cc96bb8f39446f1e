package eventstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	opEncode = "encode"
	opDecode = "decode"
)

// Metrics holds Prometheus metrics for codec activity. Wire it into an
// Encoder or Decoder with WithMetrics; the byte-level codec itself stays
// uninstrumented.
type Metrics struct {
	messagesTotal *prometheus.CounterVec
	bytesTotal    *prometheus.CounterVec
	messageSize   *prometheus.HistogramVec
}

// NewMetrics creates codec metrics registered on the default registerer.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates codec metrics registered on reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		messagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventstream_messages_total",
				Help: "Total number of messages encoded and decoded",
			},
			[]string{"operation", "status"},
		),

		bytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventstream_bytes_total",
				Help: "Total framed bytes produced by encoding and consumed by decoding",
			},
			[]string{"operation"},
		),

		messageSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventstream_message_size_bytes",
				Help:    "Size distribution of framed messages in bytes",
				Buckets: prometheus.ExponentialBuckets(16, 4, 10),
			},
			[]string{"operation"},
		),
	}
}

// RecordEncode records one encode attempt and, on success, the framed size.
func (m *Metrics) RecordEncode(size int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.messagesTotal.WithLabelValues(opEncode, statusError).Inc()
		return
	}
	m.messagesTotal.WithLabelValues(opEncode, statusSuccess).Inc()
	m.bytesTotal.WithLabelValues(opEncode).Add(float64(size))
	m.messageSize.WithLabelValues(opEncode).Observe(float64(size))
}

// RecordDecode records one decode attempt and, on success, the framed size.
func (m *Metrics) RecordDecode(size int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.messagesTotal.WithLabelValues(opDecode, statusError).Inc()
		return
	}
	m.messagesTotal.WithLabelValues(opDecode, statusSuccess).Inc()
	m.bytesTotal.WithLabelValues(opDecode).Add(float64(size))
	m.messageSize.WithLabelValues(opDecode).Observe(float64(size))
}
