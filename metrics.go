package dictcol

import (
	"github.com/hexbee-net/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hexbee-net/dictcol/deserialize"
	"github.com/hexbee-net/dictcol/encoding"
)

// Metrics counts the pages, arrays and failures of column readers.
// A single Metrics may be shared by several readers.
type Metrics struct {
	pages        *prometheus.CounterVec
	chunks       prometheus.Counter
	rows         prometheus.Counter
	decodeErrors *prometheus.CounterVec
}

// NewMetrics creates the reader metrics and registers them with reg.
// Nothing is registered when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		pages: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "dictcol",
			Name:      "pages_total",
			Help:      "Total number of pages read, by kind.",
		}, []string{"kind"}),
		chunks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "dictcol",
			Name:      "chunks_total",
			Help:      "Total number of dictionary arrays produced.",
		}),
		rows: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "dictcol",
			Name:      "rows_total",
			Help:      "Total number of rows produced.",
		}),
		decodeErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "dictcol",
			Name:      "decode_errors_total",
			Help:      "Total number of column chunks that failed to decode, by reason.",
		}, []string{"reason"}),
	}
}

func errorReason(err error) string {
	switch errors.Cause(err) {
	case deserialize.ErrMissingDictionary:
		return "missing_dictionary"
	case deserialize.ErrKeyOverflow:
		return "key_overflow"
	case deserialize.ErrKeyOutOfBounds:
		return "key_out_of_bounds"
	case deserialize.ErrNotImplemented:
		return "not_implemented"
	case encoding.ErrTruncatedStream:
		return "truncated_stream"
	case encoding.ErrInvalidRun:
		return "invalid_run"
	default:
		return "other"
	}
}
