// Package scoring provides the batched scorer backends used by the ranking
// engine: a linear model, a CEL expression, a remote model service and a
// Redis-backed score cache that decorates any of them.
package scoring

import (
	"context"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/assigner/internal/domain/model"
	"github.com/okian/assigner/internal/domain/ranking"
	"github.com/okian/assigner/pkg/metrics"
)

// Scorer is a ranking.Scorer that can report which backend it is.
type Scorer interface {
	ranking.Scorer
	Name() string
}

// Fingerprinter is implemented by scorers whose output depends on more than
// their backend kind, such as model weights or an expression.
type Fingerprinter interface {
	Fingerprint() string
}

// Fingerprint identifies the model behind s. Two scorers with equal
// fingerprints produce equal scores for equal vectors. Scorers without a
// Fingerprint method are identified by name only.
func Fingerprint(s Scorer) string {
	if f, ok := s.(Fingerprinter); ok {
		return f.Fingerprint()
	}
	return ""
}

// hashParts returns a short stable hash of parts, each terminated by NUL.
func hashParts(parts ...string) string {
	h := xxhash.New()
	for _, p := range parts {
		_, _ = h.WriteString(p)
		_, _ = h.Write([]byte{0})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// instrumented records latency and failures of every call to the wrapped scorer.
type instrumented struct {
	next Scorer
}

// Instrument wraps s so each batch records Prometheus scoring metrics.
func Instrument(s Scorer) Scorer {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{next: s}
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Fingerprint() string { return Fingerprint(i.next) }

func (i *instrumented) Score(ctx context.Context, batch []model.FeatureVector) ([]float64, error) {
	start := time.Now()
	scores, err := i.next.Score(ctx, batch)
	metrics.RecordScoringLatency(i.next.Name(), float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordScoringError(i.next.Name())
	}
	return scores, err
}
