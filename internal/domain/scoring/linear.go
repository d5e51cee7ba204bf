package scoring

import (
	"context"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/okian/assigner/internal/domain/model"
)

// Link functions applied to the linear predictor.
const (
	LinkIdentity = "identity"
	LinkLogistic = "logistic"
)

// LinearModel scores a vector as bias + sum(weight * feature), optionally
// passed through the logistic function.
type LinearModel struct {
	Bias    float64            `yaml:"bias" json:"bias"`
	Weights map[string]float64 `yaml:"weights" json:"weights"`
	Link    string             `yaml:"link" json:"link"`

	// weights in model.FeatureNames order, filled by validate.
	ordered []float64
}

// DefaultLinearModel returns the built-in model used when no model file is
// configured. It favours skill coverage, then spare bandwidth.
func DefaultLinearModel() *LinearModel {
	m := &LinearModel{
		Bias: -3,
		Weights: map[string]float64{
			model.FeatureMatchedSkillPercentage: 0.05,
			model.FeatureMatchedSkillCount:      0.5,
			model.FeatureAvailableBandwidth:     0.1,
		},
		Link: LinkLogistic,
	}
	_ = m.validate()
	return m
}

// NewLinearModel builds a model from weights keyed by feature name.
func NewLinearModel(bias float64, weights map[string]float64, link string) (*LinearModel, error) {
	m := &LinearModel{Bias: bias, Weights: weights, Link: link}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadLinearModel reads a model from a YAML (or JSON) file.
//
//	bias: -3
//	link: logistic
//	weights:
//	  matched_skill_percentage: 0.05
//	  available_bandwidth: 0.1
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidModel, path, err)
	}

	var m LinearModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidModel, path, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *LinearModel) validate() error {
	switch m.Link {
	case "":
		m.Link = LinkIdentity
	case LinkIdentity, LinkLogistic:
	default:
		return fmt.Errorf("%w: unknown link %q", ErrInvalidModel, m.Link)
	}

	if math.IsNaN(m.Bias) || math.IsInf(m.Bias, 0) {
		return fmt.Errorf("%w: bias must be finite", ErrInvalidModel)
	}

	m.ordered = make([]float64, len(model.FeatureNames))
	for name, w := range m.Weights {
		i := slices.Index(model.FeatureNames, name)
		if i < 0 {
			return fmt.Errorf("%w: unknown feature %q", ErrInvalidModel, name)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight for %q must be finite", ErrInvalidModel, name)
		}
		m.ordered[i] = w
	}
	return nil
}

// Name identifies the backend.
func (m *LinearModel) Name() string { return "linear" }

// Fingerprint hashes the link, bias and weights in feature order.
func (m *LinearModel) Fingerprint() string {
	parts := make([]string, 0, len(m.ordered)+2)
	parts = append(parts, m.Link, strconv.FormatFloat(m.Bias, 'g', -1, 64))
	for _, w := range m.ordered {
		parts = append(parts, strconv.FormatFloat(w, 'g', -1, 64))
	}
	return hashParts(parts...)
}

// Score evaluates the model for every vector in the batch.
func (m *LinearModel) Score(_ context.Context, batch []model.FeatureVector) ([]float64, error) {
	out := make([]float64, len(batch))
	for i, v := range batch {
		out[i] = m.predict(v.Values())
	}
	return out, nil
}

func (m *LinearModel) predict(values []float64) float64 {
	z := m.Bias
	for i, x := range values {
		z += m.ordered[i] * x
	}
	if m.Link == LinkLogistic {
		return 1 / (1 + math.Exp(-z))
	}
	return z
}
