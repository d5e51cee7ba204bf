package scoring

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/okian/assigner/internal/domain/model"
)

// ExpressionScorer evaluates a CEL expression per vector. Every feature is
// bound as a double variable under its canonical name, for example
//
//	matched_skill_percentage / 100.0 + available_bandwidth * 0.01
type ExpressionScorer struct {
	source string
	prg    cel.Program
}

// NewExpressionScorer compiles expr once; compile and type errors are
// reported here rather than at scoring time.
func NewExpressionScorer(expr string) (*ExpressionScorer, error) {
	opts := make([]cel.EnvOption, 0, len(model.FeatureNames))
	for _, name := range model.FeatureNames {
		opts = append(opts, cel.Variable(name, cel.DoubleType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrInvalidExpression, err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: compile: %w", ErrInvalidExpression, issues.Err())
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.DoubleType) && !out.IsExactType(cel.IntType) && !out.IsExactType(cel.UintType) {
		return nil, fmt.Errorf("%w: expression must be numeric, got %s", ErrInvalidExpression, out)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: program: %w", ErrInvalidExpression, err)
	}
	return &ExpressionScorer{source: expr, prg: prg}, nil
}

// Name identifies the backend.
func (s *ExpressionScorer) Name() string { return "expression" }

// Expression returns the source the scorer was compiled from.
func (s *ExpressionScorer) Expression() string { return s.source }

// Fingerprint hashes the expression source.
func (s *ExpressionScorer) Fingerprint() string { return hashParts(s.source) }

// Score evaluates the expression for each vector.
func (s *ExpressionScorer) Score(ctx context.Context, batch []model.FeatureVector) ([]float64, error) {
	out := make([]float64, len(batch))
	vars := make(map[string]any, len(model.FeatureNames))
	for i, v := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for name, x := range v.Map() {
			vars[name] = x
		}

		val, _, err := s.prg.Eval(vars)
		if err != nil {
			return nil, fmt.Errorf("eval vector %d: %w", i, err)
		}
		switch n := val.Value().(type) {
		case float64:
			out[i] = n
		case int64:
			out[i] = float64(n)
		case uint64:
			out[i] = float64(n)
		default:
			return nil, fmt.Errorf("eval vector %d: non-numeric result %T", i, n)
		}
	}
	return out, nil
}
