package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/assigner/internal/domain/model"
)

// Default RPC scorer settings.
const (
	defaultRPCTimeout     = 2 * time.Second
	defaultRPCBatchSize   = 256
	defaultRPCConcurrency = 4
	maxErrorBodyBytes     = 512
)

// RPCOption applies a configuration option to the RPCScorer.
type RPCOption func(*RPCScorer)

// WithHTTPClient replaces the HTTP client used for model calls.
func WithHTTPClient(c *http.Client) RPCOption {
	return func(s *RPCScorer) {
		if c != nil {
			s.client = c
		}
	}
}

// WithRPCTimeout bounds every model call. It is ignored when a client is
// supplied through WithHTTPClient.
func WithRPCTimeout(d time.Duration) RPCOption {
	return func(s *RPCScorer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithBatchSize caps the number of vectors sent per request.
func WithBatchSize(n int) RPCOption {
	return func(s *RPCScorer) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithConcurrency caps the number of in-flight chunk requests.
func WithConcurrency(n int) RPCOption {
	return func(s *RPCScorer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// RPCScorer delegates scoring to a remote model service.
//
// Request:  {"feature_names": [...], "features_list": [[...], ...]}
// Response: {"scores": [...]}
type RPCScorer struct {
	endpoint    string
	client      *http.Client
	timeout     time.Duration
	batchSize   int
	concurrency int
}

// NewRPCScorer creates a scorer posting to endpoint.
func NewRPCScorer(endpoint string, opts ...RPCOption) *RPCScorer {
	s := &RPCScorer{
		endpoint:    endpoint,
		timeout:     defaultRPCTimeout,
		batchSize:   defaultRPCBatchSize,
		concurrency: defaultRPCConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: s.timeout}
	}
	return s
}

// Fingerprint hashes the endpoint; the remote service owns the model.
func (s *RPCScorer) Fingerprint() string { return hashParts(s.endpoint) }

type rpcRequest struct {
	FeatureNames []string    `json:"feature_names"`
	FeaturesList [][]float64 `json:"features_list"`
}

type rpcResponse struct {
	Scores []float64 `json:"scores"`
}

// Name identifies the backend.
func (s *RPCScorer) Name() string { return "rpc" }

// Score splits the batch into chunks, scores them concurrently and
// reassembles the results in input order. Any failed chunk fails the call.
func (s *RPCScorer) Score(ctx context.Context, batch []model.FeatureVector) ([]float64, error) {
	out := make([]float64, len(batch))
	if len(batch) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for start := 0; start < len(batch); start += s.batchSize {
		end := min(start+s.batchSize, len(batch))
		g.Go(func() error {
			scores, err := s.call(gctx, batch[start:end])
			if err != nil {
				return fmt.Errorf("chunk [%d:%d]: %w", start, end, err)
			}
			copy(out[start:end], scores)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RPCScorer) call(ctx context.Context, chunk []model.FeatureVector) ([]float64, error) {
	req := rpcRequest{
		FeatureNames: model.FeatureNames,
		FeaturesList: make([][]float64, len(chunk)),
	}
	for i, v := range chunk {
		req.FeaturesList[i] = v.Values()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", ErrRemoteScorer, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrRemoteScorer, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteScorer, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrRemoteScorer, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var result rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrRemoteScorer, err)
	}
	if len(result.Scores) != len(chunk) {
		return nil, fmt.Errorf("%w: expected %d scores, got %d", ErrRemoteScorer, len(chunk), len(result.Scores))
	}
	return result.Scores, nil
}
