package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/okian/assigner/internal/domain/features"
	"github.com/okian/assigner/internal/domain/types"
)

type candidateFeatures struct {
	Index    int                `json:"index"`
	UserID   json.RawMessage    `json:"user_id"`
	Features map[string]float64 `json:"features"`
	Vector   []float64          `json:"vector"`
}

func newFeaturesCommand(root *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Print the feature vector of every candidate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load(cmd.Context())
			if err != nil {
				return err
			}
			req, err := readRequest(cmd, file)
			if err != nil {
				return err
			}
			return printFeatures(cmd, req, defaultsFrom(cfg))
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

func printFeatures(cmd *cobra.Command, req types.AssignmentRequest, d types.Defaults) error {
	task, candidates := req.ToDomain(d)
	vectors, err := features.Build(task, candidates)
	if err != nil {
		return err
	}

	out := make([]candidateFeatures, len(vectors))
	for i, v := range vectors {
		out[i] = candidateFeatures{
			Index:    i,
			UserID:   req.CandidateEmployees[i].UserID,
			Features: v.Map(),
			Vector:   v.Values(),
		}
	}
	return printJSON(cmd, out)
}
