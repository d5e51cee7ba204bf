package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/assigner/internal/config"
	"github.com/okian/assigner/internal/domain/model"
	"github.com/okian/assigner/internal/domain/types"
)

// readInput returns the contents of path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadInput, path, err)
	}
	return data, nil
}

func readRequest(cmd *cobra.Command, path string) (types.AssignmentRequest, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return types.AssignmentRequest{}, err
	}
	req, err := types.DecodeAssignmentRequest(data)
	if err != nil {
		return req, fmt.Errorf("%w: %w", ErrDecodeRequest, err)
	}
	return req, nil
}

func defaultsFrom(cfg *config.Config) types.Defaults {
	return types.Defaults{
		Priority:      model.Priority(cfg.DefaultPriority),
		DeadlineHours: cfg.DefaultDeadlineHours,
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addFileFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVarP(path, "file", "f", "", `request JSON file, "-" for stdin`)
	_ = cmd.MarkFlagRequired("file")
}
