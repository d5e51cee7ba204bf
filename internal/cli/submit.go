package cli

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const defaultSubmitTimeout = 10 * time.Second

type submitOptions struct {
	file    string
	url     string
	bulk    bool
	timeout time.Duration
}

func newSubmitCommand() *cobra.Command {
	opts := &submitOptions{}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Post a request to a running assignment service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return submit(cmd, opts)
		},
	}
	addFileFlag(cmd, &opts.file)
	cmd.Flags().StringVar(&opts.url, "url", "http://localhost:9080", "base URL of the service")
	cmd.Flags().BoolVar(&opts.bulk, "bulk", false, `post to /predict-assignments; the file holds {"requests": [...]}`)
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultSubmitTimeout, "HTTP request timeout")
	return cmd
}

func submit(cmd *cobra.Command, opts *submitOptions) error {
	body, err := readInput(cmd, opts.file)
	if err != nil {
		return err
	}

	path := "/predict-assignment"
	if opts.bulk {
		path = "/predict-assignments"
	}
	url := strings.TrimRight(opts.url, "/") + path

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: opts.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrRequestFailed, err)
	}
	if _, err := cmd.OutOrStdout().Write(respBody); err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: status=%d request_id=%s", ErrRequestFailed, resp.StatusCode, resp.Header.Get("X-Request-ID"))
	}
	return nil
}
