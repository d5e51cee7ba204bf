package cli

import "errors"

// Error constants.
var (
	ErrReadInput     = errors.New("read input failed")
	ErrDecodeRequest = errors.New("decode request failed")
	ErrRequestFailed = errors.New("request failed")
)
