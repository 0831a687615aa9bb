package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/joseph-ayodele/tkp/internal/common"
)

// ExtractRequest is one structured-extraction call.
type ExtractRequest struct {
	// SystemContext is the reference material plus extraction instructions.
	SystemContext string
	// Prompt is the user's free-text procurement request.
	Prompt string
}

// ExtractResult carries the model's single completion text, untouched apart
// from CleanContent.
type ExtractResult struct {
	Content string
	Model   string
	Elapsed time.Duration
}

// Extractor is the interface the quote pipeline depends on. Implementations
// make exactly one blocking call per invocation and honour ctx cancellation.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (ExtractResult, error)
}

// NetworkError reports a failed call at the transport or HTTP level.
// Status is 0 when no response was received.
type NetworkError struct {
	Provider string
	Status   int
	Body     string
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s status %d: %v: %s", e.Provider, e.Status, e.Err, e.Body)
	}
	return fmt.Sprintf("%s status %d: %s", e.Provider, e.Status, e.Body)
}

func (e *NetworkError) Unwrap() []error {
	if e.Err == nil {
		return []error{common.ErrNetwork}
	}
	return []error{common.ErrNetwork, e.Err}
}
