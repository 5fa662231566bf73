package input

import (
	"context"

	"chat-harvester/internal/domain/entity"
)

// Submitter delivers one question to the page and waits for the answer.
// Page-level failures come back in the outcome; the error is reserved for
// faults of the automation layer itself.
type Submitter interface {
	Submit(ctx context.Context, req entity.SubmissionRequest) (entity.SubmissionOutcome, error)
}
