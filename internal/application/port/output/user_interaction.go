package output

import (
	"context"

	"chat-harvester/internal/domain/entity"
)

// RunView is the operator-facing run log.
type RunView interface {
	ShowRunStart(ctx context.Context, runID string, total int)
	ShowRowStart(ctx context.Context, row int, question string)
	ShowRowResult(ctx context.Context, row int, outcome entity.SubmissionOutcome)
	ShowRowSkipped(ctx context.Context, row int, reason string)
	ShowRowError(ctx context.Context, row int, err error)
	ShowRunEnd(ctx context.Context, stats entity.RunStats)
}

type Prompter interface {
	WaitForUserAction(ctx context.Context, message string) error
}
