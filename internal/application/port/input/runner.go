package input

import (
	"context"

	"chat-harvester/internal/domain/entity"
)

type RunExecutor interface {
	Run(ctx context.Context, state *entity.RunState) error
}
