package output

import (
	"context"

	"chat-harvester/internal/domain/entity"
)

// ResultStore is append-only: records are never edited once written.
type ResultStore interface {
	LoadAll(ctx context.Context) ([]entity.ResultRecord, error)
	Append(ctx context.Context, rec entity.ResultRecord) error
	Clear(ctx context.Context) error
	Close() error
}
