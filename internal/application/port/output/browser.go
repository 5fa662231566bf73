package output

import (
	"context"

	"chat-harvester/internal/domain/entity"
)

type BrowserPort interface {
	PagePort

	Navigate(ctx context.Context, url string) error
	Screenshot(ctx context.Context) (*entity.Screenshot, error)

	CurrentURL() string
	Close()
}
