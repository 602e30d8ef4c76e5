package persona

import (
	"context"
	"strings"
)

// NewStore picks a backend: postgres when DATABASE_URL is set, a JSON file
// under dataDir when configured, otherwise in-memory.
func NewStore(ctx context.Context, databaseURL, dataDir string) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	if strings.TrimSpace(dataDir) != "" {
		return NewFileStore(dataDir)
	}
	return NewInMemoryStore(), nil
}
