// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/powens/iowa-disclosure-api/internal/domain"
)

// Query holds the SoQL parameters of a dataset fetch. Zero values are
// omitted from the request.
type Query struct {
	Select string
	Where  string
	Order  string
	Limit  int
}

// DatasetFetcher retrieves raw records from the open-data portal.
type DatasetFetcher interface {
	// FetchAll pulls every record of a dataset.
	FetchAll(ctx context.Context, dataset string) ([]domain.Row, error)
	// Fetch pulls records matching a SoQL query.
	Fetch(ctx context.Context, dataset string, q Query) ([]domain.Row, error)
	// Metadata reports the dataset's last update time.
	Metadata(ctx context.Context, dataset string) (*domain.DatasetMetadata, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
