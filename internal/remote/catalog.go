// Package remote talks to the comics-library server. All methods report
// ordinary HTTP-level failures as errors wrapping ErrUnavailable or
// ErrUnauthorized rather than panicking or retrying; callers decide policy.
package remote

import (
	"context"
	"errors"

	"github.com/veikko/comicshelf/internal/models"
)

var (
	// ErrUnavailable covers unreachable hosts, non-success statuses other
	// than 401/403, and successful responses with an empty body.
	ErrUnavailable = errors.New("remote catalog unavailable")

	// ErrUnauthorized means the configured credentials were rejected.
	ErrUnauthorized = errors.New("remote catalog authorization failed")
)

// Catalog is the remote side of the sync contract.
type Catalog interface {
	ListPublishers(ctx context.Context) ([]models.Publisher, error)
	ListVolumes(ctx context.Context) ([]models.Volume, error)
	ListIssues(ctx context.Context) ([]models.Issue, error)

	// PutReadStatus pushes a locally newer read status for an issue or a
	// volume (the id namespace is shared, assigned by the server).
	PutReadStatus(ctx context.Context, id string, status models.ReadStatus) error

	// DownloadFile fetches the comic archive for an issue. The returned
	// name comes from the Content-Disposition header.
	DownloadFile(ctx context.Context, issueID string) (data []byte, fileName string, err error)

	// GetImage fetches an image by the absolute URL the catalog handed out.
	GetImage(ctx context.Context, url string) ([]byte, error)
}
