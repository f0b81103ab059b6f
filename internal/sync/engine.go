// Package sync reconciles the remote catalog against the local mirror:
// additions parent-to-child, deletions child-to-parent, and per-issue
// read-status conflicts resolved by last writer wins.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/veikko/comicshelf/internal/models"
	"github.com/veikko/comicshelf/internal/remote"
)

// ErrSyncRunning is returned when a pass is already in flight; the second
// trigger is coalesced, never queued.
var ErrSyncRunning = errors.New("sync already running")

type Publishers interface {
	Insert(publisher *models.Publisher) error
	UpdateAll(publishers []models.Publisher) error
	List() ([]models.Publisher, error)
	Delete(id string) error
}

type Volumes interface {
	Insert(volume *models.Volume) error
	UpdateAll(volumes []models.Volume) error
	List() ([]models.Volume, error)
	ListByPublisher(publisherID string) ([]models.Volume, error)
	Delete(id string) error
}

type Issues interface {
	Insert(issue *models.Issue) error
	UpdateAll(issues []models.Issue) error
	List() ([]models.Issue, error)
	ListByVolume(volumeID string) ([]models.Issue, error)
	Delete(id string) error
}

// ComicCleaner removes an issue's cached comic artifacts (pages directory,
// archive file, row).
type ComicCleaner interface {
	Delete(issueID string) error
}

type ImageCacher interface {
	CacheImage(ctx context.Context, url string) error
	DeleteImage(url string) error
}

type ChangeSet struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

type Result struct {
	Publishers ChangeSet `json:"publishers"`
	Volumes    ChangeSet `json:"volumes"`
	Issues     ChangeSet `json:"issues"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

type Engine struct {
	catalog    remote.Catalog
	publishers Publishers
	volumes    Volumes
	issues     Issues
	comics     ComicCleaner
	images     ImageCacher
	logger     *slog.Logger

	mu sync.Mutex
}

func NewEngine(catalog remote.Catalog, publishers Publishers, volumes Volumes, issues Issues, comics ComicCleaner, images ImageCacher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		catalog:    catalog,
		publishers: publishers,
		volumes:    volumes,
		issues:     issues,
		comics:     comics,
		images:     images,
		logger:     logger,
	}
}

// Run executes one sync pass. The caller must already have confirmed
// connectivity and credentials; Run itself does not probe. All three remote
// snapshots are fetched up front, so a failed fetch aborts before any local
// write. At most one pass runs at a time.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	if !e.mu.TryLock() {
		return Result{}, ErrSyncRunning
	}
	defer e.mu.Unlock()

	result := Result{StartedAt: time.Now().UTC()}

	remotePublishers, err := e.catalog.ListPublishers(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch publishers: %w", err)
	}
	remoteVolumes, err := e.catalog.ListVolumes(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch volumes: %w", err)
	}
	remoteIssues, err := e.catalog.ListIssues(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch issues: %w", err)
	}

	// Parent before child, so a new issue's volume reference is always
	// valid by the time issues are processed.
	if result.Publishers, err = e.syncPublishers(ctx, remotePublishers); err != nil {
		return result, err
	}
	if result.Volumes, err = e.syncVolumes(ctx, remoteVolumes); err != nil {
		return result, err
	}
	if result.Issues, err = e.syncIssues(ctx, remoteIssues); err != nil {
		return result, err
	}

	result.FinishedAt = time.Now().UTC()
	e.logger.Info("sync pass finished",
		"publishers", result.Publishers,
		"volumes", result.Volumes,
		"issues", result.Issues,
		"duration", result.FinishedAt.Sub(result.StartedAt).String(),
	)
	return result, nil
}

func (e *Engine) syncPublishers(ctx context.Context, remoteList []models.Publisher) (ChangeSet, error) {
	var changes ChangeSet

	localList, err := e.publishers.List()
	if err != nil {
		return changes, err
	}

	localByID := make(map[string]models.Publisher, len(localList))
	for _, publisher := range localList {
		localByID[publisher.ID] = publisher
	}

	updates := make([]models.Publisher, 0)
	seen := make(map[string]struct{}, len(remoteList))
	for _, remotePublisher := range remoteList {
		seen[remotePublisher.ID] = struct{}{}

		if _, exists := localByID[remotePublisher.ID]; !exists {
			publisher := remotePublisher
			if err := e.publishers.Insert(&publisher); err != nil {
				return changes, err
			}
			e.cacheImage(ctx, publisher.ImageURL)
			changes.Added++
			continue
		}

		// No locally mutable state on publishers: remote wins whole.
		updates = append(updates, remotePublisher)
	}

	if err := e.publishers.UpdateAll(updates); err != nil {
		return changes, err
	}
	changes.Updated = len(updates)

	for _, localPublisher := range localList {
		if _, stillRemote := seen[localPublisher.ID]; stillRemote {
			continue
		}
		if err := e.deletePublisher(localPublisher); err != nil {
			return changes, err
		}
		changes.Deleted++
	}

	return changes, nil
}

func (e *Engine) syncVolumes(ctx context.Context, remoteList []models.Volume) (ChangeSet, error) {
	var changes ChangeSet

	localList, err := e.volumes.List()
	if err != nil {
		return changes, err
	}

	localByID := make(map[string]models.Volume, len(localList))
	for _, volume := range localList {
		localByID[volume.ID] = volume
	}

	updates := make([]models.Volume, 0)
	seen := make(map[string]struct{}, len(remoteList))
	for _, remoteVolume := range remoteList {
		seen[remoteVolume.ID] = struct{}{}

		localVolume, exists := localByID[remoteVolume.ID]
		if !exists {
			volume := remoteVolume
			if err := e.volumes.Insert(&volume); err != nil {
				return changes, err
			}
			e.cacheImage(ctx, volume.ImageURL)
			changes.Added++
			continue
		}

		// Volume read status is a projection over issues and is never
		// persisted here. The computed local aggregate only decides
		// whether our side is newer and worth pushing.
		if volumeStatusNewer(localVolume.Status, remoteVolume.Status) {
			// Volumes carry no page position; the shared status payload
			// goes out with page 0 and the server reads only the flag.
			e.pushStatus(ctx, localVolume.ID, models.ReadStatus{
				IsRead:    localVolume.Status.IsRead,
				ChangedAt: *localVolume.Status.ChangedAt,
			})
		}
		updates = append(updates, remoteVolume)
	}

	if err := e.volumes.UpdateAll(updates); err != nil {
		return changes, err
	}
	changes.Updated = len(updates)

	for _, localVolume := range localList {
		if _, stillRemote := seen[localVolume.ID]; stillRemote {
			continue
		}
		if err := e.deleteVolume(localVolume); err != nil {
			return changes, err
		}
		changes.Deleted++
	}

	return changes, nil
}

func (e *Engine) syncIssues(ctx context.Context, remoteList []models.Issue) (ChangeSet, error) {
	var changes ChangeSet

	localList, err := e.issues.List()
	if err != nil {
		return changes, err
	}

	localByID := make(map[string]models.Issue, len(localList))
	for _, issue := range localList {
		localByID[issue.ID] = issue
	}

	updates := make([]models.Issue, 0)
	seen := make(map[string]struct{}, len(remoteList))
	for _, remoteIssue := range remoteList {
		seen[remoteIssue.ID] = struct{}{}

		localIssue, exists := localByID[remoteIssue.ID]
		if !exists {
			issue := remoteIssue
			if err := e.issues.Insert(&issue); err != nil {
				return changes, err
			}
			e.cacheImage(ctx, issue.ImageURL)
			changes.Added++
			continue
		}

		// Remote wins every non-status field. For the read status, the
		// newer timestamp wins; a tie goes to the remote so a no-op
		// local write can never cause a push loop.
		merged := remoteIssue
		if localIssue.Status.ChangedAt.After(remoteIssue.Status.ChangedAt) {
			merged.Status = localIssue.Status
			e.pushStatus(ctx, localIssue.ID, localIssue.Status)
		}
		updates = append(updates, merged)
	}

	if err := e.issues.UpdateAll(updates); err != nil {
		return changes, err
	}
	changes.Updated = len(updates)

	for _, localIssue := range localList {
		if _, stillRemote := seen[localIssue.ID]; stillRemote {
			continue
		}
		if err := e.deleteIssue(localIssue); err != nil {
			return changes, err
		}
		changes.Deleted++
	}

	return changes, nil
}

// deletePublisher cascades: every volume (and its issues and cached files)
// first, then the publisher's cover, then the row.
func (e *Engine) deletePublisher(publisher models.Publisher) error {
	volumes, err := e.volumes.ListByPublisher(publisher.ID)
	if err != nil {
		return err
	}
	for _, volume := range volumes {
		if err := e.deleteVolume(volume); err != nil {
			return err
		}
	}

	e.deleteImage(publisher.ImageURL)
	return e.publishers.Delete(publisher.ID)
}

func (e *Engine) deleteVolume(volume models.Volume) error {
	issues, err := e.issues.ListByVolume(volume.ID)
	if err != nil {
		return err
	}
	for _, issue := range issues {
		if err := e.deleteIssue(issue); err != nil {
			return err
		}
	}

	e.deleteImage(volume.ImageURL)
	return e.volumes.Delete(volume.ID)
}

func (e *Engine) deleteIssue(issue models.Issue) error {
	if err := e.comics.Delete(issue.ID); err != nil {
		return err
	}
	e.deleteImage(issue.ImageURL)
	return e.issues.Delete(issue.ID)
}

// cacheImage is fire and forget: a missing cover never fails a pass.
func (e *Engine) cacheImage(ctx context.Context, url string) {
	if err := e.images.CacheImage(ctx, url); err != nil {
		e.logger.Debug("image cache failed", "url", url, "error", err)
	}
}

func (e *Engine) deleteImage(url string) {
	if err := e.images.DeleteImage(url); err != nil {
		e.logger.Debug("image delete failed", "url", url, "error", err)
	}
}

// pushStatus is best-effort: the local value is kept either way and will be
// offered again on the next pass.
func (e *Engine) pushStatus(ctx context.Context, id string, status models.ReadStatus) {
	if err := e.catalog.PutReadStatus(ctx, id, status); err != nil {
		e.logger.Warn("push read status failed", "id", id, "error", err)
	}
}

func volumeStatusNewer(local, remote models.VolumeReadStatus) bool {
	if local.ChangedAt == nil {
		return false
	}
	if remote.ChangedAt == nil {
		return true
	}
	return local.ChangedAt.After(*remote.ChangedAt)
}
