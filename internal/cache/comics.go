package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/veikko/comicshelf/internal/extract"
	"github.com/veikko/comicshelf/internal/models"
	"github.com/veikko/comicshelf/internal/notifications"
)

// FileDownloader is the slice of the remote catalog the comic cache needs.
type FileDownloader interface {
	DownloadFile(ctx context.Context, issueID string) (data []byte, fileName string, err error)
}

// ComicRows is the cached_comics persistence the service writes through.
type ComicRows interface {
	Upsert(comic *models.CachedComic) error
	GetByIssueID(issueID string) (*models.CachedComic, error)
	List() ([]models.CachedComic, error)
	SetUnpacked(issueID string, unpacked bool) error
	Delete(issueID string) error
}

// ComicService owns the comics cache directory: authenticated downloads,
// cascade deletion of an issue's cached artifacts, and the open-for-reading
// flow that unpacks a comic exactly once.
type ComicService struct {
	cache      *ContentCache
	rows       ComicRows
	downloader FileDownloader
	extractor  *extract.Extractor
	notifier   notifications.Notifier
	logger     *slog.Logger
}

func NewComicService(baseDir string, rows ComicRows, downloader FileDownloader, extractor *extract.Extractor, notifier notifications.Notifier, logger *slog.Logger) *ComicService {
	if notifier == nil {
		notifier = notifications.NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ComicService{
		cache:      NewContentCache(baseDir, "comics"),
		rows:       rows,
		downloader: downloader,
		extractor:  extractor,
		notifier:   notifier,
		logger:     logger,
	}
}

// Download fetches the comic file for an issue and records it. Re-download
// of an already cached issue overwrites file and row (idempotent-write
// discipline; sync and a manual download may both trigger it).
func (s *ComicService) Download(ctx context.Context, issueID string) (*models.CachedComic, error) {
	data, fileName, err := s.downloader.DownloadFile(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("download comic for issue %s: %w", issueID, err)
	}

	if _, err := s.cache.Write(fileName, data); err != nil {
		return nil, fmt.Errorf("cache comic for issue %s: %w", issueID, err)
	}

	comic := &models.CachedComic{
		IssueID:  issueID,
		FileName: fileName,
		Readable: extract.Readable(fileName),
		Unpacked: false,
	}
	if err := s.rows.Upsert(comic); err != nil {
		return nil, err
	}

	s.notify(ctx, notifications.Message{
		Event: notifications.EventComicDownloaded,
		Title: "Comic downloaded",
		Body:  fileName,
		Meta:  map[string]string{"issueId": issueID},
	})
	return comic, nil
}

// Delete removes an issue's cached artifacts in dependency order: unpacked
// pages directory first, then the archive file, then the row. Safe to call
// when nothing is cached.
func (s *ComicService) Delete(issueID string) error {
	dir, err := s.cache.Dir()
	if err != nil {
		return err
	}

	if err := os.RemoveAll(filepath.Join(dir, issueID)); err != nil {
		return fmt.Errorf("delete pages dir for issue %s: %w", issueID, err)
	}

	comic, err := s.rows.GetByIssueID(issueID)
	if err != nil {
		return err
	}
	if comic != nil {
		if err := s.cache.Delete(comic.FileName); err != nil {
			return err
		}
	}

	return s.rows.Delete(issueID)
}

// Cached looks up the cached-comic row for an issue; nil when nothing is
// downloaded.
func (s *ComicService) Cached(issueID string) (*models.CachedComic, error) {
	return s.rows.GetByIssueID(issueID)
}

// Pages returns the ordered page image paths for an issue, unpacking the
// cached comic on first use.
func (s *ComicService) Pages(issueID string) ([]string, error) {
	comic, err := s.rows.GetByIssueID(issueID)
	if err != nil {
		return nil, err
	}
	if comic == nil {
		return nil, fmt.Errorf("issue %s has no cached comic", issueID)
	}
	if !comic.Readable {
		return nil, fmt.Errorf("issue %s: %w", issueID, extract.ErrUnsupportedArchive)
	}

	src, ok := s.cache.Path(comic.FileName)
	if !ok {
		return nil, fmt.Errorf("cached comic file %s missing for issue %s", comic.FileName, issueID)
	}

	dir, err := s.cache.Dir()
	if err != nil {
		return nil, err
	}
	pagesDir := filepath.Join(dir, issueID)

	needExtract := !comic.Unpacked
	if !needExtract {
		// The pages dir can vanish out-of-band; re-extract instead of
		// serving an empty list.
		if _, err := os.Stat(pagesDir); os.IsNotExist(err) {
			needExtract = true
		}
	}

	if needExtract {
		if err := s.extractor.Extract(src, pagesDir); err != nil {
			return nil, err
		}
		if err := s.rows.SetUnpacked(issueID, true); err != nil {
			return nil, err
		}
	}

	return listPages(pagesDir)
}

// Repair restores the row-iff-file invariant after crashes or manual cache
// tampering: rows whose archive vanished are dropped along with any stale
// pages directory.
func (s *ComicService) Repair() error {
	comics, err := s.rows.List()
	if err != nil {
		return err
	}

	dir, err := s.cache.Dir()
	if err != nil {
		return err
	}

	for _, comic := range comics {
		if _, ok := s.cache.Path(comic.FileName); ok {
			continue
		}

		s.logger.Warn("cached comic file missing, dropping row", "issueId", comic.IssueID, "file", comic.FileName)
		if err := os.RemoveAll(filepath.Join(dir, comic.IssueID)); err != nil {
			return fmt.Errorf("delete stale pages dir for issue %s: %w", comic.IssueID, err)
		}
		if err := s.rows.Delete(comic.IssueID); err != nil {
			return err
		}
	}

	return nil
}

func (s *ComicService) notify(ctx context.Context, message notifications.Message) {
	if err := s.notifier.Notify(ctx, message); err != nil {
		s.logger.Debug("notification failed", "event", message.Event, "error", err)
	}
}

func listPages(pagesDir string) ([]string, error) {
	entries, err := os.ReadDir(pagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list pages dir %s: %w", pagesDir, err)
	}

	pages := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		pages = append(pages, filepath.Join(pagesDir, entry.Name()))
	}
	sort.Strings(pages)
	return pages, nil
}
