package handlers_test

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/veikko/comicshelf/internal/cache"
	"github.com/veikko/comicshelf/internal/config"
	"github.com/veikko/comicshelf/internal/database"
	"github.com/veikko/comicshelf/internal/extract"
	apihttp "github.com/veikko/comicshelf/internal/http"
	"github.com/veikko/comicshelf/internal/models"
	"github.com/veikko/comicshelf/internal/repository"
	syncengine "github.com/veikko/comicshelf/internal/sync"
)

// fakeRemote stands in for the comics-library server across every handler
// test: configurable snapshots, downloads, and images.
type fakeRemote struct {
	publishers []models.Publisher
	volumes    []models.Volume
	issues     []models.Issue

	fileName    string
	fileData    []byte
	downloadErr error

	images map[string][]byte
}

func (f *fakeRemote) ListPublishers(_ context.Context) ([]models.Publisher, error) {
	return f.publishers, nil
}

func (f *fakeRemote) ListVolumes(_ context.Context) ([]models.Volume, error) {
	return f.volumes, nil
}

func (f *fakeRemote) ListIssues(_ context.Context) ([]models.Issue, error) {
	return f.issues, nil
}

func (f *fakeRemote) PutReadStatus(_ context.Context, _ string, _ models.ReadStatus) error {
	return nil
}

func (f *fakeRemote) DownloadFile(_ context.Context, _ string) ([]byte, string, error) {
	if f.downloadErr != nil {
		return nil, "", f.downloadErr
	}
	return f.fileData, f.fileName, nil
}

func (f *fakeRemote) GetImage(_ context.Context, url string) ([]byte, error) {
	data, ok := f.images[url]
	if !ok {
		return nil, errors.New("image not found")
	}
	return data, nil
}

func setupTestApp(t *testing.T, remote *fakeRemote) (*sql.DB, *fiber.App) {
	t.Helper()

	tmpDir := t.TempDir()
	db, err := database.Open(filepath.Join(tmpDir, "test.sqlite"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := database.ApplyMigrations(db); err != nil {
		_ = db.Close()
		t.Fatalf("apply migrations: %v", err)
	}

	if remote == nil {
		remote = &fakeRemote{}
	}

	images := cache.NewImageCache(tmpDir, remote)
	comics := cache.NewComicService(tmpDir, repository.NewComicRepository(db), remote, extract.New(0, nil), nil, nil)
	engine := syncengine.NewEngine(remote,
		repository.NewPublisherRepository(db),
		repository.NewVolumeRepository(db),
		repository.NewIssueRepository(db),
		comics, images, nil)

	app := apihttp.NewServer(config.Config{AppName: "test-app"}, apihttp.Deps{
		DB:     db,
		Engine: engine,
		Comics: comics,
		Images: images,
	})

	t.Cleanup(func() {
		_ = app.Shutdown()
		_ = db.Close()
	})

	return db, app
}

func seedCatalog(t *testing.T, db *sql.DB) {
	t.Helper()

	changed := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if err := repository.NewPublisherRepository(db).Insert(&models.Publisher{ID: "p1", Name: "Image Comics"}); err != nil {
		t.Fatalf("insert publisher: %v", err)
	}
	if err := repository.NewVolumeRepository(db).Insert(&models.Volume{ID: "v1", PublisherID: "p1", Name: "Saga"}); err != nil {
		t.Fatalf("insert volume: %v", err)
	}
	issues := repository.NewIssueRepository(db)
	for _, id := range []string{"i1", "i2"} {
		issue := models.Issue{ID: id, VolumeID: "v1", Name: "Saga #" + id,
			Status: models.ReadStatus{ChangedAt: changed}}
		if err := issues.Insert(&issue); err != nil {
			t.Fatalf("insert issue %s: %v", id, err)
		}
	}
}

func zipArchive(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, data := range entries {
		entry, err := writer.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := entry.Write(data); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}
