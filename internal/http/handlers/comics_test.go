package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/veikko/comicshelf/internal/models"
	"github.com/veikko/comicshelf/internal/remote"
)

func TestDownloadAndReadPages(t *testing.T) {
	db, app := setupTestApp(t, &fakeRemote{
		fileName: "saga-1.cbz",
		fileData: zipArchive(t, map[string][]byte{
			"001.jpg": []byte("page one"),
			"002.jpg": []byte("page two"),
		}),
	})
	seedCatalog(t, db)

	res, err := app.Test(httptest.NewRequest(http.MethodPost, "/v1/issues/i1/download", nil))
	if err != nil {
		t.Fatalf("download request failed: %v", err)
	}
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	var comic models.CachedComic
	if err := json.NewDecoder(res.Body).Decode(&comic); err != nil {
		t.Fatalf("decode comic: %v", err)
	}
	if comic.FileName != "saga-1.cbz" || !comic.Readable {
		t.Fatalf("unexpected comic: %+v", comic)
	}

	pagesRes, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/issues/i1/pages", nil))
	if err != nil {
		t.Fatalf("pages request failed: %v", err)
	}
	if pagesRes.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", pagesRes.StatusCode)
	}
	var pages []string
	if err := json.NewDecoder(pagesRes.Body).Decode(&pages); err != nil {
		t.Fatalf("decode pages: %v", err)
	}
	if len(pages) != 2 || pages[0] != "001.jpg" || pages[1] != "002.jpg" {
		t.Fatalf("unexpected pages: %v", pages)
	}

	pageRes, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/issues/i1/pages/001.jpg", nil))
	if err != nil {
		t.Fatalf("page request failed: %v", err)
	}
	if pageRes.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", pageRes.StatusCode)
	}
	data, err := io.ReadAll(pageRes.Body)
	if err != nil {
		t.Fatalf("read page body: %v", err)
	}
	if string(data) != "page one" {
		t.Fatalf("unexpected page content %q", data)
	}
}

func TestDownloadUnknownIssueReturns404(t *testing.T) {
	_, app := setupTestApp(t, nil)

	res, err := app.Test(httptest.NewRequest(http.MethodPost, "/v1/issues/nope/download", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

func TestDownloadFailureStatusesAndMessages(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantText   string
	}{
		{fmt.Errorf("download: %w", remote.ErrUnauthorized), http.StatusUnauthorized, "authorization failed"},
		{fmt.Errorf("download: %w", remote.ErrUnavailable), http.StatusBadGateway, "no connection"},
	}

	for _, tc := range cases {
		db, app := setupTestApp(t, &fakeRemote{downloadErr: tc.err})
		seedCatalog(t, db)

		res, err := app.Test(httptest.NewRequest(http.MethodPost, "/v1/issues/i1/download", nil))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if res.StatusCode != tc.wantStatus {
			t.Fatalf("expected %d for %v, got %d", tc.wantStatus, tc.err, res.StatusCode)
		}

		var payload map[string]string
		if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if payload["message"] != tc.wantText {
			t.Fatalf("expected message %q, got %q", tc.wantText, payload["message"])
		}
	}
}

func TestDeleteDownloadIsIdempotent(t *testing.T) {
	db, app := setupTestApp(t, &fakeRemote{
		fileName: "saga-1.cbz",
		fileData: zipArchive(t, map[string][]byte{"001.jpg": []byte("page")}),
	})
	seedCatalog(t, db)

	if res, err := app.Test(httptest.NewRequest(http.MethodPost, "/v1/issues/i1/download", nil)); err != nil || res.StatusCode != http.StatusCreated {
		t.Fatalf("download failed: %v (%v)", res.StatusCode, err)
	}

	for i := 0; i < 2; i++ {
		res, err := app.Test(httptest.NewRequest(http.MethodDelete, "/v1/issues/i1/download", nil))
		if err != nil {
			t.Fatalf("delete request failed: %v", err)
		}
		if res.StatusCode != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", res.StatusCode)
		}
	}
}

func TestPagesOfUnreadableComicReturns422(t *testing.T) {
	db, app := setupTestApp(t, &fakeRemote{fileName: "saga-1.epub", fileData: []byte("book")})
	seedCatalog(t, db)

	if res, err := app.Test(httptest.NewRequest(http.MethodPost, "/v1/issues/i1/download", nil)); err != nil || res.StatusCode != http.StatusCreated {
		t.Fatalf("download failed: %v (%v)", res.StatusCode, err)
	}

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/issues/i1/pages", nil))
	if err != nil {
		t.Fatalf("pages request failed: %v", err)
	}
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.StatusCode)
	}

	var payload map[string]string
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["message"] != "archive format unsupported" {
		t.Fatalf("unexpected message %q", payload["message"])
	}
}

func TestGetMissingPageReturns404(t *testing.T) {
	db, app := setupTestApp(t, &fakeRemote{
		fileName: "saga-1.cbz",
		fileData: zipArchive(t, map[string][]byte{"001.jpg": []byte("page")}),
	})
	seedCatalog(t, db)

	if res, err := app.Test(httptest.NewRequest(http.MethodPost, "/v1/issues/i1/download", nil)); err != nil || res.StatusCode != http.StatusCreated {
		t.Fatalf("download failed: %v (%v)", res.StatusCode, err)
	}

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/issues/i1/pages/999.jpg", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}
