package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/veikko/comicshelf/internal/models"
)

func TestListPublishersSendsBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		json.NewEncoder(w).Encode([]models.Publisher{{ID: "p1", Name: "Image"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "veikko", "secret")
	publishers, err := client.ListPublishers(context.Background())
	if err != nil {
		t.Fatalf("list publishers failed: %v", err)
	}

	if gotUser != "veikko" || gotPass != "secret" {
		t.Fatalf("expected basic auth, got %q/%q", gotUser, gotPass)
	}
	if len(publishers) != 1 || publishers[0].ID != "p1" {
		t.Fatalf("unexpected publishers: %v", publishers)
	}
}

func TestRejectedCredentialsAreUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "veikko", "wrong")
	if _, err := client.ListIssues(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	if _, err := client.ListVolumes(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestEmptySuccessBodyIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	if _, err := client.ListIssues(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for empty body, got %v", err)
	}
}

func TestUnreachableHostIsUnavailable(t *testing.T) {
	client := NewClientWithOptions("http://127.0.0.1:1", "", "", &http.Client{Timeout: 200 * time.Millisecond})
	if _, err := client.ListPublishers(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestPutReadStatusSendsJSONBody(t *testing.T) {
	var got models.ReadStatus
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/api/readstatus/i1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	changed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	client := NewClient(server.URL, "", "")
	err := client.PutReadStatus(context.Background(), "i1", models.ReadStatus{IsRead: true, CurrentPage: 7, ChangedAt: changed})
	if err != nil {
		t.Fatalf("put read status failed: %v", err)
	}
	if !got.IsRead || got.CurrentPage != 7 || !got.ChangedAt.Equal(changed) {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestGetReadStatus(t *testing.T) {
	changed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/readstatus/i1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.ReadStatus{IsRead: true, CurrentPage: 9, ChangedAt: changed})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	status, err := client.GetReadStatus(context.Background(), "i1")
	if err != nil {
		t.Fatalf("get read status failed: %v", err)
	}
	if !status.IsRead || status.CurrentPage != 9 || !status.ChangedAt.Equal(changed) {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestDownloadFileUsesContentDisposition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/issues/i1/file" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Disposition", `attachment; filename="saga-1.cbz"`)
		w.Write([]byte("archive bytes"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	data, fileName, err := client.DownloadFile(context.Background(), "i1")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if fileName != "saga-1.cbz" {
		t.Fatalf("expected filename from header, got %q", fileName)
	}
	if string(data) != "archive bytes" {
		t.Fatalf("unexpected data %q", data)
	}
}

func TestDownloadFileFallsBackToIssueID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("archive bytes"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	_, fileName, err := client.DownloadFile(context.Background(), "i1")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if fileName != "i1" {
		t.Fatalf("expected issue id fallback, got %q", fileName)
	}
}

func TestDownloadFileEmptyBodyFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	if _, _, err := client.DownloadFile(context.Background(), "i1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for empty file, got %v", err)
	}
}

func TestSuggestedFilename(t *testing.T) {
	cases := map[string]string{
		`attachment; filename="saga-1.cbz"`:         "saga-1.cbz",
		`attachment; filename="dir/saga-1.cbz"`:     "saga-1.cbz",
		`attachment; filename="C:\\dump\\s-1.cbr"`:  "s-1.cbr",
		`attachment`:                                "",
		``:                                          "",
		`bogus;;;`:                                  "",
	}
	for header, want := range cases {
		if got := suggestedFilename(header); got != want {
			t.Fatalf("suggestedFilename(%q) = %q, want %q", header, got, want)
		}
	}
}
