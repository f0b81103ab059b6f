package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/veikko/comicshelf/internal/models"
)

// Client is the HTTP implementation of Catalog. Every request carries basic
// auth; the server was designed for exactly this client pair.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

func NewClient(baseURL, username, password string) *Client {
	return NewClientWithOptions(baseURL, username, password, nil)
}

func NewClientWithOptions(baseURL, username, password string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: httpClient,
	}
}

func (c *Client) ListPublishers(ctx context.Context) ([]models.Publisher, error) {
	var publishers []models.Publisher
	if err := c.getJSON(ctx, c.baseURL+"/api/publishers", &publishers); err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	return publishers, nil
}

func (c *Client) ListVolumes(ctx context.Context) ([]models.Volume, error) {
	var volumes []models.Volume
	if err := c.getJSON(ctx, c.baseURL+"/api/volumes", &volumes); err != nil {
		return nil, fmt.Errorf("list volumes: %w", err)
	}
	return volumes, nil
}

func (c *Client) ListIssues(ctx context.Context) ([]models.Issue, error) {
	var issues []models.Issue
	if err := c.getJSON(ctx, c.baseURL+"/api/issues", &issues); err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return issues, nil
}

// GetReadStatus fetches one entity's current status outside the snapshot
// flow. Sync never needs it; the status command uses it for a live
// comparison against the mirror.
func (c *Client) GetReadStatus(ctx context.Context, id string) (models.ReadStatus, error) {
	var status models.ReadStatus
	if err := c.getJSON(ctx, c.baseURL+"/api/readstatus/"+id, &status); err != nil {
		return models.ReadStatus{}, fmt.Errorf("get read status %s: %w", id, err)
	}
	return status, nil
}

func (c *Client) PutReadStatus(ctx context.Context, id string, status models.ReadStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal read status: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/readstatus/"+id, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create read status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("put read status %s: %w: %w", id, ErrUnavailable, err)
	}
	defer res.Body.Close()

	if err := checkStatus(res.StatusCode); err != nil {
		return fmt.Errorf("put read status %s: %w", id, err)
	}
	return nil
}

func (c *Client) DownloadFile(ctx context.Context, issueID string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/issues/"+issueID+"/file", nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download issue %s: %w: %w", issueID, ErrUnavailable, err)
	}
	defer res.Body.Close()

	if err := checkStatus(res.StatusCode); err != nil {
		return nil, "", fmt.Errorf("download issue %s: %w", issueID, err)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read issue %s body: %w: %w", issueID, ErrUnavailable, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("download issue %s: empty body: %w", issueID, ErrUnavailable)
	}

	fileName := suggestedFilename(res.Header.Get("Content-Disposition"))
	if fileName == "" {
		fileName = issueID
	}
	return data, fileName, nil
}

func (c *Client) GetImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create image request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get image: %w: %w", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if err := checkStatus(res.StatusCode); err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read image body: %w: %w", ErrUnavailable, err)
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if err := checkStatus(res.StatusCode); err != nil {
		return err
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read body: %w: %w", ErrUnavailable, err)
	}
	// An empty body on a success status counts as a failed fetch: the sync
	// engine must never reconcile against a snapshot it did not receive.
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("empty body: %w", ErrUnavailable)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code < 200 || code >= 300:
		return fmt.Errorf("status %d: %w", code, ErrUnavailable)
	default:
		return nil
	}
}

// suggestedFilename extracts the base filename from a Content-Disposition
// header, stripping any path the server may have left in.
func suggestedFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := params["filename"]
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, "\\", "/")
	return path.Base(name)
}
