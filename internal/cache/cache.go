// Package cache manages the two file-backed caches (cover images, comic
// archives) under the app's private cache directory. Writers follow an
// idempotent-write discipline: a file that already exists is success, since
// sync and manual downloads may race to create the same entry.
package cache

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// ContentCache is a flat file cache in one subdirectory (cache/images or
// cache/comics). Directory creation is memoized after the first call.
type ContentCache struct {
	dir string

	once   sync.Once
	dirErr error
}

func NewContentCache(baseDir, name string) *ContentCache {
	return &ContentCache{dir: filepath.Join(baseDir, name)}
}

// Dir returns the cache directory, creating it on first use.
func (c *ContentCache) Dir() (string, error) {
	c.once.Do(func() {
		if err := os.MkdirAll(c.dir, 0o755); err != nil {
			c.dirErr = fmt.Errorf("create cache dir %s: %w", c.dir, err)
		}
	})
	return c.dir, c.dirErr
}

func (c *ContentCache) List() (map[string]struct{}, error) {
	dir, err := c.Dir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list cache dir %s: %w", dir, err)
	}

	names := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names[entry.Name()] = struct{}{}
	}
	return names, nil
}

// Path resolves a cached filename to its full path. A missing file is not
// an error, just absent.
func (c *ContentCache) Path(fileName string) (string, bool) {
	dir, err := c.Dir()
	if err != nil {
		return "", false
	}

	full := filepath.Join(dir, filepath.Base(fileName))
	if _, err := os.Stat(full); err != nil {
		return "", false
	}
	return full, true
}

// Write stores data under fileName atomically (temp file + rename),
// overwriting any existing file.
func (c *ContentCache) Write(fileName string, data []byte) (string, error) {
	dir, err := c.Dir()
	if err != nil {
		return "", err
	}

	target := filepath.Join(dir, filepath.Base(fileName))
	tmp := target + ".tmp-" + uuid.NewString()

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write cache file %s: %w", fileName, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("commit cache file %s: %w", fileName, err)
	}
	return target, nil
}

// Delete removes a cached file; absent files are a no-op.
func (c *ContentCache) Delete(fileName string) error {
	dir, err := c.Dir()
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, filepath.Base(fileName))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete cache file %s: %w", fileName, err)
	}
	return nil
}

// FileNameForURL derives the cache filename from a resource URL (its last
// path segment).
func FileNameForURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		return path.Base(rawURL)
	}
	return path.Base(parsed.Path)
}

// ImageFetcher is the slice of the remote catalog the image cache needs.
type ImageFetcher interface {
	GetImage(ctx context.Context, url string) ([]byte, error)
}

// ImageCache caches cover images by the filename embedded in their URL.
type ImageCache struct {
	*ContentCache
	fetcher ImageFetcher
}

func NewImageCache(baseDir string, fetcher ImageFetcher) *ImageCache {
	return &ImageCache{
		ContentCache: NewContentCache(baseDir, "images"),
		fetcher:      fetcher,
	}
}

// CacheImage downloads url unless the derived filename is already cached.
// Failures are the caller's to ignore: an uncached cover degrades to a
// placeholder, it never fails a sync pass.
func (c *ImageCache) CacheImage(ctx context.Context, rawURL string) error {
	if rawURL == "" {
		return nil
	}

	fileName := FileNameForURL(rawURL)
	if _, ok := c.Path(fileName); ok {
		return nil
	}

	data, err := c.fetcher.GetImage(ctx, rawURL)
	if err != nil {
		return err
	}

	_, err = c.Write(fileName, data)
	return err
}

func (c *ImageCache) DeleteImage(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	return c.Delete(FileNameForURL(rawURL))
}
