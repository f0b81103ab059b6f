package extract

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// extractZip writes every image entry to destDir under its base filename,
// flattening any internal directory layout. Entries whose target already
// exists are skipped, which makes re-extraction idempotent.
func (e *Extractor) extractZip(src, destDir string) error {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open zip %s: %w: %w", src, ErrUnsupportedArchive, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create pages dir: %w", err)
	}

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() || !isImageEntry(entry.Name) {
			continue
		}

		target := filepath.Join(destDir, filepath.Base(filepath.FromSlash(entry.Name)))
		if _, err := os.Stat(target); err == nil {
			continue
		}

		if err := writeZipEntry(entry, target); err != nil {
			return fmt.Errorf("extract %s from %s: %w", entry.Name, src, err)
		}
	}

	return nil
}

func writeZipEntry(entry *zip.File, target string) error {
	in, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open entry: %w", err)
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create page file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(target)
		return fmt.Errorf("write page file: %w", err)
	}
	return out.Close()
}
