package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nwaples/rardecode"
)

// extractRar mirrors extractZip for rar archives. Archive-level encryption
// and unsupported format versions fail fast with typed errors; a single
// encrypted entry is skipped and extraction continues.
func (e *Extractor) extractRar(src, destDir string) error {
	reader, err := rardecode.OpenReader(src, "")
	if err != nil {
		return fmt.Errorf("open rar %s: %w", src, classifyRarError(err))
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create pages dir: %w", err)
	}

	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// Encrypted headers surface here when no password is set.
			return fmt.Errorf("read rar %s: %w", src, classifyRarError(err))
		}

		if header.IsDir || !isImageEntry(header.Name) {
			continue
		}

		target := filepath.Join(destDir, filepath.Base(filepath.FromSlash(header.Name)))
		if _, err := os.Stat(target); err == nil {
			continue
		}

		if err := writeRarEntry(reader, target); err != nil {
			if classifyRarError(err) == ErrArchiveEncrypted {
				e.logger.Debug("skipping encrypted rar entry", "file", src, "entry", header.Name)
				continue
			}
			return fmt.Errorf("extract %s from %s: %w", header.Name, src, err)
		}
	}
}

func writeRarEntry(in io.Reader, target string) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create page file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(target)
		return err
	}
	return out.Close()
}

// classifyRarError maps rardecode failures onto the extractor's typed
// errors by message, since the library does not export sentinels for every
// condition.
func classifyRarError(err error) error {
	if err == nil {
		return nil
	}
	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "password") || strings.Contains(message, "encrypt"):
		return ErrArchiveEncrypted
	case strings.Contains(message, "version") || strings.Contains(message, "signature") || strings.Contains(message, "bad rar"):
		return ErrUnsupportedArchive
	default:
		return err
	}
}
