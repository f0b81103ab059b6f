// Package extract unpacks a cached comic file into an ordered set of page
// images. The extractor is stateless per call: skipping already-unpacked
// comics is the caller's job, re-extracting over existing files is a no-op
// per file.
package extract

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedArchive marks an archive whose format or format
	// version cannot be read. Recoverable: shown to the user, retried
	// after nothing.
	ErrUnsupportedArchive = errors.New("archive format unsupported")

	// ErrArchiveEncrypted marks archive-level encryption (password
	// required). Individual encrypted entries are skipped instead.
	ErrArchiveEncrypted = errors.New("archive encrypted")
)

type strategy func(src, destDir string) error

type Extractor struct {
	pageWidth  int
	logger     *slog.Logger
	strategies map[string]strategy
}

// New builds an extractor. pageWidth is the display long edge used when
// rasterizing document pages.
func New(pageWidth int, logger *slog.Logger) *Extractor {
	if pageWidth <= 0 {
		pageWidth = 1920
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Extractor{pageWidth: pageWidth, logger: logger}
	e.strategies = map[string]strategy{
		".zip": e.extractZip,
		".cbz": e.extractZip,
		".rar": e.extractRar,
		".cbr": e.extractRar,
		".pdf": e.extractPDF,
	}
	return e
}

// Extract dispatches on the file extension. Unknown extensions are a no-op:
// the file stays cached but produces no pages.
func (e *Extractor) Extract(src, destDir string) error {
	ext := strings.ToLower(filepath.Ext(src))
	unpack, ok := e.strategies[ext]
	if !ok {
		e.logger.Debug("no extraction strategy for file", "file", src, "ext", ext)
		return nil
	}
	return unpack(src, destDir)
}

// Readable reports whether a filename has an extension some strategy can
// unpack. Used to set the readable flag on cached comics.
func Readable(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".zip", ".cbz", ".rar", ".cbr", ".pdf":
		return true
	default:
		return false
	}
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

func isImageEntry(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}
