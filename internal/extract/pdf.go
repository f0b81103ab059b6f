package extract

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	fitz "github.com/gen2brain/go-fitz"
	xdraw "golang.org/x/image/draw"
)

// extractPDF rasterizes each page to a JPEG whose long edge is the
// configured display width. Pages are composited onto white first so that
// transparency does not turn into black blocks, and named with a zero-padded
// index wide enough for the page count, so lexicographic and numeric order
// coincide.
func (e *Extractor) extractPDF(src, destDir string) error {
	doc, err := fitz.New(src)
	if err != nil {
		return fmt.Errorf("open pdf %s: %w", src, classifyPDFError(err))
	}
	defer doc.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create pages dir: %w", err)
	}

	total := doc.NumPage()
	for page := 0; page < total; page++ {
		target := filepath.Join(destDir, pageFileName(page, total))
		if _, err := os.Stat(target); err == nil {
			continue
		}

		img, err := doc.Image(page)
		if err != nil {
			return fmt.Errorf("render pdf page %d of %s: %w", page+1, src, classifyPDFError(err))
		}

		if err := writePage(e.fitToWidth(img), target); err != nil {
			return fmt.Errorf("write pdf page %d of %s: %w", page+1, src, err)
		}
	}

	return nil
}

// fitToWidth scales the rendered page so its long edge equals the display
// width, preserving aspect ratio, over a white background.
func (e *Extractor) fitToWidth(img image.Image) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	longEdge := width
	if height > longEdge {
		longEdge = height
	}

	scale := float64(e.pageWidth) / float64(longEdge)
	targetWidth := int(float64(width) * scale)
	targetHeight := int(float64(height) * scale)
	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// pageFileName pads the 1-based page number to the width of the page count.
func pageFileName(page, total int) string {
	pad := len(strconv.Itoa(total))
	return fmt.Sprintf("%0*d.jpg", pad, page+1)
}

func writePage(img image.Image, target string) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create page file: %w", err)
	}

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 85}); err != nil {
		out.Close()
		os.Remove(target)
		return fmt.Errorf("encode page: %w", err)
	}
	return out.Close()
}

func classifyPDFError(err error) error {
	if err == nil {
		return nil
	}
	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "password") || strings.Contains(message, "encrypt"):
		return ErrArchiveEncrypted
	case strings.Contains(message, "cannot open") || strings.Contains(message, "format"):
		return ErrUnsupportedArchive
	default:
		return err
	}
}
