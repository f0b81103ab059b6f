package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeZip(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer file.Close()

	writer := zip.NewWriter(file)
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry, err := writer.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := entry.Write(entries[name]); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(dirEntries))
	for _, entry := range dirEntries {
		names = append(names, entry.Name())
	}
	return names
}

func TestExtractZip_KeepsImagesDropsOtherEntries(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "comic.cbz")
	writeZip(t, src, map[string][]byte{
		"001.jpg":        []byte("page one"),
		"002.png":        []byte("page two"),
		"inner/003.webp": []byte("page three"),
		"info.xml":       []byte("<ComicInfo/>"),
		"thumbs.db":      []byte("junk"),
	})

	dest := filepath.Join(tmp, "pages")
	if err := New(0, nil).Extract(src, dest); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	got := listDir(t, dest)
	want := []string{"001.jpg", "002.png", "003.webp"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i, name := range want {
		if got[i] != name {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestExtractZip_ReextractionSkipsExistingPages(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "comic.zip")
	writeZip(t, src, map[string][]byte{"001.jpg": []byte("original")})

	dest := filepath.Join(tmp, "pages")
	extractor := New(0, nil)
	if err := extractor.Extract(src, dest); err != nil {
		t.Fatalf("first extract failed: %v", err)
	}

	page := filepath.Join(dest, "001.jpg")
	if err := os.WriteFile(page, []byte("edited"), 0o644); err != nil {
		t.Fatalf("overwrite page: %v", err)
	}

	if err := extractor.Extract(src, dest); err != nil {
		t.Fatalf("second extract failed: %v", err)
	}
	data, err := os.ReadFile(page)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if string(data) != "edited" {
		t.Fatalf("existing page was overwritten")
	}
}

func TestExtractZip_CorruptArchiveIsUnsupported(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "broken.zip")
	if err := os.WriteFile(src, []byte("not a zip at all"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	err := New(0, nil).Extract(src, filepath.Join(tmp, "pages"))
	if !errors.Is(err, ErrUnsupportedArchive) {
		t.Fatalf("expected ErrUnsupportedArchive, got %v", err)
	}
}

func TestExtract_UnknownExtensionIsNoOp(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "comic.epub")
	if err := os.WriteFile(src, []byte("whatever"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	dest := filepath.Join(tmp, "pages")
	if err := New(0, nil).Extract(src, dest); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("no-op extraction must not create the pages dir")
	}
}

func TestReadable(t *testing.T) {
	cases := map[string]bool{
		"comic.cbz":  true,
		"comic.CBR":  true,
		"comic.zip":  true,
		"comic.rar":  true,
		"scan.pdf":   true,
		"comic.epub": false,
		"comic":      false,
	}
	for name, want := range cases {
		if got := Readable(name); got != want {
			t.Fatalf("Readable(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestIsImageEntry(t *testing.T) {
	cases := map[string]bool{
		"001.jpg":   true,
		"001.JPEG":  true,
		"cover.png": true,
		"p.webp":    true,
		"info.xml":  false,
		"001":       false,
	}
	for name, want := range cases {
		if got := isImageEntry(name); got != want {
			t.Fatalf("isImageEntry(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestClassifyRarError(t *testing.T) {
	if err := classifyRarError(errors.New("rardecode: archive encrypted, password required")); !errors.Is(err, ErrArchiveEncrypted) {
		t.Fatalf("expected ErrArchiveEncrypted, got %v", err)
	}
	if err := classifyRarError(errors.New("rardecode: bad rar signature")); !errors.Is(err, ErrUnsupportedArchive) {
		t.Fatalf("expected ErrUnsupportedArchive, got %v", err)
	}
	plain := errors.New("read: connection reset")
	if err := classifyRarError(plain); !errors.Is(err, plain) {
		t.Fatalf("expected passthrough, got %v", err)
	}
}

func TestPageFileNamesAreZeroPadded(t *testing.T) {
	cases := []struct {
		page, total int
		want        string
	}{
		{0, 9, "1.jpg"},
		{0, 10, "01.jpg"},
		{9, 10, "10.jpg"},
		{0, 100, "001.jpg"},
	}
	for _, tc := range cases {
		if got := pageFileName(tc.page, tc.total); got != tc.want {
			t.Fatalf("pageFileName(%d, %d) = %q, want %q", tc.page, tc.total, got, tc.want)
		}
	}
}
