package repository

import (
	"database/sql"
	"fmt"

	"github.com/veikko/comicshelf/internal/models"
)

type ComicRepository struct {
	db *sql.DB
}

func NewComicRepository(db *sql.DB) *ComicRepository {
	return &ComicRepository{db: db}
}

// Upsert records a completed download. Two independent triggers (sync and a
// manual download) may race to cache the same issue, so an existing row is
// overwritten rather than treated as an error.
func (r *ComicRepository) Upsert(comic *models.CachedComic) error {
	_, err := r.db.Exec(`
		INSERT INTO cached_comics (issue_id, file_name, readable, unpacked)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(issue_id) DO UPDATE SET
			file_name = excluded.file_name,
			readable = excluded.readable,
			unpacked = excluded.unpacked
	`, comic.IssueID, comic.FileName, boolToInt(comic.Readable), boolToInt(comic.Unpacked))
	if err != nil {
		return fmt.Errorf("upsert cached comic %s: %w", comic.IssueID, err)
	}
	return nil
}

func (r *ComicRepository) GetByIssueID(issueID string) (*models.CachedComic, error) {
	row := r.db.QueryRow(`
		SELECT issue_id, file_name, readable, unpacked
		FROM cached_comics
		WHERE issue_id = ?
	`, issueID)

	comic, err := scanCachedComic(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached comic by issue id: %w", err)
	}
	return comic, nil
}

func (r *ComicRepository) List() ([]models.CachedComic, error) {
	rows, err := r.db.Query(`
		SELECT issue_id, file_name, readable, unpacked
		FROM cached_comics
		ORDER BY issue_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list cached comics: %w", err)
	}
	defer rows.Close()

	comics := make([]models.CachedComic, 0)
	for rows.Next() {
		comic, err := scanCachedComic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cached comic row: %w", err)
		}
		comics = append(comics, *comic)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached comic rows: %w", err)
	}
	return comics, nil
}

func (r *ComicRepository) SetUnpacked(issueID string, unpacked bool) error {
	if _, err := r.db.Exec(`UPDATE cached_comics SET unpacked = ? WHERE issue_id = ?`, boolToInt(unpacked), issueID); err != nil {
		return fmt.Errorf("set cached comic unpacked %s: %w", issueID, err)
	}
	return nil
}

func (r *ComicRepository) Delete(issueID string) error {
	if _, err := r.db.Exec(`DELETE FROM cached_comics WHERE issue_id = ?`, issueID); err != nil {
		return fmt.Errorf("delete cached comic %s: %w", issueID, err)
	}
	return nil
}

func scanCachedComic(row interface{ Scan(...any) error }) (*models.CachedComic, error) {
	var (
		comic    models.CachedComic
		readable int
		unpacked int
	)
	err := row.Scan(&comic.IssueID, &comic.FileName, &readable, &unpacked)
	if err != nil {
		return nil, err
	}
	comic.Readable = readable == 1
	comic.Unpacked = unpacked == 1
	return &comic, nil
}
