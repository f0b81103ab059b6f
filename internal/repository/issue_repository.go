package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/veikko/comicshelf/internal/models"
)

type IssueRepository struct {
	db *sql.DB
}

func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

const issueSelect = `
	SELECT id, volume_id, name, description, image_url, file_name, file_url,
		is_read, current_page, status_changed_at
	FROM issues
`

func (r *IssueRepository) Insert(issue *models.Issue) error {
	_, err := r.db.Exec(`
		INSERT INTO issues (id, volume_id, name, description, image_url, file_name, file_url, is_read, current_page, status_changed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, issue.ID, issue.VolumeID, issue.Name, issue.Description, issue.ImageURL,
		issue.FileName, issue.FileURL,
		boolToInt(issue.Status.IsRead), issue.Status.CurrentPage, formatStatusTime(issue.Status.ChangedAt))
	if err != nil {
		return fmt.Errorf("insert issue %s: %w", issue.ID, err)
	}
	return nil
}

// UpdateAll persists merged issues verbatim, read status included. The
// caller (the sync engine) has already resolved status conflicts.
func (r *IssueRepository) UpdateAll(issues []models.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin issue update tx: %w", err)
	}

	for _, issue := range issues {
		_, err := tx.Exec(`
			UPDATE issues
			SET volume_id = ?, name = ?, description = ?, image_url = ?, file_name = ?, file_url = ?,
				is_read = ?, current_page = ?, status_changed_at = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, issue.VolumeID, issue.Name, issue.Description, issue.ImageURL, issue.FileName, issue.FileURL,
			boolToInt(issue.Status.IsRead), issue.Status.CurrentPage, formatStatusTime(issue.Status.ChangedAt),
			issue.ID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("update issue %s: %w", issue.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit issue update tx: %w", err)
	}
	return nil
}

// SetReadStatus is the local mutation path (user turned a page or toggled
// read). It stamps the change with the current UTC time, which is what the
// next sync pass compares against the remote.
func (r *IssueRepository) SetReadStatus(id string, isRead bool, currentPage int) (models.ReadStatus, error) {
	status := models.ReadStatus{
		IsRead:      isRead,
		CurrentPage: currentPage,
		ChangedAt:   time.Now().UTC(),
	}

	result, err := r.db.Exec(`
		UPDATE issues
		SET is_read = ?, current_page = ?, status_changed_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, boolToInt(status.IsRead), status.CurrentPage, formatStatusTime(status.ChangedAt), id)
	if err != nil {
		return models.ReadStatus{}, fmt.Errorf("set issue read status %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return models.ReadStatus{}, fmt.Errorf("set issue read status %s: %w", id, err)
	}
	if affected == 0 {
		return models.ReadStatus{}, fmt.Errorf("issue %s not found", id)
	}
	return status, nil
}

func (r *IssueRepository) GetByID(id string) (*models.Issue, error) {
	row := r.db.QueryRow(issueSelect+` WHERE id = ?`, id)

	issue, err := scanIssue(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get issue by id: %w", err)
	}
	return issue, nil
}

func (r *IssueRepository) List() ([]models.Issue, error) {
	return r.queryIssues(issueSelect + ` ORDER BY name, id`)
}

func (r *IssueRepository) ListByVolume(volumeID string) ([]models.Issue, error) {
	return r.queryIssues(issueSelect+` WHERE volume_id = ? ORDER BY name, id`, volumeID)
}

// ListCached joins every issue with its optional cached-comic row.
func (r *IssueRepository) ListCached() ([]models.CachedIssue, error) {
	rows, err := r.db.Query(`
		SELECT i.id, i.volume_id, i.name, i.description, i.image_url, i.file_name, i.file_url,
			i.is_read, i.current_page, i.status_changed_at,
			c.issue_id, c.file_name, c.readable, c.unpacked
		FROM issues i
		LEFT JOIN cached_comics c ON c.issue_id = i.id
		ORDER BY i.name, i.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list cached issues: %w", err)
	}
	defer rows.Close()

	cached := make([]models.CachedIssue, 0)
	for rows.Next() {
		var (
			issue     models.Issue
			isRead    int
			changedAt string
			comicID   sql.NullString
			comicFile sql.NullString
			readable  sql.NullInt64
			unpacked  sql.NullInt64
		)
		err := rows.Scan(
			&issue.ID, &issue.VolumeID, &issue.Name, &issue.Description, &issue.ImageURL,
			&issue.FileName, &issue.FileURL,
			&isRead, &issue.Status.CurrentPage, &changedAt,
			&comicID, &comicFile, &readable, &unpacked,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cached issue row: %w", err)
		}

		issue.Status.IsRead = isRead == 1
		if issue.Status.ChangedAt, err = parseStatusTime(changedAt); err != nil {
			return nil, err
		}

		item := models.CachedIssue{Issue: issue}
		if comicID.Valid {
			item.Comic = &models.CachedComic{
				IssueID:  comicID.String,
				FileName: comicFile.String,
				Readable: readable.Int64 == 1,
				Unpacked: unpacked.Int64 == 1,
			}
		}
		cached = append(cached, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached issue rows: %w", err)
	}
	return cached, nil
}

func (r *IssueRepository) queryIssues(query string, args ...any) ([]models.Issue, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	issues := make([]models.Issue, 0)
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issue row: %w", err)
		}
		issues = append(issues, *issue)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issue rows: %w", err)
	}
	return issues, nil
}

// Delete removes the issue row only; the cached comic row and files must be
// removed first.
func (r *IssueRepository) Delete(id string) error {
	if _, err := r.db.Exec(`DELETE FROM issues WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete issue %s: %w", id, err)
	}
	return nil
}

func scanIssue(row interface{ Scan(...any) error }) (*models.Issue, error) {
	var (
		issue     models.Issue
		isRead    int
		changedAt string
	)
	err := row.Scan(
		&issue.ID,
		&issue.VolumeID,
		&issue.Name,
		&issue.Description,
		&issue.ImageURL,
		&issue.FileName,
		&issue.FileURL,
		&isRead,
		&issue.Status.CurrentPage,
		&changedAt,
	)
	if err != nil {
		return nil, err
	}

	issue.Status.IsRead = isRead == 1
	if issue.Status.ChangedAt, err = parseStatusTime(changedAt); err != nil {
		return nil, err
	}
	return &issue, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
