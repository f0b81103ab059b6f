package repository

import (
	"database/sql"
	"fmt"

	"github.com/veikko/comicshelf/internal/models"
)

type VolumeRepository struct {
	db *sql.DB
}

func NewVolumeRepository(db *sql.DB) *VolumeRepository {
	return &VolumeRepository{db: db}
}

// volumeSelect computes the per-volume aggregates at query time: issue
// count, "all issues read", and the latest status change. The aggregates are
// never stored (volume read status is a projection over issues).
const volumeSelect = `
	SELECT v.id, v.publisher_id, v.name, v.description, v.image_url, v.start_year,
		COUNT(i.id),
		CASE WHEN COUNT(i.id) > 0 AND MIN(i.is_read) = 1 THEN 1 ELSE 0 END,
		MAX(i.status_changed_at)
	FROM volumes v
	LEFT JOIN issues i ON i.volume_id = v.id
`

func (r *VolumeRepository) Insert(volume *models.Volume) error {
	_, err := r.db.Exec(`
		INSERT INTO volumes (id, publisher_id, name, description, image_url, start_year)
		VALUES (?, ?, ?, ?, ?, ?)
	`, volume.ID, volume.PublisherID, volume.Name, volume.Description, volume.ImageURL, volume.StartYear)
	if err != nil {
		return fmt.Errorf("insert volume %s: %w", volume.ID, err)
	}
	return nil
}

// UpdateAll persists the non-derived fields of each volume. Read status is
// not written: it is computed from issues.
func (r *VolumeRepository) UpdateAll(volumes []models.Volume) error {
	if len(volumes) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin volume update tx: %w", err)
	}

	for _, volume := range volumes {
		_, err := tx.Exec(`
			UPDATE volumes
			SET publisher_id = ?, name = ?, description = ?, image_url = ?, start_year = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, volume.PublisherID, volume.Name, volume.Description, volume.ImageURL, volume.StartYear, volume.ID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("update volume %s: %w", volume.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit volume update tx: %w", err)
	}
	return nil
}

func (r *VolumeRepository) GetByID(id string) (*models.Volume, error) {
	row := r.db.QueryRow(volumeSelect+` WHERE v.id = ? GROUP BY v.id`, id)

	volume, err := scanVolume(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get volume by id: %w", err)
	}
	return volume, nil
}

func (r *VolumeRepository) List() ([]models.Volume, error) {
	return r.queryVolumes(volumeSelect + ` GROUP BY v.id ORDER BY v.name, v.id`)
}

func (r *VolumeRepository) ListByPublisher(publisherID string) ([]models.Volume, error) {
	return r.queryVolumes(volumeSelect+` WHERE v.publisher_id = ? GROUP BY v.id ORDER BY v.start_year, v.name, v.id`, publisherID)
}

func (r *VolumeRepository) queryVolumes(query string, args ...any) ([]models.Volume, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list volumes: %w", err)
	}
	defer rows.Close()

	volumes := make([]models.Volume, 0)
	for rows.Next() {
		volume, err := scanVolume(rows)
		if err != nil {
			return nil, fmt.Errorf("scan volume row: %w", err)
		}
		volumes = append(volumes, *volume)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate volume rows: %w", err)
	}
	return volumes, nil
}

// Delete removes the volume row only; issues must already be gone.
func (r *VolumeRepository) Delete(id string) error {
	if _, err := r.db.Exec(`DELETE FROM volumes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete volume %s: %w", id, err)
	}
	return nil
}

func scanVolume(row interface{ Scan(...any) error }) (*models.Volume, error) {
	var (
		volume    models.Volume
		isRead    int
		changedAt sql.NullString
	)
	err := row.Scan(
		&volume.ID,
		&volume.PublisherID,
		&volume.Name,
		&volume.Description,
		&volume.ImageURL,
		&volume.StartYear,
		&volume.IssueCount,
		&isRead,
		&changedAt,
	)
	if err != nil {
		return nil, err
	}

	volume.Status.IsRead = isRead == 1
	if changedAt.Valid {
		parsed, err := parseStatusTime(changedAt.String)
		if err != nil {
			return nil, err
		}
		volume.Status.ChangedAt = &parsed
	}
	return &volume, nil
}
