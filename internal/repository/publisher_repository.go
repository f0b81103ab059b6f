package repository

import (
	"database/sql"
	"fmt"

	"github.com/veikko/comicshelf/internal/models"
)

type PublisherRepository struct {
	db *sql.DB
}

func NewPublisherRepository(db *sql.DB) *PublisherRepository {
	return &PublisherRepository{db: db}
}

// Insert fails when the ID already exists; IDs are assigned by the remote
// service and a duplicate insert indicates a sync logic bug.
func (r *PublisherRepository) Insert(publisher *models.Publisher) error {
	_, err := r.db.Exec(`
		INSERT INTO publishers (id, name, description, image_url)
		VALUES (?, ?, ?, ?)
	`, publisher.ID, publisher.Name, publisher.Description, publisher.ImageURL)
	if err != nil {
		return fmt.Errorf("insert publisher %s: %w", publisher.ID, err)
	}
	return nil
}

func (r *PublisherRepository) UpdateAll(publishers []models.Publisher) error {
	if len(publishers) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin publisher update tx: %w", err)
	}

	for _, publisher := range publishers {
		_, err := tx.Exec(`
			UPDATE publishers
			SET name = ?, description = ?, image_url = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, publisher.Name, publisher.Description, publisher.ImageURL, publisher.ID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("update publisher %s: %w", publisher.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit publisher update tx: %w", err)
	}
	return nil
}

func (r *PublisherRepository) GetByID(id string) (*models.Publisher, error) {
	row := r.db.QueryRow(`
		SELECT p.id, p.name, p.description, p.image_url,
			(SELECT COUNT(1) FROM volumes v WHERE v.publisher_id = p.id)
		FROM publishers p
		WHERE p.id = ?
	`, id)

	publisher, err := scanPublisher(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get publisher by id: %w", err)
	}
	return publisher, nil
}

func (r *PublisherRepository) List() ([]models.Publisher, error) {
	rows, err := r.db.Query(`
		SELECT p.id, p.name, p.description, p.image_url,
			(SELECT COUNT(1) FROM volumes v WHERE v.publisher_id = p.id)
		FROM publishers p
		ORDER BY p.name, p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	defer rows.Close()

	publishers := make([]models.Publisher, 0)
	for rows.Next() {
		publisher, err := scanPublisher(rows)
		if err != nil {
			return nil, fmt.Errorf("scan publisher row: %w", err)
		}
		publishers = append(publishers, *publisher)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publisher rows: %w", err)
	}
	return publishers, nil
}

// Delete removes the publisher row only. Cascading its volumes and issues is
// the caller's responsibility and must happen first; the foreign key will
// reject the delete otherwise.
func (r *PublisherRepository) Delete(id string) error {
	if _, err := r.db.Exec(`DELETE FROM publishers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete publisher %s: %w", id, err)
	}
	return nil
}

func scanPublisher(row interface{ Scan(...any) error }) (*models.Publisher, error) {
	var publisher models.Publisher
	err := row.Scan(
		&publisher.ID,
		&publisher.Name,
		&publisher.Description,
		&publisher.ImageURL,
		&publisher.VolumeCount,
	)
	if err != nil {
		return nil, err
	}
	return &publisher, nil
}
