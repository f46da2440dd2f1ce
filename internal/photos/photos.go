// Package photos keeps one gathering photo per date.
package photos

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/oklog/ulid/v2"

	"govindo-backend/internal/platform/storage"
)

const DateLayout = "2006-01-02"

type Photo struct {
	ID        string
	Date      string
	ImageRef  string
	CreatedAt time.Time
}

type PhotoResponse struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

type DBTX interface {
	ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row
}

type PhotoStore interface {
	Upsert(ctx context.Context, p *Photo) error
	GetByDate(ctx context.Context, date string) (*Photo, error)
	History(ctx context.Context, limit, offset int) ([]Photo, error)
}

type Store struct{ db DBTX }

func NewStore(db DBTX) *Store { return &Store{db: db} }

// Upsert: one photo per date; re-uploading replaces the ref.
func (s *Store) Upsert(ctx context.Context, p *Photo) error {
	const q = `
	INSERT INTO photo_history (id, date, image_ref, created_at)
	VALUES (?, ?, ?, UTC_TIMESTAMP(6))
	ON DUPLICATE KEY UPDATE
	image_ref  = VALUES(image_ref),
	created_at = VALUES(created_at)`
	_, err := s.db.ExecContext(ctx, q, p.ID, p.Date, p.ImageRef)
	return err
}

func (s *Store) GetByDate(ctx context.Context, date string) (*Photo, error) {
	const q = `
	SELECT id, DATE_FORMAT(date, '%Y-%m-%d'), image_ref, created_at
	FROM photo_history
	WHERE date = ?
	LIMIT 1`
	var p Photo
	err := s.db.QueryRowContext(ctx, q, date).Scan(&p.ID, &p.Date, &p.ImageRef, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) History(ctx context.Context, limit, offset int) ([]Photo, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, DATE_FORMAT(date, '%Y-%m-%d'), image_ref, created_at
	FROM photo_history
	ORDER BY date DESC
	LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.Date, &p.ImageRef, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ===== Service =====

type Service struct {
	store PhotoStore
	files storage.Store
}

func NewService(db *sql.DB, files storage.Store) *Service {
	return &Service{store: NewStore(db), files: files}
}

func (s *Service) Upload(ctx context.Context, date, filename string, r io.Reader) (Photo, error) {
	if _, err := time.ParseInLocation(DateLayout, date, time.UTC); err != nil {
		return Photo{}, fmt.Errorf("date must be YYYY-MM-DD")
	}

	id := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String()
	name := date + "_" + id + path.Ext(filename)

	ref, err := s.files.SavePhoto(name, r)
	if err != nil {
		return Photo{}, fmt.Errorf("failed to store photo: %w", err)
	}

	p := Photo{ID: id, Date: date, ImageRef: ref}
	if err := s.store.Upsert(ctx, &p); err != nil {
		return Photo{}, fmt.Errorf("failed to save photo record: %w", err)
	}
	return p, nil
}

func (s *Service) ByDate(ctx context.Context, date string) (*Photo, error) {
	return s.store.GetByDate(ctx, date)
}

func (s *Service) History(ctx context.Context, limit, offset int) ([]Photo, error) {
	return s.store.History(ctx, limit, offset)
}

func (s *Service) toDTO(p Photo) PhotoResponse {
	return PhotoResponse{
		ID:        p.ID,
		Date:      p.Date,
		ImageURL:  s.files.PhotoURL(p.ImageRef),
		CreatedAt: p.CreatedAt,
	}
}
