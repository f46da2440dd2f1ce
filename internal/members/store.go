package members

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row
}

type MemberStore interface {
	Insert(ctx context.Context, m *Member) error
	Get(ctx context.Context, id string) (*Member, error)
	List(ctx context.Context) ([]Member, error)
	UpdateName(ctx context.Context, id, name string) (int64, error)
	UpdateAvatar(ctx context.Context, id string, ref *string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type Store struct{ db DBTX }

func NewStore(db DBTX) *Store { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, m *Member) error {
	const q = `
	INSERT INTO members (id, name, avatar_ref, created_at)
	VALUES (?, ?, ?, UTC_TIMESTAMP(6))`
	_, err := s.db.ExecContext(ctx, q, m.ID, m.Name, refOrNil(m.AvatarRef))
	return err
}

func (s *Store) Get(ctx context.Context, id string) (*Member, error) {
	const q = `
	SELECT id, name, avatar_ref, created_at
	FROM members
	WHERE id = ?
	LIMIT 1`
	var m Member
	var ref sql.NullString
	err := s.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Name, &ref, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if ref.Valid {
		m.AvatarRef = &ref.String
	}
	return &m, nil
}

func (s *Store) List(ctx context.Context) ([]Member, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, name, avatar_ref, created_at
	FROM members
	ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		var ref sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &ref, &m.CreatedAt); err != nil {
			return nil, err
		}
		if ref.Valid {
			m.AvatarRef = &ref.String
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) UpdateName(ctx context.Context, id, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE members SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) UpdateAvatar(ctx context.Context, id string, ref *string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE members SET avatar_ref = ? WHERE id = ?`, refOrNil(ref), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func refOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
