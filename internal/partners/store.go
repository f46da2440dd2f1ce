package partners

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"govindo-backend/internal/platform/db"
)

// Store is the MySQL implementation of Persistence.
type Store struct {
	db *sql.DB
	id IDGen
}

func NewStore(db *sql.DB) *Store { return &Store{db: db, id: ulidGen{}} }

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *Store) PersistPair(ctx context.Context, p Pair) (Pair, error) {
	id, err := s.id.New()
	if err != nil {
		return Pair{}, err
	}

	const q = `
	INSERT INTO partner_assignments (id, date, player1_id, player2_id, created_at)
	VALUES (?, ?, ?, ?, UTC_TIMESTAMP(6))`
	if _, err := s.db.ExecContext(ctx, q, id, p.Date, slotOrNil(p.Player1), slotOrNil(p.Player2)); err != nil {
		return Pair{}, err
	}

	out := p.clone()
	out.ID = id
	out.State = StateCommitted
	out.CreatedAt = time.Now().UTC()
	return out, nil
}

func (s *Store) UpdatePair(ctx context.Context, id string, slot Slot, memberID *string) error {
	// column picked from a fixed map, never from input
	col := "player1_id"
	if slot == SlotPlayer2 {
		col = "player2_id"
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE partner_assignments SET `+col+` = ? WHERE id = ?`,
		slotOrNil(memberID), id)
	if err != nil {
		return err
	}
	// RowsAffected is 0 both for a missing row and for a no-op write, so a
	// missing row is confirmed with a lookup.
	if aff, _ := res.RowsAffected(); aff == 0 {
		var one int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM partner_assignments WHERE id = ? LIMIT 1`, id).Scan(&one)
		if err == sql.ErrNoRows {
			return NewNotFoundError("pair not found: " + id)
		}
		return err
	}
	return nil
}

func (s *Store) DeletePair(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM partner_assignments WHERE id = ?`, id)
	return err
}

func (s *Store) ListPairs(ctx context.Context, date string) ([]Pair, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, DATE_FORMAT(date, '%Y-%m-%d'), player1_id, player2_id, created_at
	FROM partner_assignments
	WHERE date = ?
	ORDER BY created_at ASC, id ASC`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Pair
	for rows.Next() {
		var p Pair
		var p1, p2 sql.NullString
		if err := rows.Scan(&p.ID, &p.Date, &p1, &p2, &p.CreatedAt); err != nil {
			return nil, err
		}
		if p1.Valid {
			p.Player1 = &p1.String
		}
		if p2.Valid {
			p.Player2 = &p2.String
		}
		p.State = StateCommitted
		out = append(out, p)
	}
	return out, rows.Err()
}

// ClearMember nulls every slot referencing the member across all dates. Used
// by the member-deletion cascade, not by the per-date engine path. Both column
// sweeps run in one transaction.
func (s *Store) ClearMember(ctx context.Context, memberID string) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE partner_assignments SET player1_id = NULL WHERE player1_id = ?`, memberID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE partner_assignments SET player2_id = NULL WHERE player2_id = ?`, memberID)
		return err
	})
}

func slotOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
