package attendance

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type DBTX interface {
	ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row
}

// RecordStore is the persistence collaborator for attendance rows.
type RecordStore interface {
	Insert(ctx context.Context, date string, section Section, memberID string) (Record, error)
	Delete(ctx context.Context, id uint64) error
	Find(ctx context.Context, date string, section Section, memberID string) (*Record, error)
	ListByDate(ctx context.Context, date string, section Section) ([]Record, error)
	PresentSet(ctx context.Context, date string, section Section) (map[string]struct{}, error)
	List(ctx context.Context, q ListQuery) ([]Record, int64, error)
	Stats(ctx context.Context, section Section, from, to time.Time, limit int) ([]StatsRow, error)
	DeleteByMember(ctx context.Context, memberID string) ([]string, error)
}

type Store struct{ db DBTX }

func NewStore(db DBTX) *Store { return &Store{db: db} }

const selectCols = `attendance_id, DATE_FORMAT(date, '%Y-%m-%d') AS date, section, member_id, created_at`

func (s *Store) Insert(ctx context.Context, date string, section Section, memberID string) (Record, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO attendance (date, section, member_id, created_at)
	VALUES (?, ?, ?, UTC_TIMESTAMP(6))`, date, string(section), memberID)
	if err != nil {
		return Record{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, err
	}

	row := s.db.QueryRowContext(ctx, `
	SELECT `+selectCols+`
	FROM attendance
	WHERE attendance_id = ?`, id)
	var r recordRow
	if err := row.Scan(&r.ID, &r.Date, &r.Section, &r.MemberID, &r.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return Record{}, fmt.Errorf("inserted but not found")
		}
		return Record{}, err
	}
	return r.toModel(), nil
}

func (s *Store) Delete(ctx context.Context, id uint64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attendance WHERE attendance_id = ?`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) Find(ctx context.Context, date string, section Section, memberID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+selectCols+`
	FROM attendance
	WHERE date = ? AND section = ? AND member_id = ?
	LIMIT 1`, date, string(section), memberID)
	var r recordRow
	err := row.Scan(&r.ID, &r.Date, &r.Section, &r.MemberID, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := r.toModel()
	return &m, nil
}

func (s *Store) ListByDate(ctx context.Context, date string, section Section) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT `+selectCols+`
	FROM attendance
	WHERE date = ? AND section = ?
	ORDER BY created_at ASC, attendance_id ASC`, date, string(section))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r recordRow
		if err := rows.Scan(&r.ID, &r.Date, &r.Section, &r.MemberID, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, rows.Err()
}

func (s *Store) PresentSet(ctx context.Context, date string, section Section) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT member_id FROM attendance
	WHERE date = ? AND section = ?`, date, string(section))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// List builds a dynamic WHERE from the query, newest first.
func (s *Store) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)

	buf.WriteString(`
	SELECT ` + selectCols + `
	FROM attendance
	`)
	if q.MemberID != nil && *q.MemberID != "" {
		wheres = append(wheres, "member_id = ?")
		args = append(args, *q.MemberID)
	}
	if q.Section != nil {
		wheres = append(wheres, "section = ?")
		args = append(args, string(*q.Section))
	}
	if q.On != nil && *q.On != "" {
		wheres = append(wheres, "date = ?")
		args = append(args, *q.On)
	} else {
		if q.From != nil && *q.From != "" {
			wheres = append(wheres, "date >= ?")
			args = append(args, *q.From)
		}
		if q.To != nil && *q.To != "" {
			wheres = append(wheres, "date <= ?")
			args = append(args, *q.To)
		}
	}
	if len(wheres) > 0 {
		buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}

	buf.WriteString(" ORDER BY date DESC, created_at DESC, attendance_id DESC")

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	buf.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, q.Offset))

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r recordRow
		if err := rows.Scan(&r.ID, &r.Date, &r.Section, &r.MemberID, &r.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// COUNT reuses the WHERE built above
	var cntBuf bytes.Buffer
	cntBuf.WriteString("SELECT COUNT(*) FROM attendance")
	if len(wheres) > 0 {
		cntBuf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cntBuf.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Stats: attendance counts per member over a range (TOP N)
func (s *Store) Stats(ctx context.Context, section Section, from, to time.Time, limit int) ([]StatsRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT member_id, COUNT(*) AS cnt
	FROM attendance
	WHERE section = ? AND date BETWEEN ? AND ?
	GROUP BY member_id
	ORDER BY cnt DESC, member_id ASC
	LIMIT ?`, string(section), from.Format(DateLayout), to.Format(DateLayout), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatsRow
	for rows.Next() {
		var row StatsRow
		if err := rows.Scan(&row.MemberID, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DeleteByMember removes every attendance row of a member and returns the
// distinct Carrom dates that were affected, so the caller can run the partner
// cascade for each.
func (s *Store) DeleteByMember(ctx context.Context, memberID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT DISTINCT DATE_FORMAT(date, '%Y-%m-%d')
	FROM attendance
	WHERE member_id = ? AND section = ?`, memberID, string(SectionCarrom))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM attendance WHERE member_id = ?`, memberID); err != nil {
		return nil, err
	}
	return dates, nil
}
