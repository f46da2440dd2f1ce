package tournament

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row
}

type Store struct{ db DBTX }

func NewStore(db DBTX) *Store { return &Store{db: db} }

// ===== settings =====

func (s *Store) GetSettings(ctx context.Context) (*Settings, error) {
	const q = `
	SELECT id, DATE_FORMAT(start_date, '%Y-%m-%d'), DATE_FORMAT(end_date, '%Y-%m-%d'), status
	FROM tournament_settings
	LIMIT 1`
	var st Settings
	err := s.db.QueryRowContext(ctx, q).Scan(&st.ID, &st.StartDate, &st.EndDate, &st.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) InsertSettings(ctx context.Context, st *Settings) error {
	const q = `
	INSERT INTO tournament_settings (id, start_date, end_date, status)
	VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, st.ID, st.StartDate, st.EndDate, string(st.Status))
	return err
}

func (s *Store) UpdateSettings(ctx context.Context, st *Settings) (int64, error) {
	const q = `
	UPDATE tournament_settings
	SET start_date = ?, end_date = ?, status = ?
	WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, st.StartDate, st.EndDate, string(st.Status), st.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ===== teams =====

func (s *Store) InsertTeam(ctx context.Context, t *Team) error {
	const q = `
	INSERT INTO teams (id, name, player1_id, player2_id, group_name, created_at)
	VALUES (?, ?, ?, ?, ?, UTC_TIMESTAMP(6))`
	_, err := s.db.ExecContext(ctx, q, t.ID, t.Name, t.Player1ID, t.Player2ID, strOrNil(t.Group))
	return err
}

func (s *Store) GetTeam(ctx context.Context, id string) (*Team, error) {
	const q = `
	SELECT id, name, player1_id, player2_id, group_name, created_at
	FROM teams
	WHERE id = ?
	LIMIT 1`
	var t Team
	var group sql.NullString
	err := s.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Player1ID, &t.Player2ID, &group, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if group.Valid {
		t.Group = &group.String
	}
	return &t, nil
}

func (s *Store) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, name, player1_id, player2_id, group_name, created_at
	FROM teams
	ORDER BY group_name ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Team
	for rows.Next() {
		var t Team
		var group sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.Player1ID, &t.Player2ID, &group, &t.CreatedAt); err != nil {
			return nil, err
		}
		if group.Valid {
			t.Group = &group.String
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) DeleteTeam(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) CountMatchesForTeam(ctx context.Context, teamID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM matches WHERE team1_id = ? OR team2_id = ?`, teamID, teamID).Scan(&n)
	return n, err
}

// ===== matches =====

const matchCols = `id, team1_id, team2_id, DATE_FORMAT(date, '%Y-%m-%d'), stage, group_name, winner_id, team1_score, team2_score, created_at`

func (s *Store) InsertMatch(ctx context.Context, m *Match) error {
	const q = `
	INSERT INTO matches (id, team1_id, team2_id, date, stage, group_name, created_at)
	VALUES (?, ?, ?, ?, ?, ?, UTC_TIMESTAMP(6))`
	_, err := s.db.ExecContext(ctx, q, m.ID, m.Team1ID, m.Team2ID, m.Date, string(m.Stage), strOrNil(m.Group))
	return err
}

func (s *Store) GetMatch(ctx context.Context, id string) (*Match, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+matchCols+`
	FROM matches
	WHERE id = ?
	LIMIT 1`, id)
	m, err := scanMatch(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) ListMatches(ctx context.Context, stage *Stage) ([]Match, error) {
	q := `
	SELECT ` + matchCols + `
	FROM matches`
	var args []any
	if stage != nil {
		q += ` WHERE stage = ?`
		args = append(args, string(*stage))
	}
	q += ` ORDER BY date ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		m, err := scanMatch(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *Store) UpdateMatchResult(ctx context.Context, id, winnerID string, t1, t2 int) (int64, error) {
	const q = `
	UPDATE matches
	SET winner_id = ?, team1_score = ?, team2_score = ?
	WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, winnerID, t1, t2, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) DeleteMatch(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanMatch(scan func(dest ...any) error) (*Match, error) {
	var m Match
	var group, winner sql.NullString
	var s1, s2 sql.NullInt64
	err := scan(&m.ID, &m.Team1ID, &m.Team2ID, &m.Date, &m.Stage, &group, &winner, &s1, &s2, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if group.Valid {
		m.Group = &group.String
	}
	if winner.Valid {
		m.WinnerID = &winner.String
	}
	if s1.Valid {
		v := int(s1.Int64)
		m.Team1Score = &v
	}
	if s2.Valid {
		v := int(s2.Int64)
		m.Team2Score = &v
	}
	return &m, nil
}

func strOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
