package tournament

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ===== Error model (same shape as the other packages) =====

type Code string

const (
	CodeValidation  Code = "VALIDATION"
	CodeNotFound    Code = "NOT_FOUND"
	CodeConflict    Code = "CONFLICT"
	CodePersistence Code = "PERSISTENCE"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string         { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrValidation(msg string) *APIError  { return &APIError{Code: CodeValidation, Message: msg} }
func ErrNotFound(msg string) *APIError    { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError    { return &APIError{Code: CodeConflict, Message: msg} }
func ErrPersistence(msg string) *APIError { return &APIError{Code: CodePersistence, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeValidation:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		case CodePersistence:
			return 502
		}
	}
	return 500
}

// ===== Service =====

type TournamentStore interface {
	GetSettings(ctx context.Context) (*Settings, error)
	InsertSettings(ctx context.Context, st *Settings) error
	UpdateSettings(ctx context.Context, st *Settings) (int64, error)
	InsertTeam(ctx context.Context, t *Team) error
	GetTeam(ctx context.Context, id string) (*Team, error)
	ListTeams(ctx context.Context) ([]Team, error)
	DeleteTeam(ctx context.Context, id string) (int64, error)
	CountMatchesForTeam(ctx context.Context, teamID string) (int64, error)
	InsertMatch(ctx context.Context, m *Match) error
	GetMatch(ctx context.Context, id string) (*Match, error)
	ListMatches(ctx context.Context, stage *Stage) ([]Match, error)
	UpdateMatchResult(ctx context.Context, id, winnerID string, t1, t2 int) (int64, error)
	DeleteMatch(ctx context.Context, id string) (int64, error)
}

type IDGen interface {
	New() string
}

type uuidGen struct{}

func (uuidGen) New() string { return uuid.NewString() }

type Service struct {
	store TournamentStore
	id    IDGen
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db), id: uuidGen{}}
}

const defaultDurationDays = 30

// EnsureSettings returns the singleton settings row, creating a 30-day
// upcoming tournament when none exists yet.
func (s *Service) EnsureSettings(ctx context.Context) (Settings, error) {
	st, err := s.store.GetSettings(ctx)
	if err != nil {
		return Settings{}, ErrPersistence("failed to load settings: " + err.Error())
	}
	if st != nil {
		return *st, nil
	}

	now := time.Now().UTC()
	created := Settings{
		ID:        s.id.New(),
		StartDate: now.Format(DateLayout),
		EndDate:   now.AddDate(0, 0, defaultDurationDays).Format(DateLayout),
		Status:    StatusUpcoming,
	}
	if err := s.store.InsertSettings(ctx, &created); err != nil {
		return Settings{}, ErrPersistence("failed to create settings: " + err.Error())
	}
	return created, nil
}

func (s *Service) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (Settings, error) {
	start, err := time.ParseInLocation(DateLayout, req.StartDate, time.UTC)
	if err != nil {
		return Settings{}, ErrValidation("start_date must be YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(DateLayout, req.EndDate, time.UTC)
	if err != nil {
		return Settings{}, ErrValidation("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return Settings{}, ErrValidation("end_date must be >= start_date")
	}
	status, _ := ParseStatus(req.Status)

	st, err := s.EnsureSettings(ctx)
	if err != nil {
		return Settings{}, err
	}
	st.StartDate = req.StartDate
	st.EndDate = req.EndDate
	st.Status = status

	if _, err := s.store.UpdateSettings(ctx, &st); err != nil {
		return Settings{}, ErrPersistence("failed to update settings: " + err.Error())
	}
	return st, nil
}

func (s *Service) CreateTeam(ctx context.Context, req CreateTeamRequest) (Team, error) {
	if req.Player1ID == req.Player2ID {
		return Team{}, ErrValidation("a team needs two different players")
	}

	t := Team{
		ID:        s.id.New(),
		Name:      req.Name,
		Player1ID: req.Player1ID,
		Player2ID: req.Player2ID,
		Group:     req.Group,
	}
	if err := s.store.InsertTeam(ctx, &t); err != nil {
		return Team{}, ErrPersistence("failed to create team: " + err.Error())
	}
	return t, nil
}

func (s *Service) ListTeams(ctx context.Context) ([]Team, error) {
	out, err := s.store.ListTeams(ctx)
	if err != nil {
		return nil, ErrPersistence("failed to list teams: " + err.Error())
	}
	return out, nil
}

// DeleteTeam refuses while matches still reference the team.
func (s *Service) DeleteTeam(ctx context.Context, id string) error {
	n, err := s.store.CountMatchesForTeam(ctx, id)
	if err != nil {
		return ErrPersistence("failed to check matches: " + err.Error())
	}
	if n > 0 {
		return ErrConflict("team still has matches; delete them first")
	}

	aff, err := s.store.DeleteTeam(ctx, id)
	if err != nil {
		return ErrPersistence("failed to delete team: " + err.Error())
	}
	if aff == 0 {
		return ErrNotFound("team not found")
	}
	return nil
}

func (s *Service) CreateMatch(ctx context.Context, req CreateMatchRequest) (Match, error) {
	if _, err := time.ParseInLocation(DateLayout, req.Date, time.UTC); err != nil {
		return Match{}, ErrValidation("date must be YYYY-MM-DD")
	}
	if req.Team1ID == req.Team2ID {
		return Match{}, ErrValidation("a match needs two different teams")
	}
	stage, _ := ParseStage(req.Stage)

	for _, teamID := range []string{req.Team1ID, req.Team2ID} {
		t, err := s.store.GetTeam(ctx, teamID)
		if err != nil {
			return Match{}, ErrPersistence("failed to check team: " + err.Error())
		}
		if t == nil {
			return Match{}, ErrValidation("unknown team: " + teamID)
		}
	}

	m := Match{
		ID:      s.id.New(),
		Team1ID: req.Team1ID,
		Team2ID: req.Team2ID,
		Date:    req.Date,
		Stage:   stage,
		Group:   req.Group,
	}
	if err := s.store.InsertMatch(ctx, &m); err != nil {
		return Match{}, ErrPersistence("failed to create match: " + err.Error())
	}
	return m, nil
}

func (s *Service) ListMatches(ctx context.Context, stage *Stage) ([]Match, error) {
	out, err := s.store.ListMatches(ctx, stage)
	if err != nil {
		return nil, ErrPersistence("failed to list matches: " + err.Error())
	}
	return out, nil
}

// RecordResult enters scores and the winner for a match.
func (s *Service) RecordResult(ctx context.Context, id string, req RecordResultRequest) (Match, error) {
	if req.Team1Score == nil || req.Team2Score == nil {
		return Match{}, ErrValidation("both scores are required")
	}
	if *req.Team1Score < 0 || *req.Team2Score < 0 {
		return Match{}, ErrValidation("scores must be >= 0")
	}

	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return Match{}, ErrPersistence("failed to load match: " + err.Error())
	}
	if m == nil {
		return Match{}, ErrNotFound("match not found")
	}
	if req.WinnerID != m.Team1ID && req.WinnerID != m.Team2ID {
		return Match{}, ErrValidation("winner must be one of the match teams")
	}

	if _, err := s.store.UpdateMatchResult(ctx, id, req.WinnerID, *req.Team1Score, *req.Team2Score); err != nil {
		return Match{}, ErrPersistence("failed to record result: " + err.Error())
	}

	m.WinnerID = &req.WinnerID
	m.Team1Score = req.Team1Score
	m.Team2Score = req.Team2Score
	return *m, nil
}

func (s *Service) DeleteMatch(ctx context.Context, id string) error {
	aff, err := s.store.DeleteMatch(ctx, id)
	if err != nil {
		return ErrPersistence("failed to delete match: " + err.Error())
	}
	if aff == 0 {
		return ErrNotFound("match not found")
	}
	return nil
}
