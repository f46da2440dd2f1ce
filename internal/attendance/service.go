package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"govindo-backend/internal/partners"
)

// ===== Error model (same shape as the partners package) =====

type Code string

const (
	CodeValidation  Code = "VALIDATION"
	CodeDuplicate   Code = "DUPLICATE"
	CodeNotFound    Code = "NOT_FOUND"
	CodePersistence Code = "PERSISTENCE"
	CodeInternal    Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string         { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrValidation(msg string) *APIError  { return &APIError{Code: CodeValidation, Message: msg} }
func ErrDuplicate(msg string) *APIError   { return &APIError{Code: CodeDuplicate, Message: msg} }
func ErrNotFound(msg string) *APIError    { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrPersistence(msg string) *APIError { return &APIError{Code: CodePersistence, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeValidation:
			return 400
		case CodeNotFound:
			return 404
		case CodeDuplicate:
			return 409
		case CodePersistence:
			return 502
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

// Cascader propagates a Carrom attendance removal into the partner pairs of
// that date. Implemented by partners.Engine, wired in main.
type Cascader interface {
	OnAttendanceRemoved(ctx context.Context, date, memberID string) ([]partners.Pair, error)
}

type Service struct {
	store   RecordStore
	cascade Cascader
}

func NewService(db *sql.DB, cascade Cascader) *Service {
	return &Service{store: NewStore(db), cascade: cascade}
}

// AbsenceResult carries what MarkAbsent did beyond the row deletion.
type AbsenceResult struct {
	PairsCleared []partners.Pair
}

// MarkPresent creates the attendance record for (date, section, member).
// A second call for the same triple is rejected with DUPLICATE; callers treat
// that as benign and re-read state.
func (s *Service) MarkPresent(ctx context.Context, date string, section Section, memberID string) (Record, error) {
	if err := validateDate(date); err != nil {
		return Record{}, err
	}
	if memberID == "" {
		return Record{}, ErrValidation("member_id is required")
	}

	existing, err := s.store.Find(ctx, date, section, memberID)
	if err != nil {
		return Record{}, ErrPersistence("failed to check attendance: " + err.Error())
	}
	if existing != nil {
		return Record{}, ErrDuplicate("attendance already marked")
	}

	rec, err := s.store.Insert(ctx, date, section, memberID)
	if err != nil {
		return Record{}, ErrPersistence("failed to save attendance: " + err.Error())
	}
	return rec, nil
}

// MarkAbsent deletes the attendance record and, for Carrom, runs the partner
// cascade before returning. A cascade persistence failure does not undo the
// removal; it comes back as a *partners.CascadeError alongside the result.
func (s *Service) MarkAbsent(ctx context.Context, date string, section Section, memberID string) (AbsenceResult, error) {
	if err := validateDate(date); err != nil {
		return AbsenceResult{}, err
	}

	existing, err := s.store.Find(ctx, date, section, memberID)
	if err != nil {
		return AbsenceResult{}, ErrPersistence("failed to check attendance: " + err.Error())
	}
	if existing == nil {
		return AbsenceResult{}, ErrNotFound("attendance record not found")
	}

	if err := s.store.Delete(ctx, existing.ID); err != nil {
		if err == sql.ErrNoRows {
			return AbsenceResult{}, ErrNotFound("attendance record not found")
		}
		return AbsenceResult{}, ErrPersistence("failed to delete attendance: " + err.Error())
	}

	if section != SectionCarrom || s.cascade == nil {
		return AbsenceResult{}, nil
	}

	pairs, cascadeErr := s.cascade.OnAttendanceRemoved(ctx, date, memberID)
	return AbsenceResult{PairsCleared: pairs}, cascadeErr
}

// IsPresent is a pure lookup.
func (s *Service) IsPresent(ctx context.Context, date string, section Section, memberID string) (bool, error) {
	if err := validateDate(date); err != nil {
		return false, err
	}
	rec, err := s.store.Find(ctx, date, section, memberID)
	if err != nil {
		return false, ErrPersistence("failed to check attendance: " + err.Error())
	}
	return rec != nil, nil
}

func (s *Service) ListPresent(ctx context.Context, date string, section Section) ([]Record, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	recs, err := s.store.ListByDate(ctx, date, section)
	if err != nil {
		return nil, ErrPersistence("failed to list attendance: " + err.Error())
	}
	return recs, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	recs, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, ErrPersistence("failed to list attendance: " + err.Error())
	}
	return recs, total, nil
}

func (s *Service) Stats(ctx context.Context, req StatsRequest) ([]StatsRow, error) {
	from, err := time.ParseInLocation(DateLayout, req.From, time.UTC)
	if err != nil {
		return nil, ErrValidation("from must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(DateLayout, req.To, time.UTC)
	if err != nil {
		return nil, ErrValidation("to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, ErrValidation("to must be >= from")
	}
	rows, err := s.store.Stats(ctx, req.Section, from, to, req.Limit)
	if err != nil {
		return nil, ErrPersistence("failed to compute stats: " + err.Error())
	}
	return rows, nil
}

func validateDate(date string) error {
	if _, err := time.ParseInLocation(DateLayout, date, time.UTC); err != nil {
		return ErrValidation("date must be YYYY-MM-DD")
	}
	return nil
}
