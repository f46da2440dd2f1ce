package members

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"govindo-backend/internal/partners"
	"govindo-backend/internal/platform/storage"
)

// AttendanceCleaner deletes every attendance row of a member and returns the
// affected Carrom dates. Implemented by attendance.Store.
type AttendanceCleaner interface {
	DeleteByMember(ctx context.Context, memberID string) ([]string, error)
}

// Cascader clears the member from the partner pairs of one date. Implemented
// by partners.Engine.
type Cascader interface {
	OnAttendanceRemoved(ctx context.Context, date, memberID string) ([]partners.Pair, error)
}

// PairCleaner sweeps the member out of stored pair rows on every date,
// catching rows left behind by earlier cascade failures. Implemented by
// partners.Store.
type PairCleaner interface {
	ClearMember(ctx context.Context, memberID string) error
}

type IDGen interface {
	New() string
}

type uuidGen struct{}

func (uuidGen) New() string { return uuid.NewString() }

type Service struct {
	store      MemberStore
	files      storage.Store
	attendance AttendanceCleaner
	cascade    Cascader
	pairs      PairCleaner
	id         IDGen
}

func NewService(db *sql.DB, files storage.Store, attendance AttendanceCleaner, cascade Cascader, pairs PairCleaner) *Service {
	return &Service{
		store:      NewStore(db),
		files:      files,
		attendance: attendance,
		cascade:    cascade,
		pairs:      pairs,
		id:         uuidGen{},
	}
}

// Create registers a new member. Names come from a web form, so they are
// NFC-normalized before storing (Bengali input arrives in mixed forms).
func (s *Service) Create(ctx context.Context, name string) (Member, error) {
	name = normalizeName(name)
	if name == "" {
		return Member{}, NewValidationError("name is required")
	}

	m := Member{ID: s.id.New(), Name: name}
	if err := s.store.Insert(ctx, &m); err != nil {
		return Member{}, NewPersistenceError("failed to create member: " + err.Error())
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id string) (Member, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return Member{}, NewPersistenceError("failed to load member: " + err.Error())
	}
	if m == nil {
		return Member{}, NewNotFoundError("member not found")
	}
	return *m, nil
}

func (s *Service) List(ctx context.Context) ([]Member, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, NewPersistenceError("failed to list members: " + err.Error())
	}
	return out, nil
}

func (s *Service) Rename(ctx context.Context, id, name string) (Member, error) {
	name = normalizeName(name)
	if name == "" {
		return Member{}, NewValidationError("name is required")
	}

	n, err := s.store.UpdateName(ctx, id, name)
	if err != nil {
		return Member{}, NewPersistenceError("failed to rename member: " + err.Error())
	}
	if n == 0 {
		return Member{}, NewNotFoundError("member not found")
	}
	return s.Get(ctx, id)
}

// ReplaceAvatar stores the uploaded image (resized and webp-encoded by the
// storage collaborator) and points the member row at the new ref. The old
// file is removed best-effort.
func (s *Service) ReplaceAvatar(ctx context.Context, id string, r io.Reader) (Member, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return Member{}, err
	}

	ref, err := s.files.SaveAvatar(id, r)
	if err != nil {
		return Member{}, NewValidationError("failed to process avatar image: " + err.Error())
	}

	if _, err := s.store.UpdateAvatar(ctx, id, &ref); err != nil {
		return Member{}, NewPersistenceError("failed to save avatar ref: " + err.Error())
	}

	if m.AvatarRef != nil && *m.AvatarRef != ref {
		if err := s.files.Delete(*m.AvatarRef); err != nil {
			log.Printf("[WARN] failed to remove old avatar %s: %v", *m.AvatarRef, err)
		}
	}

	m.AvatarRef = &ref
	return m, nil
}

// Delete removes the member and cascades: all attendance rows go first, then
// the member is cleared from the partner pairs of every affected Carrom date.
// The steps are separate writes; a failure midway leaves earlier steps in
// place and is reported as a CASCADE error.
func (s *Service) Delete(ctx context.Context, id string) error {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return NewPersistenceError("failed to load member: " + err.Error())
	}
	if m == nil {
		return NewNotFoundError("member not found")
	}

	dates, err := s.attendance.DeleteByMember(ctx, id)
	if err != nil {
		return NewCascadeError("failed to remove attendance records: " + err.Error())
	}

	var cascadeFailures []string
	for _, date := range dates {
		if _, err := s.cascade.OnAttendanceRemoved(ctx, date, id); err != nil {
			var ce *partners.CascadeError
			if !errors.As(err, &ce) {
				return NewCascadeError("failed to clear partner pairs for " + date + ": " + err.Error())
			}
			cascadeFailures = append(cascadeFailures, date)
		}
	}

	// stored rows on dates outside the attendance set (left behind by earlier
	// cascade failures) are swept in one pass
	if s.pairs != nil {
		if err := s.pairs.ClearMember(ctx, id); err != nil {
			cascadeFailures = append(cascadeFailures, "stored pair sweep")
		}
	}

	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return NewPersistenceError("failed to delete member: " + err.Error())
	}
	if n == 0 {
		return NewNotFoundError("member not found")
	}

	if m.AvatarRef != nil {
		if err := s.files.Delete(*m.AvatarRef); err != nil {
			log.Printf("[WARN] failed to remove avatar %s: %v", *m.AvatarRef, err)
		}
	}

	if len(cascadeFailures) > 0 {
		return NewCascadeError("member deleted, but pair cleanup failed for: " + strings.Join(cascadeFailures, ", "))
	}
	return nil
}

func (s *Service) toDTO(m Member) MemberResponse {
	out := MemberResponse{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
	if m.AvatarRef != nil {
		out.AvatarURL = s.files.AvatarURL(*m.AvatarRef)
	}
	return out
}

func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
