package partners

import (
	"context"
	"sync"
	"time"
)

// PresenceReader reports who is marked present for Carrom on a date. Backed
// by the attendance store; wired in main.
type PresenceReader interface {
	ListPresent(ctx context.Context, date string) (map[string]struct{}, error)
}

// PresenceFunc adapts a plain function to PresenceReader.
type PresenceFunc func(ctx context.Context, date string) (map[string]struct{}, error)

func (f PresenceFunc) ListPresent(ctx context.Context, date string) (map[string]struct{}, error) {
	return f(ctx, date)
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Session holds the partner pairs of the admin session, drafts included.
// Committed pairs are loaded from the persistence collaborator the first time
// a date is touched. Every mutation of a date's list runs under that date's
// lock so a cascade and a manual edit cannot interleave.
type Session struct {
	store    Persistence
	presence PresenceReader
	id       IDGen
	clock    Clock

	mu    sync.Mutex
	dates map[string]*dateState
}

type dateState struct {
	mu     sync.Mutex
	loaded bool
	pairs  []*Pair
}

func NewSession(store Persistence, presence PresenceReader) *Session {
	return &Session{
		store:    store,
		presence: presence,
		id:       ulidGen{},
		clock:    realClock{},
		dates:    make(map[string]*dateState),
	}
}

func (s *Session) dateState(date string) *dateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.dates[date]
	if !ok {
		ds = &dateState{}
		s.dates[date] = ds
	}
	return ds
}

// caller must hold ds.mu
func (s *Session) ensureLoaded(ctx context.Context, ds *dateState, date string) error {
	if ds.loaded {
		return nil
	}
	stored, err := s.store.ListPairs(ctx, date)
	if err != nil {
		return NewPersistenceError("failed to load pairs for " + date + ": " + err.Error())
	}
	ds.pairs = make([]*Pair, 0, len(stored))
	for i := range stored {
		p := stored[i]
		ds.pairs = append(ds.pairs, &p)
	}
	ds.loaded = true
	return nil
}

func findPair(ds *dateState, pairID string) (int, *Pair) {
	for i, p := range ds.pairs {
		if p.ID == pairID {
			return i, p
		}
	}
	return -1, nil
}

// CreateDraft appends an empty draft pair to the date's list. The draft id is
// a session-local token; it is replaced when the pair commits.
func (s *Session) CreateDraft(ctx context.Context, date string) (Pair, error) {
	ds := s.dateState(date)
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := s.ensureLoaded(ctx, ds, date); err != nil {
		return Pair{}, err
	}

	token, err := s.id.New()
	if err != nil {
		return Pair{}, err
	}
	p := &Pair{
		ID:        "draft-" + token,
		Date:      date,
		State:     StateDraft,
		CreatedAt: s.clock.Now(),
	}
	ds.pairs = append(ds.pairs, p)
	return p.clone(), nil
}

// SetSlot assigns memberID (or nil to clear) to one slot of a pair. The write
// is atomic from the caller's point of view: on any validation or persistence
// failure the pair is left untouched. Filling the second slot of a draft
// commits it; the returned pair then carries the permanent id.
func (s *Session) SetSlot(ctx context.Context, date, pairID string, slot Slot, memberID *string) (Pair, error) {
	ds := s.dateState(date)
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := s.ensureLoaded(ctx, ds, date); err != nil {
		return Pair{}, err
	}

	i, p := findPair(ds, pairID)
	if p == nil {
		return Pair{}, NewNotFoundError("pair not found: " + pairID)
	}

	if memberID != nil {
		present, err := s.presence.ListPresent(ctx, date)
		if err != nil {
			return Pair{}, NewPersistenceError("failed to check attendance: " + err.Error())
		}
		if _, ok := present[*memberID]; !ok {
			return Pair{}, NewValidationError("member is not marked present for Carrom on " + date)
		}
		for _, other := range ds.pairs {
			if other.ID != pairID && other.references(*memberID) {
				return Pair{}, NewValidationError("member is already assigned to another pair on " + date)
			}
		}
		if otherSlot := p.slot(otherOf(slot)); otherSlot != nil && *otherSlot == *memberID {
			return Pair{}, NewValidationError("member already occupies the other slot of this pair")
		}
	}

	updated := p.clone()
	updated.setSlot(slot, memberID)

	switch p.State {
	case StateDraft:
		if updated.full() {
			committed, err := s.store.PersistPair(ctx, updated)
			if err != nil {
				return Pair{}, NewPersistenceError("failed to persist pair: " + err.Error())
			}
			ds.pairs[i] = &committed
			return committed.clone(), nil
		}
		*p = updated
		return p.clone(), nil

	case StateCommitted:
		if err := s.store.UpdatePair(ctx, p.ID, slot, memberID); err != nil {
			if de, ok := err.(*DomainError); ok {
				return Pair{}, de
			}
			return Pair{}, NewPersistenceError("failed to update pair: " + err.Error())
		}
		*p = updated
		return p.clone(), nil
	}

	return Pair{}, NewValidationError("pair in unknown state")
}

// RemovePair discards a draft or deletes a committed pair. Removing a pair
// that is already gone is a no-op.
func (s *Session) RemovePair(ctx context.Context, date, pairID string) error {
	ds := s.dateState(date)
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := s.ensureLoaded(ctx, ds, date); err != nil {
		return err
	}

	i, p := findPair(ds, pairID)
	if p == nil {
		return nil
	}

	if p.State == StateCommitted {
		if err := s.store.DeletePair(ctx, p.ID); err != nil {
			return NewPersistenceError("failed to delete pair: " + err.Error())
		}
	}
	ds.pairs = append(ds.pairs[:i], ds.pairs[i+1:]...)
	return nil
}

// ClearMemberFromDate nulls the member out of every pair on the date and
// returns the pairs that changed. Committed pairs are updated in place, never
// deleted, even when both slots end up empty; drafts are left as empty drafts.
// When a committed update fails to persist the in-memory slot stays cleared
// and the pair is reported through CascadeError.
func (s *Session) ClearMemberFromDate(ctx context.Context, date, memberID string) ([]Pair, error) {
	ds := s.dateState(date)
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := s.ensureLoaded(ctx, ds, date); err != nil {
		return nil, err
	}

	var changed, failed []Pair
	for _, p := range ds.pairs {
		if !p.references(memberID) {
			continue
		}

		var slots []Slot
		if p.Player1 != nil && *p.Player1 == memberID {
			slots = append(slots, SlotPlayer1)
		}
		if p.Player2 != nil && *p.Player2 == memberID {
			slots = append(slots, SlotPlayer2)
		}

		persistFailed := false
		for _, slot := range slots {
			p.setSlot(slot, nil)
			if p.State == StateCommitted {
				if err := s.store.UpdatePair(ctx, p.ID, slot, nil); err != nil {
					persistFailed = true
				}
			}
		}

		changed = append(changed, p.clone())
		if persistFailed {
			failed = append(failed, p.clone())
		}
	}

	if len(failed) > 0 {
		return changed, &CascadeError{Failed: failed}
	}
	return changed, nil
}

// ListPairs returns the date's pairs, drafts included, in creation order.
func (s *Session) ListPairs(ctx context.Context, date string) ([]Pair, error) {
	ds := s.dateState(date)
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := s.ensureLoaded(ctx, ds, date); err != nil {
		return nil, err
	}

	out := make([]Pair, 0, len(ds.pairs))
	for _, p := range ds.pairs {
		out = append(out, p.clone())
	}
	return out, nil
}

func otherOf(s Slot) Slot {
	if s == SlotPlayer1 {
		return SlotPlayer2
	}
	return SlotPlayer1
}
