package partners

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeStore is an in-memory Persistence used by the session tests.
type fakeStore struct {
	mu    sync.Mutex
	seq   int
	pairs map[string]*Pair

	failPersist bool
	failUpdate  bool
	failDelete  bool

	persistCalls int
	updateCalls  int
	deleteCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{pairs: map[string]*Pair{}}
}

func (f *fakeStore) PersistPair(ctx context.Context, p Pair) (Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.persistCalls++
	if f.failPersist {
		return Pair{}, errors.New("insert failed")
	}
	f.seq++
	out := p.clone()
	out.ID = fmt.Sprintf("pair-%d", f.seq)
	out.State = StateCommitted
	out.CreatedAt = time.Now().UTC()
	f.pairs[out.ID] = &out
	return out.clone(), nil
}

func (f *fakeStore) UpdatePair(ctx context.Context, id string, slot Slot, memberID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.failUpdate {
		return errors.New("update failed")
	}
	p, ok := f.pairs[id]
	if !ok {
		return NewNotFoundError("pair not found: " + id)
	}
	p.setSlot(slot, memberID)
	return nil
}

func (f *fakeStore) DeletePair(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.failDelete {
		return errors.New("delete failed")
	}
	delete(f.pairs, id)
	return nil
}

func (f *fakeStore) ListPairs(ctx context.Context, date string) ([]Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Pair
	for _, p := range f.pairs {
		if p.Date == date {
			out = append(out, p.clone())
		}
	}
	return out, nil
}

func presenceOf(members ...string) PresenceFunc {
	set := map[string]struct{}{}
	for _, m := range members {
		set[m] = struct{}{}
	}
	return func(ctx context.Context, date string) (map[string]struct{}, error) {
		return set, nil
	}
}

func str(s string) *string { return &s }

const testDate = "2024-01-01"

func TestCreateDraftStartsEmpty(t *testing.T) {
	store := newFakeStore()
	sess := NewSession(store, presenceOf())

	p, err := sess.CreateDraft(context.Background(), testDate)
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if p.State != StateDraft {
		t.Errorf("state = %q, want draft", p.State)
	}
	if !strings.HasPrefix(p.ID, "draft-") {
		t.Errorf("id = %q, want draft- prefix", p.ID)
	}
	if p.Player1 != nil || p.Player2 != nil {
		t.Error("new draft should have empty slots")
	}
	if store.persistCalls != 0 {
		t.Errorf("persistCalls = %d, want 0", store.persistCalls)
	}
}

func TestSetSlotKeepsDraftWithOneSlot(t *testing.T) {
	store := newFakeStore()
	sess := NewSession(store, presenceOf("alice"))
	ctx := context.Background()

	draft, _ := sess.CreateDraft(ctx, testDate)
	p, err := sess.SetSlot(ctx, testDate, draft.ID, SlotPlayer1, str("alice"))
	if err != nil {
		t.Fatalf("SetSlot: %v", err)
	}
	if p.State != StateDraft {
		t.Errorf("state = %q, want draft after single fill", p.State)
	}
	if p.ID != draft.ID {
		t.Errorf("id changed to %q on partial fill", p.ID)
	}
	if store.persistCalls != 0 {
		t.Errorf("persistCalls = %d, want 0 before the pair is full", store.persistCalls)
	}
}

func TestSetSlotCommitsOnSecondFill(t *testing.T) {
	store := newFakeStore()
	sess := NewSession(store, presenceOf("alice", "bob"))
	ctx := context.Background()

	draft, _ := sess.CreateDraft(ctx, testDate)
	if _, err := sess.SetSlot(ctx, testDate, draft.ID, SlotPlayer1, str("alice")); err != nil {
		t.Fatalf("fill player1: %v", err)
	}
	p, err := sess.SetSlot(ctx, testDate, draft.ID, SlotPlayer2, str("bob"))
	if err != nil {
		t.Fatalf("fill player2: %v", err)
	}

	if p.State != StateCommitted {
		t.Errorf("state = %q, want committed", p.State)
	}
	if strings.HasPrefix(p.ID, "draft-") {
		t.Errorf("id = %q, want permanent id after commit", p.ID)
	}
	if store.persistCalls != 1 {
		t.Errorf("persistCalls = %d, want exactly 1", store.persistCalls)
	}

	// further edits go through UpdatePair, never a second insert
	if _, err := sess.SetSlot(ctx, testDate, p.ID, SlotPlayer1, nil); err != nil {
		t.Fatalf("clear player1: %v", err)
	}
	if store.persistCalls != 1 {
		t.Errorf("persistCalls = %d after edit, want 1", store.persistCalls)
	}
	if store.updateCalls != 1 {
		t.Errorf("updateCalls = %d after edit, want 1", store.updateCalls)
	}
}

func TestSetSlotValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		present []string
		setup   func(t *testing.T, sess *Session) (pairID string)
		slot    Slot
		member  *string
		code    string
	}{
		{
			name:    "member not present",
			present: []string{"bob"},
			setup: func(t *testing.T, sess *Session) string {
				p, _ := sess.CreateDraft(ctx, testDate)
				return p.ID
			},
			slot:   SlotPlayer1,
			member: str("alice"),
			code:   ErrCodeValidation,
		},
		{
			name:    "member already in another pair",
			present: []string{"alice", "bob"},
			setup: func(t *testing.T, sess *Session) string {
				first, _ := sess.CreateDraft(ctx, testDate)
				if _, err := sess.SetSlot(ctx, testDate, first.ID, SlotPlayer1, str("alice")); err != nil {
					t.Fatal(err)
				}
				second, _ := sess.CreateDraft(ctx, testDate)
				return second.ID
			},
			slot:   SlotPlayer1,
			member: str("alice"),
			code:   ErrCodeValidation,
		},
		{
			name:    "member in both slots of one pair",
			present: []string{"alice"},
			setup: func(t *testing.T, sess *Session) string {
				p, _ := sess.CreateDraft(ctx, testDate)
				if _, err := sess.SetSlot(ctx, testDate, p.ID, SlotPlayer1, str("alice")); err != nil {
					t.Fatal(err)
				}
				return p.ID
			},
			slot:   SlotPlayer2,
			member: str("alice"),
			code:   ErrCodeValidation,
		},
		{
			name:    "unknown pair",
			present: []string{"alice"},
			setup:   func(t *testing.T, sess *Session) string { return "draft-nope" },
			slot:    SlotPlayer1,
			member:  str("alice"),
			code:    ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := NewSession(newFakeStore(), presenceOf(tt.present...))
			pairID := tt.setup(t, sess)

			_, err := sess.SetSlot(ctx, testDate, pairID, tt.slot, tt.member)
			var de *DomainError
			if !errors.As(err, &de) {
				t.Fatalf("err = %v, want DomainError", err)
			}
			if de.Code != tt.code {
				t.Errorf("code = %q, want %q", de.Code, tt.code)
			}
		})
	}
}

func TestSetSlotLeavesPairUntouchedOnFailure(t *testing.T) {
	store := newFakeStore()
	sess := NewSession(store, presenceOf("alice", "bob"))
	ctx := context.Background()

	draft, _ := sess.CreateDraft(ctx, testDate)
	if _, err := sess.SetSlot(ctx, testDate, draft.ID, SlotPlayer1, str("alice")); err != nil {
		t.Fatal(err)
	}

	store.failPersist = true
	if _, err := sess.SetSlot(ctx, testDate, draft.ID, SlotPlayer2, str("bob")); err == nil {
		t.Fatal("expected persistence error")
	}

	pairs, err := sess.ListPairs(ctx, testDate)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 {
		t.Fatalf("pairs = %d, want 1", len(pairs))
	}
	p := pairs[0]
	if p.State != StateDraft {
		t.Errorf("state = %q, want draft after failed commit", p.State)
	}
	if p.Player2 != nil {
		t.Error("player2 should remain empty after failed commit")
	}
	if p.Player1 == nil || *p.Player1 != "alice" {
		t.Error("player1 should still be alice")
	}
}

func TestRemovePair(t *testing.T) {
	store := newFakeStore()
	sess := NewSession(store, presenceOf("alice", "bob"))
	ctx := context.Background()

	draft, _ := sess.CreateDraft(ctx, testDate)
	if err := sess.RemovePair(ctx, testDate, draft.ID); err != nil {
		t.Fatalf("remove draft: %v", err)
	}
	if store.deleteCalls != 0 {
		t.Errorf("deleteCalls = %d for a draft, want 0", store.deleteCalls)
	}

	// removing an id that is already gone is a no-op
	if err := sess.RemovePair(ctx, testDate, draft.ID); err != nil {
		t.Fatalf("second remove: %v", err)
	}

	d2, _ := sess.CreateDraft(ctx, testDate)
	sess.SetSlot(ctx, testDate, d2.ID, SlotPlayer1, str("alice"))
	committed, err := sess.SetSlot(ctx, testDate, d2.ID, SlotPlayer2, str("bob"))
	if err != nil {
		t.Fatal(err)
	}
	if err := sess.RemovePair(ctx, testDate, committed.ID); err != nil {
		t.Fatalf("remove committed: %v", err)
	}
	if store.deleteCalls != 1 {
		t.Errorf("deleteCalls = %d, want 1", store.deleteCalls)
	}
	pairs, _ := sess.ListPairs(ctx, testDate)
	if len(pairs) != 0 {
		t.Errorf("pairs = %d after removal, want 0", len(pairs))
	}
}

func TestClearMemberFromDate(t *testing.T) {
	store := newFakeStore()
	sess := NewSession(store, presenceOf("alice", "bob"))
	ctx := context.Background()

	draft, _ := sess.CreateDraft(ctx, testDate)
	sess.SetSlot(ctx, testDate, draft.ID, SlotPlayer1, str("alice"))
	committed, err := sess.SetSlot(ctx, testDate, draft.ID, SlotPlayer2, str("bob"))
	if err != nil {
		t.Fatal(err)
	}

	changed, err := sess.ClearMemberFromDate(ctx, testDate, "alice")
	if err != nil {
		t.Fatalf("ClearMemberFromDate: %v", err)
	}
	if len(changed) != 1 {
		t.Fatalf("changed = %d, want 1", len(changed))
	}
	got := changed[0]
	if got.ID != committed.ID {
		t.Errorf("id = %q, want %q", got.ID, committed.ID)
	}
	if got.State != StateCommitted {
		t.Errorf("state = %q, the pair must stay committed", got.State)
	}
	if got.Player1 != nil {
		t.Error("player1 should be cleared")
	}
	if got.Player2 == nil || *got.Player2 != "bob" {
		t.Error("player2 should still be bob")
	}

	// clearing both slots must not delete the pair
	if _, err := sess.ClearMemberFromDate(ctx, testDate, "bob"); err != nil {
		t.Fatal(err)
	}
	pairs, _ := sess.ListPairs(ctx, testDate)
	if len(pairs) != 1 {
		t.Fatalf("pairs = %d, want the emptied pair to survive", len(pairs))
	}
	if pairs[0].Player1 != nil || pairs[0].Player2 != nil {
		t.Error("both slots should be empty")
	}
	if store.deleteCalls != 0 {
		t.Errorf("deleteCalls = %d, want 0", store.deleteCalls)
	}

	// a second clear for the same member finds nothing to change
	changed, err = sess.ClearMemberFromDate(ctx, testDate, "alice")
	if err != nil || len(changed) != 0 {
		t.Errorf("repeat clear: changed = %d, err = %v; want 0, nil", len(changed), err)
	}
}

func TestClearMemberReportsPersistFailures(t *testing.T) {
	store := newFakeStore()
	sess := NewSession(store, presenceOf("alice", "bob"))
	ctx := context.Background()

	draft, _ := sess.CreateDraft(ctx, testDate)
	sess.SetSlot(ctx, testDate, draft.ID, SlotPlayer1, str("alice"))
	if _, err := sess.SetSlot(ctx, testDate, draft.ID, SlotPlayer2, str("bob")); err != nil {
		t.Fatal(err)
	}

	store.failUpdate = true
	changed, err := sess.ClearMemberFromDate(ctx, testDate, "alice")

	var ce *CascadeError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want CascadeError", err)
	}
	if len(ce.Failed) != 1 {
		t.Errorf("failed = %d, want 1", len(ce.Failed))
	}
	if len(changed) != 1 {
		t.Fatalf("changed = %d, want 1", len(changed))
	}
	// the in-memory clear stands even though persistence failed
	if changed[0].Player1 != nil {
		t.Error("player1 should be cleared in memory")
	}
	pairs, _ := sess.ListPairs(ctx, testDate)
	if pairs[0].Player1 != nil {
		t.Error("session list should reflect the cleared slot")
	}
}

func TestClearMemberOnDraft(t *testing.T) {
	store := newFakeStore()
	sess := NewSession(store, presenceOf("alice"))
	ctx := context.Background()

	draft, _ := sess.CreateDraft(ctx, testDate)
	if _, err := sess.SetSlot(ctx, testDate, draft.ID, SlotPlayer1, str("alice")); err != nil {
		t.Fatal(err)
	}

	changed, err := sess.ClearMemberFromDate(ctx, testDate, "alice")
	if err != nil {
		t.Fatalf("ClearMemberFromDate: %v", err)
	}
	if len(changed) != 1 || changed[0].State != StateDraft {
		t.Fatalf("changed = %+v, want the draft back", changed)
	}
	if changed[0].Player1 != nil {
		t.Error("draft slot should be cleared")
	}
	if store.updateCalls != 0 {
		t.Errorf("updateCalls = %d for a draft clear, want 0", store.updateCalls)
	}
}

func TestListPairsLoadsCommittedFromStore(t *testing.T) {
	store := newFakeStore()
	store.pairs["pair-9"] = &Pair{
		ID:      "pair-9",
		Date:    testDate,
		Player1: str("alice"),
		Player2: str("bob"),
		State:   StateCommitted,
	}

	sess := NewSession(store, presenceOf("alice", "bob"))
	pairs, err := sess.ListPairs(context.Background(), testDate)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 || pairs[0].ID != "pair-9" {
		t.Fatalf("pairs = %+v, want the stored pair", pairs)
	}
	if pairs[0].State != StateCommitted {
		t.Errorf("state = %q, want committed", pairs[0].State)
	}
}

func TestListPairsReturnsClones(t *testing.T) {
	sess := NewSession(newFakeStore(), presenceOf("alice"))
	ctx := context.Background()

	draft, _ := sess.CreateDraft(ctx, testDate)
	if _, err := sess.SetSlot(ctx, testDate, draft.ID, SlotPlayer1, str("alice")); err != nil {
		t.Fatal(err)
	}

	pairs, _ := sess.ListPairs(ctx, testDate)
	*pairs[0].Player1 = "mallory"

	again, _ := sess.ListPairs(ctx, testDate)
	if *again[0].Player1 != "alice" {
		t.Error("mutating a returned pair must not touch session state")
	}
}
