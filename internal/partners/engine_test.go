package partners

import (
	"context"
	"testing"
)

func TestValidateAssignment(t *testing.T) {
	sess := NewSession(newFakeStore(), presenceOf("alice"))
	engine := NewEngine(sess, presenceOf("alice"))
	ctx := context.Background()

	ok, err := engine.ValidateAssignment(ctx, testDate, "alice")
	if err != nil || !ok {
		t.Errorf("ValidateAssignment(alice) = %v, %v; want true, nil", ok, err)
	}
	ok, err = engine.ValidateAssignment(ctx, testDate, "bob")
	if err != nil || ok {
		t.Errorf("ValidateAssignment(bob) = %v, %v; want false, nil", ok, err)
	}
}

// A full pass through the workflow: alice and bob pair up, alice's attendance
// is removed, and the pair survives with only bob left in it.
func TestAttendanceRemovalClearsPartner(t *testing.T) {
	store := newFakeStore()
	presence := presenceOf("alice", "bob")
	sess := NewSession(store, presence)
	engine := NewEngine(sess, presence)
	ctx := context.Background()

	draft, err := sess.CreateDraft(ctx, testDate)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.SetSlot(ctx, testDate, draft.ID, SlotPlayer1, str("alice")); err != nil {
		t.Fatal(err)
	}
	committed, err := sess.SetSlot(ctx, testDate, draft.ID, SlotPlayer2, str("bob"))
	if err != nil {
		t.Fatal(err)
	}
	if committed.State != StateCommitted {
		t.Fatalf("state = %q, want committed", committed.State)
	}

	cleared, err := engine.OnAttendanceRemoved(ctx, testDate, "alice")
	if err != nil {
		t.Fatalf("OnAttendanceRemoved: %v", err)
	}
	if len(cleared) != 1 {
		t.Fatalf("cleared = %d, want 1", len(cleared))
	}

	p := cleared[0]
	if p.ID != committed.ID || p.State != StateCommitted {
		t.Errorf("got %q/%q, want the same committed pair", p.ID, p.State)
	}
	if p.Player1 != nil {
		t.Error("player1 should be empty after the cascade")
	}
	if p.Player2 == nil || *p.Player2 != "bob" {
		t.Error("player2 should still be bob")
	}

	// the store row was updated, not deleted
	if store.deleteCalls != 0 {
		t.Errorf("deleteCalls = %d, want 0", store.deleteCalls)
	}
	stored := store.pairs[committed.ID]
	if stored == nil {
		t.Fatal("committed pair vanished from the store")
	}
	if stored.Player1 != nil {
		t.Error("stored player1 should be NULL after the cascade")
	}
}
