package partners

import "time"

const DateLayout = "2006-01-02"

// State is the pair lifecycle tag. Draft pairs exist only in session memory;
// committed pairs are backed by a row in partner_assignments.
type State string

const (
	StateDraft     State = "draft"
	StateCommitted State = "committed"
)

// Slot names match the partner_assignments columns.
type Slot string

const (
	SlotPlayer1 Slot = "player1"
	SlotPlayer2 Slot = "player2"
)

func ParseSlot(s string) (Slot, bool) {
	switch Slot(s) {
	case SlotPlayer1, SlotPlayer2:
		return Slot(s), true
	}
	return "", false
}

// Pair is one partner assignment for a date. A draft carries a session-local
// id; committing replaces it with the permanent store id.
type Pair struct {
	ID        string
	Date      string // YYYY-MM-DD
	Player1   *string
	Player2   *string
	State     State
	CreatedAt time.Time
}

func (p Pair) slot(s Slot) *string {
	if s == SlotPlayer1 {
		return p.Player1
	}
	return p.Player2
}

func (p *Pair) setSlot(s Slot, memberID *string) {
	if s == SlotPlayer1 {
		p.Player1 = memberID
	} else {
		p.Player2 = memberID
	}
}

func (p Pair) full() bool {
	return p.Player1 != nil && p.Player2 != nil
}

func (p Pair) references(memberID string) bool {
	if p.Player1 != nil && *p.Player1 == memberID {
		return true
	}
	if p.Player2 != nil && *p.Player2 == memberID {
		return true
	}
	return false
}

// clone returns a copy safe to hand out; slot pointers are duplicated so
// callers cannot mutate session state.
func (p Pair) clone() Pair {
	out := p
	if p.Player1 != nil {
		v := *p.Player1
		out.Player1 = &v
	}
	if p.Player2 != nil {
		v := *p.Player2
		out.Player2 = &v
	}
	return out
}
