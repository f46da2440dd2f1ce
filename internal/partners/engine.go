package partners

import "context"

// Engine coordinates the cross-store rules: partner slots may only reference
// members marked present for Carrom, and removing attendance clears the
// member from that date's pairs.
type Engine struct {
	session  *Session
	presence PresenceReader
}

func NewEngine(session *Session, presence PresenceReader) *Engine {
	return &Engine{session: session, presence: presence}
}

func (e *Engine) Session() *Session { return e.session }

// ValidateAssignment reports whether memberID may be placed in a pair slot on
// the date, i.e. whether they are marked present for Carrom.
func (e *Engine) ValidateAssignment(ctx context.Context, date, memberID string) (bool, error) {
	present, err := e.presence.ListPresent(ctx, date)
	if err != nil {
		return false, err
	}
	_, ok := present[memberID]
	return ok, nil
}

// OnAttendanceRemoved runs the cascade for a member whose Carrom attendance
// was just deleted. The returned pairs let the caller tell the user exactly
// which assignments were touched. The error, when non-nil, is a CascadeError:
// the clears were applied in memory but some committed pairs failed to
// persist.
func (e *Engine) OnAttendanceRemoved(ctx context.Context, date, memberID string) ([]Pair, error) {
	return e.session.ClearMemberFromDate(ctx, date, memberID)
}
