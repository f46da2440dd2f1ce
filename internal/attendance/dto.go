package attendance

import (
	"time"

	"govindo-backend/internal/partners"
)

const (
	DateLayout       = "2006-01-02"
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

type MarkPresentRequest struct {
	Date     string `json:"date" binding:"required"`
	Section  string `json:"section" binding:"required,oneof=Adda Carrom"`
	MemberID string `json:"member_id" binding:"required"`
}

type RecordResponse struct {
	ID        uint64    `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Section   Section   `json:"section"`
	MemberID  string    `json:"member_id"`
	CreatedAt time.Time `json:"created_at"`
}

// MarkAbsentResponse reports the removal plus whatever the partner cascade
// touched; cascade_warning is set when some cleared slots failed to persist.
type MarkAbsentResponse struct {
	Removed        bool                    `json:"removed"`
	PairsCleared   []partners.PairResponse `json:"pairs_cleared"`
	CascadeWarning string                  `json:"cascade_warning,omitempty"`
}

type ListQuery struct {
	MemberID *string
	Section  *Section
	On       *string
	From     *string
	To       *string
	Limit    int
	Offset   int
}

type StatsRequest struct {
	Section Section
	From    string // YYYY-MM-DD
	To      string // YYYY-MM-DD
	Limit   int
}

type StatsRow struct {
	MemberID string `json:"member_id"`
	Count    int64  `json:"count"`
}
