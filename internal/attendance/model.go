package attendance

import "time"

type Section string

const (
	SectionAdda   Section = "Adda"
	SectionCarrom Section = "Carrom"
)

func ParseSection(s string) (Section, bool) {
	switch Section(s) {
	case SectionAdda, SectionCarrom:
		return Section(s), true
	}
	return "", false
}

// DB row (scan target)
type recordRow struct {
	ID        uint64
	Date      string // DATE formatted "YYYY-MM-DD"
	Section   string
	MemberID  string
	CreatedAt time.Time
}

type Record struct {
	ID        uint64
	Date      string
	Section   Section
	MemberID  string
	CreatedAt time.Time
}

func (r recordRow) toModel() Record {
	return Record{
		ID:        r.ID,
		Date:      r.Date,
		Section:   Section(r.Section),
		MemberID:  r.MemberID,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func (r Record) toDTO() RecordResponse {
	return RecordResponse{
		ID:        r.ID,
		Date:      r.Date,
		Section:   r.Section,
		MemberID:  r.MemberID,
		CreatedAt: r.CreatedAt,
	}
}
