package tournament

import "time"

const DateLayout = "2006-01-02"

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusUpcoming, StatusActive, StatusCompleted:
		return Status(s), true
	}
	return "", false
}

type Stage string

const (
	StageGroup    Stage = "group"
	StageSuperSix Stage = "super_six"
	StageSemi     Stage = "semifinal"
	StageFinal    Stage = "final"
)

func ParseStage(s string) (Stage, bool) {
	switch Stage(s) {
	case StageGroup, StageSuperSix, StageSemi, StageFinal:
		return Stage(s), true
	}
	return "", false
}

// Settings is a singleton row; created with defaults when missing.
type Settings struct {
	ID        string
	StartDate string
	EndDate   string
	Status    Status
}

type Team struct {
	ID        string
	Name      string
	Player1ID string
	Player2ID string
	Group     *string
	CreatedAt time.Time
}

// Match scores and winner stay null until the result is entered.
type Match struct {
	ID         string
	Team1ID    string
	Team2ID    string
	Date       string
	Stage      Stage
	Group      *string
	WinnerID   *string
	Team1Score *int
	Team2Score *int
	CreatedAt  time.Time
}
