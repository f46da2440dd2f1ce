package tournament

type SettingsResponse struct {
	ID        string `json:"id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    Status `json:"status"`
}

type UpdateSettingsRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Status    string `json:"status" binding:"required,oneof=upcoming active completed"`
}

type TeamResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Player1ID string  `json:"player1_id"`
	Player2ID string  `json:"player2_id"`
	Group     *string `json:"group,omitempty"`
}

type CreateTeamRequest struct {
	Name      string  `json:"name" binding:"required"`
	Player1ID string  `json:"player1_id" binding:"required"`
	Player2ID string  `json:"player2_id" binding:"required"`
	Group     *string `json:"group,omitempty"`
}

type MatchResponse struct {
	ID         string  `json:"id"`
	Team1ID    string  `json:"team1_id"`
	Team2ID    string  `json:"team2_id"`
	Date       string  `json:"date"`
	Stage      Stage   `json:"stage"`
	Group      *string `json:"group,omitempty"`
	WinnerID   *string `json:"winner_id,omitempty"`
	Team1Score *int    `json:"team1_score,omitempty"`
	Team2Score *int    `json:"team2_score,omitempty"`
}

type CreateMatchRequest struct {
	Team1ID string  `json:"team1_id" binding:"required"`
	Team2ID string  `json:"team2_id" binding:"required"`
	Date    string  `json:"date" binding:"required"`
	Stage   string  `json:"stage" binding:"required,oneof=group super_six semifinal final"`
	Group   *string `json:"group,omitempty"`
}

type RecordResultRequest struct {
	WinnerID   string `json:"winner_id" binding:"required"`
	Team1Score *int   `json:"team1_score" binding:"required"`
	Team2Score *int   `json:"team2_score" binding:"required"`
}

func (t Team) toDTO() TeamResponse {
	return TeamResponse{
		ID:        t.ID,
		Name:      t.Name,
		Player1ID: t.Player1ID,
		Player2ID: t.Player2ID,
		Group:     t.Group,
	}
}

func (m Match) toDTO() MatchResponse {
	return MatchResponse{
		ID:         m.ID,
		Team1ID:    m.Team1ID,
		Team2ID:    m.Team2ID,
		Date:       m.Date,
		Stage:      m.Stage,
		Group:      m.Group,
		WinnerID:   m.WinnerID,
		Team1Score: m.Team1Score,
		Team2Score: m.Team2Score,
	}
}

func (s Settings) toDTO() SettingsResponse {
	return SettingsResponse{
		ID:        s.ID,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Status:    s.Status,
	}
}
