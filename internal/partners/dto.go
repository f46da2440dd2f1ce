package partners

type PairResponse struct {
	ID      string  `json:"id"`
	Date    string  `json:"date"`
	Player1 *string `json:"player1_id"`
	Player2 *string `json:"player2_id"`
	State   State   `json:"state"`
}

func (p Pair) ToDTO() PairResponse {
	return PairResponse{
		ID:      p.ID,
		Date:    p.Date,
		Player1: p.Player1,
		Player2: p.Player2,
		State:   p.State,
	}
}

func ToDTOs(pairs []Pair) []PairResponse {
	out := make([]PairResponse, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.ToDTO())
	}
	return out
}

type SetSlotRequest struct {
	// null clears the slot
	MemberID *string `json:"member_id"`
}
