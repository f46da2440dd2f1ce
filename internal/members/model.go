package members

import "time"

type Member struct {
	ID        string
	Name      string
	AvatarRef *string
	CreatedAt time.Time
}

type MemberResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateMemberRequest struct {
	Name string `json:"name" binding:"required"`
}

type RenameMemberRequest struct {
	Name string `json:"name" binding:"required"`
}
