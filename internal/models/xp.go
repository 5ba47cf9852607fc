package models

import "github.com/google/uuid"

// WeeklyXP is one row of the weekly ranking.
type WeeklyXP struct {
	Rank      int       `json:"rank"`
	UserID    uuid.UUID `json:"user_id"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	XP        int64     `json:"xp"`
}

// XPEvent awards experience for a single reason; (user, reason, game, slate) is unique.
type XPEvent struct {
	UserID    uuid.UUID
	Amount    int64
	Reason    string
	GameID    string
	SlateDate string
}
