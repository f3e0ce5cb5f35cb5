package dto

import "nextlevel.com/nextlevel/internal/leveling"

type ProgressResponse struct {
	UserID     string            `json:"user_id"`
	Experience int64             `json:"experience"`
	Level      int               `json:"level"`
	Progress   leveling.Progress `json:"progress"`
}

type LevelResponse struct {
	Level int `json:"level"`
}

type ExperienceResponse struct {
	Experience int64 `json:"experience"`
}

// UserWebhookEvent is the subset of the identity provider's user events we
// act on.
type UserWebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type SweepResponse struct {
	Updated    int64 `json:"updated"`
	Candidates int   `json:"candidates"`
}
