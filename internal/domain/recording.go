package domain

import "time"

type Recording struct {
	UserID      string        `json:"user_id"`
	Bucket      string        `json:"bucket"`
	Path        string        `json:"path"`
	ContentType string        `json:"content_type"`
	Size        int64         `json:"size"`
	Duration    time.Duration `json:"duration,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}
