package models

import "time"

type Session struct {
	User    SessionUser `json:"user"`
	Expires time.Time   `json:"expires"`
}

type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}
