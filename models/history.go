package models

import "time"

type HistoryItem struct {
	ID        string    `json:"id" yaml:"id"`
	FileName  string    `json:"fileName" yaml:"fileName"`
	Summary   string    `json:"summary" yaml:"summary"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}
