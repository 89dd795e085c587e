package model

import "time"

// Production is a film, series or show owned by a production manager.
// Casting directors work on it through Team membership.
type Production struct {
	Key       Key            `json:"id"`         // productions.id
	Title     string         `json:"title"`      // productions.title
	Type      ProductionType `json:"type"`       // productions.type
	CreatedAt time.Time      `json:"created_at"` // productions.created_at
	ManagerID uint64         `json:"manager_id"` // productions.manager_id
}

// TeamMember links a casting director to a production. The pair is the
// primary key of the `teams` table.
type TeamMember struct {
	DirectorID   uint64 `json:"director_id"`
	ProductionID uint64 `json:"production_id"`
}
