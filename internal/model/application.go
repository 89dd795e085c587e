package model

import "time"

// Application is a performer's submission to a casting. A performer applies
// at most once per casting. CastingTitle is only filled by
// ApplicationRepo.ListByPerformer.
type Application struct {
	Key          Key               `json:"id"`
	SentAt       time.Time         `json:"sent_at"`
	Status       ApplicationStatus `json:"status"`
	Feedback     string            `json:"feedback,omitempty"`
	PerformerID  uint64            `json:"performer_id"`
	CastingID    uint64            `json:"casting_id"`
	CastingTitle string            `json:"casting_title,omitempty"`
}

// RemovedCastingTitle is shown in place of the title of a casting that no
// longer exists.
const RemovedCastingTitle = "Casting rimosso"
