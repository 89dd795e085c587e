package model

// Performer is the role profile of a user registered as Performer. The CV
// blob is only loaded on request (see PerformerRepo.GetCV); a Performer read
// through the usual lookups carries CVMimeType but a nil CV.
type Performer struct {
	Key          Key      `json:"id"`
	UserID       uint64   `json:"user_id"`
	Gender       Gender   `json:"gender"`
	Category     Category `json:"category"`
	Description  string   `json:"description"`
	ProfilePhoto string   `json:"profile_photo"`
	CV           []byte   `json:"-"`
	CVMimeType   string   `json:"cv_mime_type,omitempty"`
}

// HasCV reports whether a CV was uploaded.
func (p Performer) HasCV() bool { return p.CVMimeType != "" || len(p.CV) > 0 }

// CastingDirector is the role profile of a user who publishes castings.
type CastingDirector struct {
	Key    Key    `json:"id"`
	UserID uint64 `json:"user_id"`
}

// ProductionManager is the role profile of a user who owns productions.
type ProductionManager struct {
	Key    Key    `json:"id"`
	UserID uint64 `json:"user_id"`
}
