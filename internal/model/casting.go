package model

import "time"

// Casting is a call for performers published by a casting director for one
// production. ProductionTitle is filled by joined reads and ignored on save.
type Casting struct {
	Key             Key       `json:"id"`
	Title           string    `json:"title"`
	Location        string    `json:"location"`
	Category        Category  `json:"category"`
	Description     string    `json:"description"`
	PublishedAt     time.Time `json:"published_at"`
	Deadline        time.Time `json:"deadline"`
	DirectorID      uint64    `json:"director_id"`
	ProductionID    uint64    `json:"production_id"`
	ProductionTitle string    `json:"production_title,omitempty"`
}

// Open reports whether applications are still accepted at t. The deadline
// day itself is included.
func (c Casting) Open(t time.Time) bool {
	return !t.After(c.Deadline)
}

// EndOfDay returns the last microsecond of t's calendar day in t's
// location. DATETIME(6) keeps microseconds and rounds anything finer, so a
// nanosecond-precise value would be stored as midnight of the next day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Microsecond), t.Location())
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
