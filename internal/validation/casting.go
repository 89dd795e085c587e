package validation

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/audire/casting-portal/internal/model"
)

// MinDeadlineLead is how far ahead a new casting's deadline must be.
const MinDeadlineLead = 7 * 24 * time.Hour

// CastingForm is the posted create/edit casting form.
type CastingForm struct {
	Title        string `form:"title" json:"title" validate:"nonblank"`
	Location     string `form:"location" json:"location" validate:"nonblank"`
	Category     string `form:"category" json:"category" validate:"required,category"`
	Description  string `form:"description" json:"description" validate:"nonblank"`
	ProductionID string `form:"productionID" json:"productionID" validate:"required,number"`
	Deadline     string `form:"deadline" json:"deadline" validate:"required,isodate"`
}

var castingMessages = map[string]string{
	"Title.nonblank":        "title is required",
	"Location.nonblank":     "location is required",
	"Category.required":     "select a category",
	"Category.category":     "invalid category",
	"Description.nonblank":  "description is required",
	"ProductionID.required": "select a production",
	"ProductionID.number":   "invalid production",
	"Deadline.required":     "deadline is required",
	"Deadline.isodate":      "invalid date format",
}

const (
	msgDeadlineTooSoon = "the deadline must be at least one week away"
	msgDeadlinePast    = "the new deadline cannot be in the past"
)

// CastingInput is a validated casting form.
type CastingInput struct {
	Title        string
	Location     string
	Category     model.Category
	Description  string
	ProductionID uint64
	Deadline     time.Time
}

// Apply copies the input onto c, leaving identity, owner and publish date
// alone.
func (in CastingInput) Apply(c *model.Casting) {
	c.Title = in.Title
	c.Location = in.Location
	c.Category = in.Category
	c.Description = in.Description
	c.ProductionID = in.ProductionID
	c.Deadline = in.Deadline
}

// ValidateNewCasting checks a create form. The deadline, taken as the end of
// the given day, must not be earlier than now plus MinDeadlineLead.
func ValidateNewCasting(f CastingForm, now time.Time) (CastingInput, Errors, error) {
	return validateCasting(f, now.Add(MinDeadlineLead), msgDeadlineTooSoon)
}

// ValidateCastingUpdate checks an edit form. Unlike creation, an edited
// deadline only has to be in the future.
func ValidateCastingUpdate(f CastingForm, now time.Time) (CastingInput, Errors, error) {
	return validateCasting(f, now, msgDeadlinePast)
}

func validateCasting(f CastingForm, earliest time.Time, lateMsg string) (CastingInput, Errors, error) {
	errs, err := check(f, castingMessages)
	if err != nil {
		return CastingInput{}, nil, err
	}

	in := CastingInput{
		Title:       strings.TrimSpace(f.Title),
		Location:    strings.TrimSpace(f.Location),
		Description: strings.TrimSpace(f.Description),
	}
	in.Category, _ = model.ParseCategory(f.Category)
	in.ProductionID, _ = strconv.ParseUint(f.ProductionID, 10, 64)

	if day, perr := ParseDeadline(f.Deadline, earliest.Location()); perr == nil {
		in.Deadline = day
		if day.Before(earliest) {
			errs = append(errs, lateMsg)
		}
	}
	if f.ProductionID != "" && in.ProductionID == 0 && !slices.Contains(errs, castingMessages["ProductionID.number"]) {
		errs = append(errs, castingMessages["ProductionID.number"])
	}
	return in, errs, nil
}

// ParseDeadline reads a YYYY-MM-DD date in loc and returns the last instant
// of that day.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, err
	}
	return model.EndOfDay(d), nil
}
