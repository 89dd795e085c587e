package validation

import (
	"strings"

	"github.com/audire/casting-portal/internal/model"
)

// ProductionForm creates a production.
type ProductionForm struct {
	Title string `form:"title" json:"title" validate:"nonblank"`
	Type  string `form:"type" json:"type" validate:"required,production_type"`
}

var productionMessages = map[string]string{
	"Title.nonblank":       "title is required",
	"Type.required":        "select a production type",
	"Type.production_type": "invalid production type",
}

func ValidateProduction(f ProductionForm) (string, model.ProductionType, Errors, error) {
	errs, err := check(f, productionMessages)
	if err != nil || len(errs) > 0 {
		return "", model.ProductionTypeNone, errs, err
	}
	t, _ := model.ParseProductionType(f.Type)
	return strings.TrimSpace(f.Title), t, nil, nil
}
