package model

import (
	"encoding/json"
	"fmt"
)

// enumEntry pairs the identifier-safe name of an enum member, as submitted by
// forms, with the display label persisted in the database. Labels may contain
// characters such as '/' or ' ' that cannot appear in an identifier.
type enumEntry struct {
	name  string
	label string
}

// Each table is indexed by member value; index 0 is the "none" member. The
// blank array declarations below fail to compile when a table and its member
// count drift apart.

func byName[T ~uint8](table []enumEntry, name string) (T, bool) {
	for i := 1; i < len(table); i++ {
		if table[i].name == name {
			return T(i), true
		}
	}
	return 0, false
}

func byLabel[T ~uint8](table []enumEntry, label string) (T, bool) {
	for i := 1; i < len(table); i++ {
		if table[i].label == label {
			return T(i), true
		}
	}
	return byName[T](table, label)
}

func entry(table []enumEntry, i uint8) enumEntry {
	if int(i) >= len(table) {
		return enumEntry{}
	}
	return table[i]
}

// decodeEnum reads a JSON string holding either the label or the name of a
// member. An empty string or null is the none member.
func decodeEnum[T ~uint8](table []enumEntry, kind string, data []byte) (T, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, fmt.Errorf("%s: %w", kind, err)
	}
	if s == "" {
		return 0, nil
	}
	v, ok := byLabel[T](table, s)
	if !ok {
		return 0, fmt.Errorf("unknown %s %q", kind, s)
	}
	return v, nil
}

// Option is a selectable enum value rendered by forms.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func options(table []enumEntry) []Option {
	out := make([]Option, 0, len(table)-1)
	for _, e := range table[1:] {
		out = append(out, Option{Value: e.name, Label: e.label})
	}
	return out
}

// ----- Role -----

type Role uint8

const (
	RoleNone Role = iota
	RolePerformer
	RoleCastingDirector
	RoleProductionManager
	roleCount
)

var roleTable = [...]enumEntry{
	RoleNone:              {},
	RolePerformer:         {"Performer", "Performer"},
	RoleCastingDirector:   {"CastingDirector", "CastingDirector"},
	RoleProductionManager: {"ProductionManager", "ProductionManager"},
}

var _ = [1]struct{}{}[len(roleTable)-int(roleCount)]

// ParseRole resolves a role by name.
func ParseRole(s string) (Role, bool) { return byName[Role](roleTable[:], s) }

// RoleFromLabel decodes a stored role; unknown values give RoleNone.
func RoleFromLabel(s string) Role {
	r, _ := byLabel[Role](roleTable[:], s)
	return r
}

// RoleOptions lists the roles a visitor can register as.
func RoleOptions() []Option { return options(roleTable[:]) }

func (r Role) Name() string   { return entry(roleTable[:], uint8(r)).name }
func (r Role) Label() string  { return entry(roleTable[:], uint8(r)).label }
func (r Role) String() string { return r.Name() }

func (r Role) MarshalJSON() ([]byte, error) { return json.Marshal(r.Name()) }

func (r *Role) UnmarshalJSON(data []byte) (err error) {
	*r, err = decodeEnum[Role](roleTable[:], "role", data)
	return err
}

// ----- Gender -----

type Gender uint8

const (
	GenderNone Gender = iota
	GenderMale
	GenderFemale
	GenderOther
	genderCount
)

var genderTable = [...]enumEntry{
	GenderNone:   {},
	GenderMale:   {"M", "M"},
	GenderFemale: {"F", "F"},
	GenderOther:  {"Altro", "Altro"},
}

var _ = [1]struct{}{}[len(genderTable)-int(genderCount)]

func ParseGender(s string) (Gender, bool) { return byName[Gender](genderTable[:], s) }

func GenderFromLabel(s string) Gender {
	g, _ := byLabel[Gender](genderTable[:], s)
	return g
}

func GenderOptions() []Option { return options(genderTable[:]) }

func (g Gender) Name() string   { return entry(genderTable[:], uint8(g)).name }
func (g Gender) Label() string  { return entry(genderTable[:], uint8(g)).label }
func (g Gender) String() string { return g.Label() }

func (g Gender) MarshalJSON() ([]byte, error) { return json.Marshal(g.Label()) }

func (g *Gender) UnmarshalJSON(data []byte) (err error) {
	*g, err = decodeEnum[Gender](genderTable[:], "gender", data)
	return err
}

// ----- Category -----

// Category is the artistic category of a performer and of a casting call.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryAttoreAttrice
	CategoryDoppiatoreTrice
	CategoryBallerinoA
	CategoryCantante
	CategoryComparsa
	CategoryModelloA
	categoryCount
)

var categoryTable = [...]enumEntry{
	CategoryNone:            {},
	CategoryAttoreAttrice:   {"Attore_Attrice", "Attore/Attrice"},
	CategoryDoppiatoreTrice: {"Doppiatore_trice", "Doppiatore/trice"},
	CategoryBallerinoA:      {"Ballerino_a", "Ballerino/a"},
	CategoryCantante:        {"Cantante", "Cantante"},
	CategoryComparsa:        {"Comparsa", "Comparsa"},
	CategoryModelloA:        {"Modello_a", "Modello/a"},
}

var _ = [1]struct{}{}[len(categoryTable)-int(categoryCount)]

// ParseCategory resolves a category by its identifier name (Attore_Attrice).
func ParseCategory(s string) (Category, bool) { return byName[Category](categoryTable[:], s) }

// CategoryFromLabel decodes a stored label (Attore/Attrice). Unknown labels
// give CategoryNone instead of an error.
func CategoryFromLabel(s string) Category {
	c, _ := byLabel[Category](categoryTable[:], s)
	return c
}

func CategoryOptions() []Option { return options(categoryTable[:]) }

func (c Category) Name() string   { return entry(categoryTable[:], uint8(c)).name }
func (c Category) Label() string  { return entry(categoryTable[:], uint8(c)).label }
func (c Category) String() string { return c.Label() }

func (c Category) MarshalJSON() ([]byte, error) { return json.Marshal(c.Label()) }

func (c *Category) UnmarshalJSON(data []byte) (err error) {
	*c, err = decodeEnum[Category](categoryTable[:], "category", data)
	return err
}

// ----- ProductionType -----

type ProductionType uint8

const (
	ProductionTypeNone ProductionType = iota
	ProductionTypeFilm
	ProductionTypeSerieTV
	ProductionTypeWebSeries
	ProductionTypeTeatro
	ProductionTypeSpot
	ProductionTypeCortometraggio
	productionTypeCount
)

var productionTypeTable = [...]enumEntry{
	ProductionTypeNone:           {},
	ProductionTypeFilm:           {"Film", "Film"},
	ProductionTypeSerieTV:        {"Serie_TV", "Serie TV"},
	ProductionTypeWebSeries:      {"Web_Series", "Web Series"},
	ProductionTypeTeatro:         {"Teatro", "Teatro"},
	ProductionTypeSpot:           {"Spot", "Spot"},
	ProductionTypeCortometraggio: {"Cortometraggio", "Cortometraggio"},
}

var _ = [1]struct{}{}[len(productionTypeTable)-int(productionTypeCount)]

func ParseProductionType(s string) (ProductionType, bool) {
	return byName[ProductionType](productionTypeTable[:], s)
}

func ProductionTypeFromLabel(s string) ProductionType {
	t, _ := byLabel[ProductionType](productionTypeTable[:], s)
	return t
}

func ProductionTypeOptions() []Option { return options(productionTypeTable[:]) }

func (t ProductionType) Name() string   { return entry(productionTypeTable[:], uint8(t)).name }
func (t ProductionType) Label() string  { return entry(productionTypeTable[:], uint8(t)).label }
func (t ProductionType) String() string { return t.Label() }

func (t ProductionType) MarshalJSON() ([]byte, error) { return json.Marshal(t.Label()) }

func (t *ProductionType) UnmarshalJSON(data []byte) (err error) {
	*t, err = decodeEnum[ProductionType](productionTypeTable[:], "production type", data)
	return err
}

// ----- ApplicationStatus -----

type ApplicationStatus uint8

const (
	StatusNone ApplicationStatus = iota
	StatusPending
	StatusShortlist
	StatusSelected
	StatusRejected
	statusCount
)

var statusTable = [...]enumEntry{
	StatusNone:      {},
	StatusPending:   {"In_attesa", "In attesa"},
	StatusShortlist: {"Shortlist", "Shortlist"},
	StatusSelected:  {"Selezionata", "Selezionata"},
	StatusRejected:  {"Rifiutata", "Rifiutata"},
}

var _ = [1]struct{}{}[len(statusTable)-int(statusCount)]

// StatusFromLabel decodes a stored status. Unknown values read as
// StatusPending, the state every application starts in.
func StatusFromLabel(s string) ApplicationStatus {
	if st, ok := byLabel[ApplicationStatus](statusTable[:], s); ok {
		return st
	}
	return StatusPending
}

func (s ApplicationStatus) Name() string   { return entry(statusTable[:], uint8(s)).name }
func (s ApplicationStatus) Label() string  { return entry(statusTable[:], uint8(s)).label }
func (s ApplicationStatus) String() string { return s.Label() }

func (s ApplicationStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.Label()) }

func (s *ApplicationStatus) UnmarshalJSON(data []byte) (err error) {
	*s, err = decodeEnum[ApplicationStatus](statusTable[:], "application status", data)
	return err
}
