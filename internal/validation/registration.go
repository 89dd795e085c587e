package validation

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/audire/casting-portal/internal/model"
)

// MsgEmailTaken is reported both by the lookup before insert and by the
// unique index on users.email.
const MsgEmailTaken = "an account with this email already exists"

// MsgPhotoNotImage is also reported when a sniffed image fails to decode.
const MsgPhotoNotImage = "the profile photo must be an image"

// RegistrationForm is the posted registration form.
type RegistrationForm struct {
	FirstName       string `form:"firstName" validate:"nonblank"`
	LastName        string `form:"lastName" validate:"nonblank"`
	Email           string `form:"email" validate:"email_addr"`
	Phone           string `form:"phoneNumber" validate:"phone10"`
	Password        string `form:"password" validate:"strong_password"`
	ConfirmPassword string `form:"confirmPassword" validate:"eqfield=Password"`
	Role            string `form:"role" validate:"required,role"`
}

// PerformerForm holds the extra fields a performer must fill in.
type PerformerForm struct {
	Gender      string `form:"gender" validate:"required,gender"`
	Category    string `form:"category" validate:"required,category"`
	Description string `form:"description" validate:"nonblank"`
}

var registrationMessages = map[string]string{
	"FirstName.nonblank":       "first name is required",
	"LastName.nonblank":        "last name is required",
	"Email.email_addr":         "invalid email",
	"Phone.phone10":            "phone number must contain exactly 10 digits",
	"Password.strong_password": "weak password (min 8 characters, upper case, lower case, digit, symbol)",
	"ConfirmPassword.eqfield":  "passwords do not match",
	"Role.required":            "select a role",
	"Role.role":                "invalid role",
	"Gender.required":          "select a gender",
	"Gender.gender":            "invalid gender",
	"Category.required":        "select a category",
	"Category.category":        "invalid category",
	"Description.nonblank":     "enter a description",
}

// Upload is an uploaded multipart file read into memory. ContentType is the
// type the client declared for the part; Truncated is set when the part
// exceeded the configured limit.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	Truncated   bool
}

func (u *Upload) empty() bool { return u == nil || len(u.Data) == 0 }

// Registration is a validated registration.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Role      model.Role

	// Set only for performers.
	Gender      model.Gender
	Category    model.Category
	Description string
	Photo       *Upload
	CV          *Upload
}

// ValidateRegistration runs every check and returns all failures in form
// order. Performer fields are checked only when the role is Performer.
func ValidateRegistration(f RegistrationForm, pf PerformerForm, photo, cv *Upload) (*Registration, Errors, error) {
	errs, err := check(f, registrationMessages)
	if err != nil {
		return nil, nil, err
	}

	role, _ := model.ParseRole(f.Role)
	reg := &Registration{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Phone:     f.Phone,
		Password:  f.Password,
		Role:      role,
	}

	if role == model.RolePerformer {
		perrs, err := check(pf, registrationMessages)
		if err != nil {
			return nil, nil, err
		}
		errs = append(errs, perrs...)
		errs = append(errs, performerFiles(photo, cv)...)

		reg.Gender, _ = model.ParseGender(pf.Gender)
		reg.Category, _ = model.ParseCategory(pf.Category)
		reg.Description = strings.TrimSpace(pf.Description)
		reg.Photo = photo
		reg.CV = cv
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}
	return reg, nil, nil
}

func performerFiles(photo, cv *Upload) Errors {
	var errs Errors
	switch {
	case photo.empty():
		errs = append(errs, "a profile photo is required for performers")
	case photo.Truncated:
		errs = append(errs, "the profile photo is too large")
	case !strings.HasPrefix(mimetype.Detect(photo.Data).String(), "image/"):
		errs = append(errs, MsgPhotoNotImage)
	}

	switch {
	case cv.empty():
		errs = append(errs, "CV is required")
	case cv.Truncated:
		errs = append(errs, "the CV is too large")
	case !IsPDF(cv):
		errs = append(errs, "CV must be a PDF file")
	}
	return errs
}

// IsPDF requires both the declared content type and the sniffed bytes to be
// application/pdf.
func IsPDF(u *Upload) bool {
	if u.empty() {
		return false
	}
	declared := strings.TrimSpace(strings.SplitN(u.ContentType, ";", 2)[0])
	if !strings.EqualFold(declared, "application/pdf") {
		return false
	}
	return mimetype.Detect(u.Data).Is("application/pdf")
}
