package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/audire/casting-portal/internal/model"
	"github.com/audire/casting-portal/internal/repository"
	"github.com/audire/casting-portal/internal/storage"
	"github.com/audire/casting-portal/internal/validation"
)

// RegistrationHandler serves the sign-up form.
type RegistrationHandler struct {
	Env
	Accounts      Registrar
	MaxPhotoBytes int64
	MaxCVBytes    int64
}

type registrationReq struct {
	validation.RegistrationForm
	validation.PerformerForm
}

// Form returns the choices the sign-up form offers.
func (h *RegistrationHandler) Form(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"roles":      model.RoleOptions(),
		"genders":    model.GenderOptions(),
		"categories": model.CategoryOptions(),
	})
}

// Register validates the form, collecting every problem, and creates the
// account. Performers post multipart with profilePhoto and cvFile parts.
func (h *RegistrationHandler) Register(c echo.Context) error {
	var req registrationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	photo, err := h.readPart(c, "profilePhoto", h.MaxPhotoBytes)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile photo upload"})
	}
	cv, err := h.readPart(c, "cvFile", h.MaxCVBytes)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid CV upload"})
	}

	reg, errs, err := validation.ValidateRegistration(req.RegistrationForm, req.PerformerForm, photo, cv)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return unprocessable(c, errs)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	user, err := h.Accounts.Register(ctx, reg)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return unprocessable(c, validation.Errors{validation.MsgEmailTaken})
	case errors.Is(err, storage.ErrNotImage):
		return unprocessable(c, validation.Errors{validation.MsgPhotoNotImage})
	case err != nil:
		return h.storageError(c, err, "register")
	}

	return notice(c, http.StatusCreated, LevelSuccess,
		"registration completed, welcome "+user.FirstName, "/login",
		echo.Map{"user": user})
}

// readPart returns nil when the part is absent. Parts larger than limit come
// back truncated with Upload.Truncated set.
func (h *RegistrationHandler) readPart(c echo.Context, name string, limit int64) (*validation.Upload, error) {
	fh, err := c.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return readUpload(fh, limit)
}

func readUpload(fh *multipart.FileHeader, limit int64) (*validation.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	up := &validation.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}
	if int64(len(data)) > limit {
		up.Data = data[:limit]
		up.Truncated = true
	}
	return up, nil
}

func unprocessable(c echo.Context, errs validation.Errors) error {
	return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
}
