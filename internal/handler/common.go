package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/apperr"
	"github.com/iliyamo/event-ticketing/internal/logger"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get(middleware.CtxUserID).(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

func getRole(c echo.Context) string {
	role, _ := c.Get(middleware.CtxRole).(string)
	return role
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validationf("invalid %s", name)
	}
	return id, nil
}

// repoError translates repository sentinels into AppErrors.  Anything else is
// returned unchanged and ends up as an opaque internal error.
func repoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrVenueNotFound):
		return apperr.NotFound("venue not found")
	case errors.Is(err, repository.ErrEventNotFound):
		return apperr.NotFound("event not found")
	case errors.Is(err, repository.ErrAreaNotFound):
		return apperr.NotFound("area not found")
	case errors.Is(err, repository.ErrSeatNotFound):
		return apperr.NotFound("seat not found")
	case errors.Is(err, repository.ErrTicketNotFound):
		return apperr.NotFound("ticket not found")
	case errors.Is(err, repository.ErrConflict):
		return apperr.Conflict("resource is still referenced")
	}
	return err
}

// respondError renders err as {"error", "code"}.  Server-side failures are
// logged with their cause and answered with a generic message.
func respondError(c echo.Context, err error) error {
	ae := apperr.From(repoError(err))
	if ae.HTTPStatus >= http.StatusInternalServerError {
		entry := logger.FromContext(c.Request().Context()).WithField("code", ae.Code)
		if len(ae.Fields) > 0 {
			entry = entry.WithFields(ae.Fields)
		}
		entry.WithError(err).Error("request failed")
	}
	return c.JSON(ae.HTTPStatus, echo.Map{"error": ae.Public(), "code": ae.Code})
}

// HTTPErrorHandler renders errors that escape handlers, including echo's own
// 404/405 errors, in the same shape as respondError.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := apperr.CodeInternal
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			code = apperr.CodeNotFound
		case http.StatusUnauthorized:
			code = apperr.CodeUnauthorized
		case http.StatusForbidden:
			code = apperr.CodeForbidden
		case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
			code = apperr.CodeValidation
		}
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && he.Code < http.StatusInternalServerError {
			msg = m
		}
		_ = c.JSON(he.Code, echo.Map{"error": msg, "code": code})
		return
	}
	_ = respondError(c, err)
}

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperr.Validationf("%s failed on '%s'", fe.Field(), fe.Tag())
		}
		return apperr.Validation(err.Error())
	}
	return nil
}

// bindAndValidate binds a JSON body and runs the registered validator.
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(dst)
}

// canManage reports whether the caller may modify an event.  Admins manage
// every event, organizers only their own.
func canManage(c echo.Context, ev *model.Event) bool {
	switch getRole(c) {
	case model.RoleAdmin:
		return true
	case model.RoleOrganizer:
		uid, err := getUserID(c)
		return err == nil && uid == ev.OrganizerID
	}
	return false
}
