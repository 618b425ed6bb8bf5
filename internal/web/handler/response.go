package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rollcall-rfid/rollcall/internal/errs"
)

// ErrorResponse is the JSON body of every failed API request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Status maps the error kind of err to an HTTP status code.
func Status(err error) int {
	switch errs.Kind(err) {
	case errs.ErrNotFound:
		return fiber.StatusNotFound
	case errs.ErrConflict:
		return fiber.StatusConflict
	case errs.ErrInvalidState:
		return fiber.StatusUnprocessableEntity
	case errs.ErrValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// SendError writes err as an ErrorResponse. Errors without a domain kind are
// logged and reported without their message.
func SendError(c *fiber.Ctx, err error) error {
	status := Status(err)
	body := ErrorResponse{Error: err.Error(), Kind: errs.Name(err)}

	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")

		body.Error = "internal server error"
	}

	return c.Status(status).JSON(body)
}

// ErrorHandler is the fiber.ErrorHandler of the API. fiber errors such as
// unknown routes keep their status code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok { //nolint:errorlint
		kind := "internal"

		switch fe.Code {
		case fiber.StatusNotFound:
			kind = errs.Name(errs.ErrNotFound)
		case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed:
			kind = errs.Name(errs.ErrValidation)
		}

		return c.Status(fe.Code).JSON(ErrorResponse{Error: fe.Message, Kind: kind})
	}

	return SendError(c, err)
}

// ParseBody decodes the JSON request body into out.
func ParseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errs.New(errs.ErrValidation, "invalid request body: "+err.Error())
	}

	return nil
}

// ParamID parses the positive integer route parameter name.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	return parseID(name, c.Params(name))
}

// QueryID parses the optional positive integer query parameter name.
func QueryID(c *fiber.Ctx, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil //nolint:nilnil
	}

	id, err := parseID(name, raw)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

func parseID(name, raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Newf(errs.ErrValidation, "%s must be a positive integer", name)
	}

	return uint(id), nil
}
