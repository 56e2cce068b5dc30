package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"webapp/internal/errors"
	"webapp/internal/model"
)

// AccountContextKey is where the Basic auth middleware stores the caller.
const AccountContextKey = "account"

// CurrentAccount returns the authenticated account, or nil on public routes.
func CurrentAccount(c echo.Context) *model.Account {
	account, _ := c.Get(AccountContextKey).(*model.Account)
	return account
}

func respondError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message, code string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// bindStrict decodes a JSON body and rejects fields dst does not declare.
func bindStrict(c echo.Context, dst any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
