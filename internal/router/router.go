package router

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	apperrors "webapp/internal/errors"
	"webapp/internal/handler"
	"webapp/internal/logging"
	"webapp/internal/service"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Users  *handler.UserHandler
	Images *handler.ImageHandler
	Health *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, authService service.AuthService, h Handlers, log logging.Logger) {
	e.HideBanner = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(log)

	e.Use(middleware.RequestID())
	e.Use(RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("11M"))

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	basicAuth := BasicAuth(authService)
	for _, g := range []*echo.Group{e.Group(""), e.Group("/v2")} {
		g.GET("/healthz", h.Health.Health)

		g.POST("/users", h.Users.CreateUser)
		g.POST("/users/", h.Users.CreateUser)
		g.GET("/users/verify", h.Users.VerifyUser)

		g.GET("/users/image", h.Images.ListImages, basicAuth)
		g.POST("/users/image", h.Images.UploadImage, basicAuth)
		g.GET("/users/image/:id", h.Images.GetImage, basicAuth)
		g.DELETE("/users/image/:id", h.Images.DeleteImage, basicAuth)
		g.GET("/users/:id", h.Users.GetUser, basicAuth)
		g.PUT("/users/:id", h.Users.UpdateUser, basicAuth)
	}
}

// BasicAuth authenticates the email/password pair and stores the account
// under handler.AccountContextKey.
func BasicAuth(authService service.AuthService) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: "webapp",
		Validator: func(email, password string, c echo.Context) (bool, error) {
			account, err := authService.Authenticate(c.Request().Context(), email, password)
			if err != nil {
				if stderrors.Is(err, apperrors.ErrInvalidCredentials) {
					return false, nil
				}
				httpErr := apperrors.MapErrorToHTTP(err)
				return false, echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
			}
			c.Set(handler.AccountContextKey, account)
			return true, nil
		},
	})
}

// RequestLogger emits one structured line per request.
func RequestLogger(log logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			ctx := c.Request().Context()
			if v.Error != nil && v.Status >= http.StatusInternalServerError {
				log.Error(ctx, "request failed", append(args, "error", v.Error)...)
				return nil
			}
			log.Info(ctx, "request", args...)
			return nil
		},
	})
}

// ErrorHandler renders every error as errors.ErrorResponse.
func ErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !stderrors.As(err, &he) {
			mapped := apperrors.MapErrorToHTTP(err)
			he = echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
		}
		body, ok := he.Message.(apperrors.ErrorResponse)
		if !ok {
			body = apperrors.ErrorResponse{
				Error: fmt.Sprint(he.Message),
				Code:  statusCode(he.Code),
			}
		}
		if he.Code >= http.StatusInternalServerError {
			log.Error(c.Request().Context(), "request error", "error", err, "code", body.Code)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, body)
		}
		if err != nil {
			log.Warn(c.Request().Context(), "write error response", "error", err)
		}
	}
}

// statusCode turns 405 into METHOD_NOT_ALLOWED and so on.
func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// maxPasswordBytes is the longest input bcrypt hashes.
const maxPasswordBytes = 72

// NewValidator returns the request validator with the project's custom tags.
// passwordbytes bounds the UTF-8 byte length, which is what bcrypt limits.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("passwordbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return &CustomValidator{validator: v}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
