package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrAccountNotFound is returned when an account is not found.
	ErrAccountNotFound = errors.New("user not found")
	// ErrImageNotFound is returned when an image is not found.
	ErrImageNotFound = errors.New("image not found")
	// ErrEmailTaken is returned when registering an email that is already in use.
	ErrEmailTaken = errors.New("email already exists")
	// ErrDuplicateImage is returned when the owner already stores identical content.
	ErrDuplicateImage = errors.New("image already uploaded")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountNotVerified is returned when an unverified account authenticates.
	ErrAccountNotVerified = errors.New("account is not verified")
	// ErrForbidden is returned when acting on another account.
	ErrForbidden = errors.New("access to this account is forbidden")
	// ErrNotImageOwner is returned when the image belongs to someone else.
	ErrNotImageOwner = errors.New("image belongs to another user")
	// ErrInvalidToken is returned when a verification token fails signature checks.
	ErrInvalidToken = errors.New("invalid verification token")
	// ErrTokenExpired is returned when a verification token is older than the max age.
	ErrTokenExpired = errors.New("verification token expired")
	// ErrTokenEmailMismatch is returned when the token was issued for another email.
	ErrTokenEmailMismatch = errors.New("verification token does not match user")
	// ErrTokenUsed is returned when a verification token is replayed.
	ErrTokenUsed = errors.New("verification token already used")
	// ErrPasswordTooLong is returned when a password exceeds bcrypt's 72 byte input.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
	// ErrUnsupportedFileType is returned for uploads outside png, jpg and jpeg.
	ErrUnsupportedFileType = errors.New("unsupported file type, allowed: png, jpg, jpeg")
	// ErrEmptyFile is returned when an upload carries no bytes.
	ErrEmptyFile = errors.New("file is empty")
	// ErrStorageUnavailable is returned when the object store call fails.
	ErrStorageUnavailable = errors.New("object storage unavailable")
	// ErrNotificationFailed is returned when the verification message could not be sent.
	ErrNotificationFailed = errors.New("verification message could not be sent")
	// ErrDatabaseUnavailable is returned when the database does not answer.
	ErrDatabaseUnavailable = errors.New("database unavailable")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var mapping = []struct {
	err    error
	status int
	code   string
}{
	{ErrAccountNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrImageNotFound, http.StatusNotFound, "IMAGE_NOT_FOUND"},
	{ErrEmailTaken, http.StatusConflict, "EMAIL_ALREADY_EXISTS"},
	{ErrDuplicateImage, http.StatusConflict, "DUPLICATE_IMAGE"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrNotImageOwner, http.StatusUnauthorized, "NOT_IMAGE_OWNER"},
	{ErrAccountNotVerified, http.StatusForbidden, "ACCOUNT_NOT_VERIFIED"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrInvalidToken, http.StatusBadRequest, "INVALID_TOKEN"},
	{ErrTokenExpired, http.StatusBadRequest, "TOKEN_EXPIRED"},
	{ErrTokenEmailMismatch, http.StatusBadRequest, "TOKEN_USER_MISMATCH"},
	{ErrTokenUsed, http.StatusBadRequest, "TOKEN_ALREADY_USED"},
	{ErrPasswordTooLong, http.StatusBadRequest, "PASSWORD_TOO_LONG"},
	{ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
	{ErrEmptyFile, http.StatusBadRequest, "EMPTY_FILE"},
	{ErrStorageUnavailable, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
	{ErrNotificationFailed, http.StatusServiceUnavailable, "NOTIFICATION_FAILED"},
	{ErrDatabaseUnavailable, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE"},
}

// MapErrorToHTTP maps domain errors, including wrapped ones, to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	for _, m := range mapping {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
