package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUsernameTaken         = errors.New("user with this username already exists")
	ErrEmailTaken            = errors.New("user with this email already exists")
	ErrUsernameAndEmailTaken = errors.New("user with this username and email already exists")
	ErrUserNotFound          = errors.New("user not found")

	ErrNoPendingRegistration = errors.New("no pending registration for this email")
	ErrRegistrationNotFound  = errors.New("registration request not found or has expired")

	ErrLinkInvalid = errors.New("link signature is invalid")
	ErrLinkExpired = errors.New("link has expired")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")

	ErrTokenInvalid      = errors.New("token is invalid")
	ErrTokenRevoked      = errors.New("token has been revoked")
	ErrMissingAuthHeader = errors.New("missing authorization header")

	ErrIncorrectOldPassword = errors.New("incorrect old password")
	ErrPasswordUnchanged    = errors.New("new password must be different")

	ErrListingNotFound = errors.New("listing not found")
)

// RestrictedFieldsError reports a profile edit touching fields that may only
// be changed through their dedicated flows. Fields are kept sorted so the
// message is deterministic.
type RestrictedFieldsError struct {
	Fields []string
}

func (e *RestrictedFieldsError) Error() string {
	return fmt.Sprintf("modification of fields %s is not allowed", strings.Join(e.Fields, ", "))
}

// FieldTypeError reports profile-edit fields whose values have the wrong shape,
// e.g. a scalar where a list is expected.
type FieldTypeError struct {
	Fields []string
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("invalid data types for fields: %s", strings.Join(e.Fields, ", "))
}
