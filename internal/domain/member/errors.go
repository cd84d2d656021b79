package member

import "errors"

var (
	ErrMemberNotFound   = errors.New("member not found")
	ErrEmailTaken       = errors.New("a user with this email already exists")
	ErrInvalidEmail     = errors.New("invalid or missing email address")
	ErrInvalidID        = errors.New("invalid member id")
	ErrLookupRequired   = errors.New("invalid or missing user id and email")
	ErrInvalidRole      = errors.New("invalid role")
	ErrMissingUID       = errors.New("user uid not found in database")
	ErrMissingEmail     = errors.New("user email not found in database")
	ErrNotDeleted       = errors.New("failed to delete user from store")
	ErrIdentityFailure  = errors.New("identity provider failure")
	ErrInvalidQuery     = errors.New("invalid query")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

// EmailTakenError carries the record that already owns the email.
type EmailTakenError struct {
	Existing *Member
}

func (e *EmailTakenError) Error() string {
	return ErrEmailTaken.Error()
}

func (e *EmailTakenError) Is(target error) bool {
	return target == ErrEmailTaken
}
