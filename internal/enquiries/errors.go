package enquiries

import "errors"

var (
	// ErrNameRequired is returned when the name is missing.
	ErrNameRequired = errors.New("name is required")

	// ErrEmailRequired is returned when the email is missing.
	ErrEmailRequired = errors.New("email is required")

	// ErrMessageRequired is returned when the message is missing.
	ErrMessageRequired = errors.New("message is required")

	// ErrInvalidStatus is returned for a status outside the workflow.
	ErrInvalidStatus = errors.New("status must be new, in_progress or complete")

	// ErrNotFound is returned when no enquiry has the given id.
	ErrNotFound = errors.New("enquiry not found")
)
