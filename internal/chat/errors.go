package chat

import "errors"

var (
	// ErrMessageRequired is returned when a message body is empty.
	ErrMessageRequired = errors.New("Message is required.")

	// ErrVisitorIDRequired is returned when no visitor id accompanies a
	// visitor-scoped request.
	ErrVisitorIDRequired = errors.New("Visitor ID is required.")

	// ErrAutopilotEnabled is returned when an agent tries to send a live
	// reply while autopilot is on.
	ErrAutopilotEnabled = errors.New("Autopilot is enabled. Disable it to send live replies.")
)
