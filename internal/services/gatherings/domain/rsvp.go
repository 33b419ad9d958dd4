package domain

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/gather.space/internal/platform/errors"
)

// Response is a guest's answer to an event.
type Response int

const (
	// ResponseUnspecified represents an invalid response value.
	ResponseUnspecified Response = iota
	// ResponseYes indicates the guest plans to attend.
	ResponseYes
	// ResponseNo indicates the guest declines.
	ResponseNo
	// ResponseMaybe indicates the guest is undecided.
	ResponseMaybe
)

// ErrInvalidResponse indicates an unrecognized RSVP response.
var ErrInvalidResponse = apperrors.New(apperrors.CodeRSVPResponseInvalid, "rsvp response is not recognized")

// RSVP records one guest's response to one event. There is at most one RSVP
// per (event, user) pair.
type RSVP struct {
	EventID  string
	UserID   string
	Response Response
	// NeedsReconfirmation is set when a significant event edit invalidates
	// this response; it clears on the guest's next submission.
	NeedsReconfirmation bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ResponseLabel returns the string label for a response.
func ResponseLabel(response Response) string {
	switch response {
	case ResponseYes:
		return "YES"
	case ResponseNo:
		return "NO"
	case ResponseMaybe:
		return "MAYBE"
	default:
		return "UNSPECIFIED"
	}
}

// ResponseFromLabel converts a response label to a Response value.
func ResponseFromLabel(label string) Response {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "YES":
		return ResponseYes
	case "NO":
		return ResponseNo
	case "MAYBE":
		return ResponseMaybe
	default:
		return ResponseUnspecified
	}
}
