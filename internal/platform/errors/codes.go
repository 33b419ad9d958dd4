// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Event errors
	CodeEventNotFound               Code = "EVENT_NOT_FOUND"
	CodeEventTitleEmpty             Code = "EVENT_TITLE_EMPTY"
	CodeEventStartTimeMissing       Code = "EVENT_START_TIME_MISSING"
	CodeEventTimeOrderInvalid       Code = "EVENT_TIME_ORDER_INVALID"
	CodeEventCapacityInvalid        Code = "EVENT_CAPACITY_INVALID"
	CodeEventCapacityBelowAdmitted  Code = "EVENT_CAPACITY_BELOW_ADMITTED"
	CodeEventInvalidStateTransition Code = "INVALID_STATE_TRANSITION"

	// RSVP errors
	CodeRSVPResponseInvalid         Code = "RSVP_RESPONSE_INVALID"
	CodeEventAtCapacity             Code = "EVENT_AT_CAPACITY"
	CodeEventAtCapacityWaitlisted   Code = "EVENT_AT_CAPACITY_WAITLIST_AVAILABLE"
	CodeRSVPClosedForEffectiveState Code = "RSVP_CLOSED_FOR_EVENT_STATE"

	// Waitlist errors
	CodeAlreadyOnWaitlist    Code = "ALREADY_ON_WAITLIST"
	CodeNotOnWaitlist        Code = "NOT_ON_WAITLIST"
	CodeWaitlistDisabled     Code = "WAITLIST_DISABLED"
	CodeEventNotAtCapacity   Code = "EVENT_NOT_AT_CAPACITY"
	CodeWaitlistRSVPConflict Code = "WAITLIST_RSVP_CONFLICT"

	// Invite errors
	CodeInviteEmptyEventID  Code = "INVITE_EMPTY_EVENT_ID"
	CodeInviteNotFound      Code = "INVITE_NOT_FOUND"
	CodeInviteInactive      Code = "INVITE_INACTIVE"
	CodeInviteGrantInvalid  Code = "INVITE_GRANT_INVALID"
	CodeInviteGrantExpired  Code = "INVITE_GRANT_EXPIRED"
	CodeInviteGrantMismatch Code = "INVITE_GRANT_MISMATCH"

	// Input errors
	CodeEventIDRequired Code = "EVENT_ID_REQUIRED"
	CodeUserIDRequired  Code = "USER_ID_REQUIRED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeEventTitleEmpty,
		CodeEventStartTimeMissing,
		CodeEventTimeOrderInvalid,
		CodeEventCapacityInvalid,
		CodeRSVPResponseInvalid,
		CodeInviteEmptyEventID,
		CodeEventIDRequired,
		CodeUserIDRequired:
		return codes.InvalidArgument

	// FailedPrecondition - the current stored state disallows the operation
	case CodeEventInvalidStateTransition,
		CodeEventAtCapacity,
		CodeEventAtCapacityWaitlisted,
		CodeRSVPClosedForEffectiveState,
		CodeWaitlistDisabled,
		CodeEventNotAtCapacity,
		CodeWaitlistRSVPConflict,
		CodeEventCapacityBelowAdmitted,
		CodeInviteInactive,
		CodeInviteGrantExpired:
		return codes.FailedPrecondition

	// AlreadyExists - duplicate writes
	case CodeAlreadyOnWaitlist, CodeConflict:
		return codes.AlreadyExists

	// NotFound - missing records
	case CodeEventNotFound, CodeNotOnWaitlist, CodeInviteNotFound, CodeNotFound:
		return codes.NotFound

	// PermissionDenied - grant verification failures
	case CodeInviteGrantInvalid, CodeInviteGrantMismatch:
		return codes.PermissionDenied

	default:
		return codes.Internal
	}
}
