// Package resource formats and parses AIP resource names for gathering records.
//
// Resource names are the stable cross-service references used in notification
// payloads and dedupe keys:
//
//	events/{event}
//	events/{event}/rsvps/{user}
//	events/{event}/waitlist/{user}
//	events/{event}/invites/{invite}
package resource

import (
	"go.einride.tech/aip/resourcename"
)

const (
	eventPattern    = "events/{event}"
	rsvpPattern     = "events/{event}/rsvps/{user}"
	waitlistPattern = "events/{event}/waitlist/{user}"
	invitePattern   = "events/{event}/invites/{invite}"
)

// EventName returns the resource name for an event.
func EventName(eventID string) string {
	return resourcename.Sprint(eventPattern, eventID)
}

// ParseEventName extracts the event id from an event resource name.
func ParseEventName(name string) (eventID string, err error) {
	err = resourcename.Sscan(name, eventPattern, &eventID)
	return eventID, err
}

// RSVPName returns the resource name for a user's RSVP on an event.
func RSVPName(eventID, userID string) string {
	return resourcename.Sprint(rsvpPattern, eventID, userID)
}

// ParseRSVPName extracts event and user ids from an RSVP resource name.
func ParseRSVPName(name string) (eventID, userID string, err error) {
	err = resourcename.Sscan(name, rsvpPattern, &eventID, &userID)
	return eventID, userID, err
}

// WaitlistEntryName returns the resource name for a user's waitlist entry.
func WaitlistEntryName(eventID, userID string) string {
	return resourcename.Sprint(waitlistPattern, eventID, userID)
}

// ParseWaitlistEntryName extracts event and user ids from a waitlist resource name.
func ParseWaitlistEntryName(name string) (eventID, userID string, err error) {
	err = resourcename.Sscan(name, waitlistPattern, &eventID, &userID)
	return eventID, userID, err
}

// InviteName returns the resource name for an event invite.
func InviteName(eventID, inviteID string) string {
	return resourcename.Sprint(invitePattern, eventID, inviteID)
}

// ParseInviteName extracts event and invite ids from an invite resource name.
func ParseInviteName(name string) (eventID, inviteID string, err error) {
	err = resourcename.Sscan(name, invitePattern, &eventID, &inviteID)
	return eventID, inviteID, err
}
