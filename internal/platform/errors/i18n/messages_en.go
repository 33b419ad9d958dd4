package i18n

func init() {
	Register(NewCatalog(BaseLocale, map[Code]string{
		"UNKNOWN": "Something went wrong. Please try again.",

		"EVENT_NOT_FOUND":               "This event does not exist.",
		"EVENT_TITLE_EMPTY":             "An event title is required.",
		"EVENT_START_TIME_MISSING":      "An event start time is required.",
		"EVENT_TIME_ORDER_INVALID":      "Event times are out of order.",
		"EVENT_CAPACITY_INVALID":        "Event capacity must be a positive number.",
		"EVENT_CAPACITY_BELOW_ADMITTED": "Capacity cannot be reduced below the {{.AdmittedCount}} confirmed attendees.",
		"INVALID_STATE_TRANSITION":      "This event cannot move from {{.FromState}} to {{.ToState}}.",

		"RSVP_RESPONSE_INVALID":                "That response is not recognized.",
		"EVENT_AT_CAPACITY":                    "This event is full.",
		"EVENT_AT_CAPACITY_WAITLIST_AVAILABLE": "This event is full, but you can join the waitlist.",
		"RSVP_CLOSED_FOR_EVENT_STATE":          "This event is no longer accepting responses.",

		"ALREADY_ON_WAITLIST":    "You are already on the waitlist.",
		"NOT_ON_WAITLIST":        "You are not on the waitlist.",
		"WAITLIST_DISABLED":      "This event does not have a waitlist.",
		"EVENT_NOT_AT_CAPACITY":  "This event still has open spots. Respond yes instead.",
		"WAITLIST_RSVP_CONFLICT": "You already responded to this event.",

		"INVITE_EMPTY_EVENT_ID": "An event is required for this invite.",
		"INVITE_NOT_FOUND":      "This invite does not exist.",
		"INVITE_INACTIVE":       "This invite is no longer active.",
		"INVITE_GRANT_INVALID":  "This invite link is not valid.",
		"INVITE_GRANT_EXPIRED":  "This invite link has expired.",
		"INVITE_GRANT_MISMATCH": "This invite link belongs to a different event or person.",

		"EVENT_ID_REQUIRED": "An event is required.",
		"USER_ID_REQUIRED":  "A person is required.",

		"NOT_FOUND": "The requested record does not exist.",
		"CONFLICT":  "The requested change conflicts with an existing record.",
	}))
}
