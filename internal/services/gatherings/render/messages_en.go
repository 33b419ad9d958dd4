package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "notification.generic.title", defaultGenericTitle)
	message.SetString(lang, "notification.generic.body", defaultGenericBody)
	message.SetString(lang, "notification.event.unknown_title", defaultUnknownEvent)

	message.SetString(lang, "notification.event_cancelled.title", "Event cancelled")
	message.SetString(lang, "notification.event_cancelled.body", "%s has been cancelled by the host.")

	message.SetString(lang, "notification.event_updated.title", "Event details changed")
	message.SetString(lang, "notification.event_updated.body", "%s has changed: %s. Please confirm you can still attend.")

	message.SetString(lang, "notification.spot_available.title", "A spot opened up")
	message.SetString(lang, "notification.spot_available.body", "A spot opened up for %s. RSVP now to claim it.")
	message.SetString(lang, "notification.spot_available.body_deadline", "A spot opened up for %s. RSVP before %s to claim it.")

	message.SetString(lang, "notification.field.title", "title")
	message.SetString(lang, "notification.field.description", "description")
	message.SetString(lang, "notification.field.location", "location")
	message.SetString(lang, "notification.field.start_time", "start time")
	message.SetString(lang, "notification.field.end_time", "end time")
	message.SetString(lang, "notification.field.rsvp_deadline", "RSVP deadline")
	message.SetString(lang, "notification.field.capacity", "capacity")
	message.SetString(lang, "notification.field.waitlist_enabled", "waitlist")
	message.SetString(lang, "notification.field.details", "details")
}
