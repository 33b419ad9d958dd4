// Package render produces localized notification copy for gathering topics.
package render

import (
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/text/message"
)

const (
	// TopicEventCancelled is the cancelled-event notification template id.
	TopicEventCancelled = "event.cancelled"
	// TopicEventUpdated is the significant-change notification template id.
	TopicEventUpdated = "event.updated"
	// TopicWaitlistSpotAvailable is the promotion-offer notification template id.
	TopicWaitlistSpotAvailable = "waitlist.spot_available"

	defaultGenericTitle = "Notification"
	defaultGenericBody  = "You have a new notification."
	defaultUnknownEvent = "an event"
)

// Input is one render request for a stored notification artifact.
type Input struct {
	Topic       string
	PayloadJSON string
}

// Output is localized copy derived from one notification artifact.
type Output struct {
	Title    string
	BodyText string
}

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

type cancelledPayload struct {
	EventTitle string `json:"event_title"`
}

type updatedPayload struct {
	EventTitle    string   `json:"event_title"`
	ChangedFields []string `json:"changed_fields"`
}

type spotAvailablePayload struct {
	EventTitle string `json:"event_title"`
	ExpiresAt  string `json:"expires_at"`
}

// Render returns localized copy for one notification artifact.
func Render(loc Localizer, input Input) Output {
	switch normalizeToken(input.Topic) {
	case TopicEventCancelled:
		return renderCancelled(loc, input)
	case TopicEventUpdated:
		return renderUpdated(loc, input)
	case TopicWaitlistSpotAvailable:
		return renderSpotAvailable(loc, input)
	default:
		return genericOutput(loc)
	}
}

func renderCancelled(loc Localizer, input Input) Output {
	payload := cancelledPayload{}
	if raw := strings.TrimSpace(input.PayloadJSON); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return genericOutput(loc)
		}
	}
	eventTitle := payload.EventTitle
	if strings.TrimSpace(eventTitle) == "" {
		eventTitle = localizeWithFallback(loc, "notification.event.unknown_title", defaultUnknownEvent)
	}
	return Output{
		Title:    localizeWithFallback(loc, "notification.event_cancelled.title", "Event cancelled"),
		BodyText: localize(loc, "notification.event_cancelled.body", eventTitle),
	}
}

func renderUpdated(loc Localizer, input Input) Output {
	payload := updatedPayload{}
	if raw := strings.TrimSpace(input.PayloadJSON); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return genericOutput(loc)
		}
	}
	eventTitle := payload.EventTitle
	if strings.TrimSpace(eventTitle) == "" {
		eventTitle = localizeWithFallback(loc, "notification.event.unknown_title", defaultUnknownEvent)
	}
	fields := localizedFieldList(loc, payload.ChangedFields)
	return Output{
		Title:    localizeWithFallback(loc, "notification.event_updated.title", "Event details changed"),
		BodyText: localize(loc, "notification.event_updated.body", eventTitle, fields),
	}
}

func renderSpotAvailable(loc Localizer, input Input) Output {
	payload := spotAvailablePayload{}
	if raw := strings.TrimSpace(input.PayloadJSON); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return genericOutput(loc)
		}
	}
	eventTitle := payload.EventTitle
	if strings.TrimSpace(eventTitle) == "" {
		eventTitle = localizeWithFallback(loc, "notification.event.unknown_title", defaultUnknownEvent)
	}
	title := localizeWithFallback(loc, "notification.spot_available.title", "A spot opened up")
	if expiresAt, err := time.Parse(time.RFC3339, payload.ExpiresAt); err == nil {
		return Output{
			Title:    title,
			BodyText: localize(loc, "notification.spot_available.body_deadline", eventTitle, expiresAt.Format("Jan 2 15:04 MST")),
		}
	}
	return Output{
		Title:    title,
		BodyText: localize(loc, "notification.spot_available.body", eventTitle),
	}
}

func genericOutput(loc Localizer) Output {
	return Output{
		Title:    localizeWithFallback(loc, "notification.generic.title", defaultGenericTitle),
		BodyText: localizeWithFallback(loc, "notification.generic.body", defaultGenericBody),
	}
}

// localizedFieldList maps changed-field identifiers to localized nouns and
// joins them for display.
func localizedFieldList(loc Localizer, fields []string) string {
	keys := map[string]string{
		"title":            "notification.field.title",
		"description":      "notification.field.description",
		"location":         "notification.field.location",
		"start_time":       "notification.field.start_time",
		"end_time":         "notification.field.end_time",
		"rsvp_deadline":    "notification.field.rsvp_deadline",
		"capacity":         "notification.field.capacity",
		"waitlist_enabled": "notification.field.waitlist_enabled",
	}
	localized := make([]string, 0, len(fields))
	for _, field := range fields {
		key, ok := keys[normalizeToken(field)]
		if !ok {
			continue
		}
		localized = append(localized, localizeWithFallback(loc, key, strings.ReplaceAll(field, "_", " ")))
	}
	if len(localized) == 0 {
		return localizeWithFallback(loc, "notification.field.details", "details")
	}
	return strings.Join(localized, ", ")
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

func localizeWithFallback(loc Localizer, key string, fallback string) string {
	value := localize(loc, key)
	if value == "" || value == key {
		return fallback
	}
	return value
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
