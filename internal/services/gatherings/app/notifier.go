package server

import (
	"context"
	"log"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/gather.space/internal/services/gatherings/domain"
	"github.com/louisbranch/gather.space/internal/services/gatherings/render"
)

// logNotifier renders committed notifications and writes them to the process
// log. It stands in for push channels until one is wired.
type logNotifier struct {
	printer *message.Printer
}

func newLogNotifier() *logNotifier {
	return &logNotifier{printer: message.NewPrinter(language.English)}
}

// Deliver renders the notification and logs it.
func (n *logNotifier) Deliver(_ context.Context, notification domain.Notification) error {
	var loc render.Localizer
	if n != nil && n.printer != nil {
		loc = n.printer
	}
	rendered := render.Render(loc, render.Input{
		Topic:       string(notification.Type),
		PayloadJSON: notification.PayloadJSON,
	})
	log.Printf("notify %s: %s: %s", notification.RecipientUserID, rendered.Title, rendered.BodyText)
	return nil
}
