package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.BrazilianPortuguese

	message.SetString(lang, "notification.generic.title", "Notificação")
	message.SetString(lang, "notification.generic.body", "Você tem uma nova notificação.")
	message.SetString(lang, "notification.event.unknown_title", "um evento")

	message.SetString(lang, "notification.event_cancelled.title", "Evento cancelado")
	message.SetString(lang, "notification.event_cancelled.body", "%s foi cancelado pelo organizador.")

	message.SetString(lang, "notification.event_updated.title", "Detalhes do evento alterados")
	message.SetString(lang, "notification.event_updated.body", "%s mudou: %s. Confirme se você ainda pode participar.")

	message.SetString(lang, "notification.spot_available.title", "Uma vaga abriu")
	message.SetString(lang, "notification.spot_available.body", "Uma vaga abriu para %s. Responda agora para garantir.")
	message.SetString(lang, "notification.spot_available.body_deadline", "Uma vaga abriu para %s. Responda antes de %s para garantir.")

	message.SetString(lang, "notification.field.title", "título")
	message.SetString(lang, "notification.field.description", "descrição")
	message.SetString(lang, "notification.field.location", "local")
	message.SetString(lang, "notification.field.start_time", "horário de início")
	message.SetString(lang, "notification.field.end_time", "horário de término")
	message.SetString(lang, "notification.field.rsvp_deadline", "prazo de RSVP")
	message.SetString(lang, "notification.field.capacity", "capacidade")
	message.SetString(lang, "notification.field.waitlist_enabled", "lista de espera")
	message.SetString(lang, "notification.field.details", "detalhes")
}
