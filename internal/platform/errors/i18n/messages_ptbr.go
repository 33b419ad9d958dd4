package i18n

func init() {
	Register(NewCatalog("pt-BR", map[Code]string{
		"UNKNOWN": "Algo deu errado. Tente novamente.",

		"EVENT_NOT_FOUND":               "Este evento não existe.",
		"EVENT_TITLE_EMPTY":             "O título do evento é obrigatório.",
		"EVENT_START_TIME_MISSING":      "O horário de início do evento é obrigatório.",
		"EVENT_TIME_ORDER_INVALID":      "Os horários do evento estão fora de ordem.",
		"EVENT_CAPACITY_INVALID":        "A capacidade do evento deve ser um número positivo.",
		"EVENT_CAPACITY_BELOW_ADMITTED": "A capacidade não pode ficar abaixo dos {{.AdmittedCount}} participantes confirmados.",
		"INVALID_STATE_TRANSITION":      "Este evento não pode mudar de {{.FromState}} para {{.ToState}}.",

		"RSVP_RESPONSE_INVALID":                "Esta resposta não é reconhecida.",
		"EVENT_AT_CAPACITY":                    "Este evento está lotado.",
		"EVENT_AT_CAPACITY_WAITLIST_AVAILABLE": "Este evento está lotado, mas você pode entrar na lista de espera.",
		"RSVP_CLOSED_FOR_EVENT_STATE":          "Este evento não aceita mais respostas.",

		"ALREADY_ON_WAITLIST":    "Você já está na lista de espera.",
		"NOT_ON_WAITLIST":        "Você não está na lista de espera.",
		"WAITLIST_DISABLED":      "Este evento não tem lista de espera.",
		"EVENT_NOT_AT_CAPACITY":  "Este evento ainda tem vagas. Responda sim.",
		"WAITLIST_RSVP_CONFLICT": "Você já respondeu a este evento.",

		"INVITE_EMPTY_EVENT_ID": "Um evento é obrigatório para este convite.",
		"INVITE_NOT_FOUND":      "Este convite não existe.",
		"INVITE_INACTIVE":       "Este convite não está mais ativo.",
		"INVITE_GRANT_INVALID":  "Este link de convite não é válido.",
		"INVITE_GRANT_EXPIRED":  "Este link de convite expirou.",
		"INVITE_GRANT_MISMATCH": "Este link de convite pertence a outro evento ou pessoa.",

		"EVENT_ID_REQUIRED": "Um evento é obrigatório.",
		"USER_ID_REQUIRED":  "Uma pessoa é obrigatória.",

		"NOT_FOUND": "O registro solicitado não existe.",
		"CONFLICT":  "A alteração solicitada conflita com um registro existente.",
	}))
}
