package i18n

var esES = map[string]string{
	"UNKNOWN":        "Se produjo un error inesperado",
	"NOT_FOUND":      "No se encontró el recurso solicitado",
	"FORBIDDEN":      "No tienes permiso para hacer eso",
	"INVALID_INPUT":  "La solicitud no es válida",
	"STATE_CONFLICT": "El estado de la partida no lo permite ahora",

	"SESSION_NOT_FOUND": "No se encontró la sesión {{.SessionID}}",
	"NOT_HOST":          "Solo el anfitrión puede hacer eso",
	"NOT_YOUR_TURN":     "No es tu turno",
	"TURN_PAUSED":       "El turno está en pausa",
	"UNAUTHENTICATED":   "Inicia sesión para continuar",
	"NO_PATH":           "No hay camino hasta el destino",

	"INSUFFICIENT_ACTION_POINTS": "Puntos de acción insuficientes: necesitas {{.Required}}, tienes {{.Available}}",
	"TARGET_UNCONSCIOUS":         "{{.TargetID}} está inconsciente",
}
