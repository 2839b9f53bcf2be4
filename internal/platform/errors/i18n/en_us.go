package i18n

var enUS = map[string]string{
	"UNKNOWN":        "An unexpected error occurred",
	"NOT_FOUND":      "The requested resource was not found",
	"FORBIDDEN":      "You are not allowed to do that",
	"INVALID_INPUT":  "The request is invalid",
	"STATE_CONFLICT": "The game state does not allow that right now",
	"ALREADY_EXISTS": "That resource already exists",

	"SESSION_NOT_FOUND":   "Game session {{.SessionID}} was not found",
	"CHARACTER_NOT_FOUND": "Character {{.CharacterID}} was not found",
	"TOKEN_NOT_FOUND":     "Token {{.TokenID}} was not found",
	"TARGET_NOT_FOUND":    "Target {{.TargetID}} was not found",
	"MAP_NOT_SET":         "No map has been set for this session",

	"NOT_HOST":      "Only the host can do that",
	"NOT_OWNER":     "You do not control {{.EntityID}}",
	"NOT_YOUR_TURN": "It is not your turn",

	"UNAUTHENTICATED": "Sign in to continue",

	"DICE_INVALID_NOTATION":       "Dice notation {{.Notation}} is invalid",
	"DICE_INVALID_SIDES":          "A die needs at least one side",
	"SESSION_INVALID_QUEST":       "The quest payload is not valid JSON",
	"CHARACTER_EMPTY_NAME":        "Character name cannot be empty",
	"CHARACTER_INVALID_STATS":     "Character stats are invalid: {{.Reason}}",
	"TOKEN_INVALID_KIND":          "Token kind {{.Kind}} is not supported",
	"MAP_INVALID_DIMENSIONS":      "Map dimensions are invalid",
	"POSITION_OUT_OF_BOUNDS":      "Position ({{.X}}, {{.Y}}) is outside the map",
	"SPELL_UNKNOWN":               "Spell {{.Spell}} is not known",
	"SPELL_UNSUPPORTED":           "Spell {{.Spell}} cannot be cast this way",
	"ABILITY_UNKNOWN":             "Ability {{.Ability}} is not known",
	"ACTIVITY_FILTER_INVALID":     "Activity filter is invalid",
	"ACTIVITY_PAGE_TOKEN_INVALID": "Activity page token is invalid",
	"INITIATIVE_NO_COMBATANTS":    "Initiative needs at least one combatant",

	"SESSION_INVALID_STATUS_TRANSITION": "Cannot move the session from {{.From}} to {{.To}}",
	"SESSION_CLOSED":                    "The session has ended",
	"TURN_PAUSED":                       "The turn is paused",
	"NO_ACTIVE_TURN":                    "No turn is active",
	"NOT_IN_INITIATIVE":                 "{{.EntityID}} is not in the initiative order",
	"ALREADY_IN_INITIATIVE":             "{{.EntityID}} is already in the initiative order",
	"TARGET_UNCONSCIOUS":                "{{.TargetID}} is unconscious",
	"ACTOR_UNCONSCIOUS":                 "{{.ActorID}} is unconscious and cannot act",
	"INSUFFICIENT_ACTION_POINTS":        "Not enough action points: need {{.Required}}, have {{.Available}}",
	"INSUFFICIENT_MOVEMENT":             "Not enough movement: path costs {{.Cost}}, {{.Remaining}} remaining",
	"NO_PATH":                           "No path to the destination",
	"TILE_OCCUPIED":                     "That tile is occupied",
	"VERSION_CONFLICT":                  "The session changed while your action was processed, please retry",
}
