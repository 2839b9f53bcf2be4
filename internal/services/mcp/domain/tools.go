package domain

import (
	"context"
	"fmt"

	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/game"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/combat"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/turn"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// gameTool forwards input to method and converts the decoded reply.
func gameTool[In, Reply, Out any](client GameClient, method string, convert func(Reply) (Out, error)) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error) {
		var zero Out
		runCtx, cancel := context.WithTimeout(ctx, grpcCallTimeout)
		defer cancel()

		callCtx, meta, err := NewCallContext(runCtx)
		if err != nil {
			return nil, zero, fmt.Errorf("create request metadata: %w", err)
		}
		var reply Reply
		if err := client.Call(callCtx, method, input, &reply); err != nil {
			return nil, zero, fmt.Errorf("%s failed: %w", method, err)
		}
		out, err := convert(reply)
		if err != nil {
			return nil, zero, err
		}
		return CallToolResultWithMetadata(meta), out, nil
	}
}

// SessionStateInput represents the MCP tool input for reading a session.
type SessionStateInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// TokenSummary describes one token on the map.
type TokenSummary struct {
	ID          string `json:"id" jsonschema:"token identifier"`
	Name        string `json:"name" jsonschema:"display name"`
	Kind        string `json:"kind" jsonschema:"player, npc or object"`
	CharacterID string `json:"character_id,omitempty" jsonschema:"character the token represents"`
	X           int    `json:"x" jsonschema:"column"`
	Y           int    `json:"y" jsonschema:"row"`
	Health      int    `json:"health" jsonschema:"current health"`
	MaxHealth   int    `json:"max_health" jsonschema:"maximum health"`
}

// CharacterSummary describes one player character.
type CharacterSummary struct {
	ID           string `json:"id" jsonschema:"character identifier"`
	OwnerID      string `json:"owner_id" jsonschema:"owning user"`
	Name         string `json:"name" jsonschema:"character name"`
	Level        int    `json:"level" jsonschema:"character level"`
	Health       int    `json:"health" jsonschema:"current health"`
	MaxHealth    int    `json:"max_health" jsonschema:"maximum health"`
	ActionPoints int    `json:"action_points" jsonschema:"remaining action points"`
}

// TurnSummary describes the active or paused turn.
type TurnSummary struct {
	EntityID        string  `json:"entity_id" jsonschema:"acting entity"`
	Type            string  `json:"type" jsonschema:"player or npc"`
	TurnNumber      int     `json:"turn_number" jsonschema:"turn counter"`
	Speed           float64 `json:"speed" jsonschema:"movement allowance in tiles"`
	MovementUsed    float64 `json:"movement_used" jsonschema:"movement spent this turn"`
	MajorActionUsed bool    `json:"major_action_used" jsonschema:"major action spent"`
	MinorActionUsed bool    `json:"minor_action_used" jsonschema:"minor action spent"`
	Paused          bool    `json:"paused" jsonschema:"turn is paused"`
}

// InitiativeSummary is one entry of the initiative order.
type InitiativeSummary struct {
	EntityID   string `json:"entity_id" jsonschema:"entity identifier"`
	Type       string `json:"type" jsonschema:"player or npc"`
	Initiative int    `json:"initiative" jsonschema:"initiative total"`
}

// SessionStateResult represents the MCP tool output for reading a session.
type SessionStateResult struct {
	SessionID  string              `json:"session_id" jsonschema:"session identifier"`
	Status     string              `json:"status" jsonschema:"session status"`
	Version    int64               `json:"version" jsonschema:"state version"`
	Phase      string              `json:"phase" jsonschema:"encounter phase"`
	TurnCount  int                 `json:"turn_count" jsonschema:"turns taken this encounter"`
	Turn       *TurnSummary        `json:"turn,omitempty" jsonschema:"current turn"`
	Order      []InitiativeSummary `json:"order" jsonschema:"initiative order"`
	Tokens     []TokenSummary      `json:"tokens" jsonschema:"tokens on the map"`
	Characters []CharacterSummary  `json:"characters" jsonschema:"player characters"`
}

type stateReply struct {
	State   session.Aggregate `json:"state"`
	Version int64             `json:"version"`
}

// SessionStateTool defines the MCP tool schema for reading a session.
func SessionStateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_state",
		Description: "Reads the current state of a tabletop session: tokens, characters and the initiative order",
	}
}

// SessionStateHandler reads a session.
func SessionStateHandler(client GameClient) mcp.ToolHandlerFor[SessionStateInput, SessionStateResult] {
	return gameTool[SessionStateInput](client, game.MethodGetState, func(reply stateReply) (SessionStateResult, error) {
		return summarizeState(reply.State, reply.Version), nil
	})
}

func summarizeState(agg session.Aggregate, version int64) SessionStateResult {
	result := SessionStateResult{
		SessionID:  agg.Session.ID,
		Status:     string(agg.Session.Status),
		Version:    version,
		Phase:      string(agg.Turn.Phase()),
		TurnCount:  agg.Turn.TurnCount,
		Order:      make([]InitiativeSummary, 0, len(agg.Turn.Order)),
		Tokens:     make([]TokenSummary, 0, len(agg.Tokens)),
		Characters: make([]CharacterSummary, 0, len(agg.Characters)),
	}
	switch {
	case agg.Turn.Active != nil:
		result.Turn = summarizeTurn(agg.Turn.Active)
	case agg.Turn.Paused != nil:
		result.Turn = summarizeTurn(agg.Turn.Paused)
		result.Turn.Paused = true
	}
	for _, entry := range agg.Turn.Order {
		result.Order = append(result.Order, InitiativeSummary{
			EntityID:   entry.EntityID,
			Type:       string(entry.Type),
			Initiative: entry.Initiative,
		})
	}
	for _, t := range agg.Tokens {
		result.Tokens = append(result.Tokens, summarizeToken(t))
	}
	for _, c := range agg.Characters {
		result.Characters = append(result.Characters, CharacterSummary{
			ID:           c.ID,
			OwnerID:      c.OwnerID,
			Name:         c.Name,
			Level:        c.Level,
			Health:       c.Health,
			MaxHealth:    c.MaxHealth,
			ActionPoints: c.ActionPoints,
		})
	}
	return result
}

func summarizeTurn(t *turn.Turn) *TurnSummary {
	return &TurnSummary{
		EntityID:        t.EntityID,
		Type:            string(t.Type),
		TurnNumber:      t.TurnNumber,
		Speed:           t.Speed,
		MovementUsed:    t.MovementUsed,
		MajorActionUsed: t.MajorActionUsed,
		MinorActionUsed: t.MinorActionUsed,
	}
}

func summarizeToken(t *actor.Token) TokenSummary {
	return TokenSummary{
		ID:          t.ID,
		Name:        t.Name,
		Kind:        string(t.Kind),
		CharacterID: t.CharacterID,
		X:           t.X,
		Y:           t.Y,
		Health:      t.Health,
		MaxHealth:   t.MaxHealth,
	}
}

// RollDiceInput represents the MCP tool input for rolling dice.
type RollDiceInput struct {
	Notation  string `json:"notation" jsonschema:"dice notation such as 2d6+3"`
	SessionID string `json:"session_id,omitempty" jsonschema:"optional session whose activity log records the roll"`
}

// RollDiceResult represents the MCP tool output for rolling dice.
type RollDiceResult struct {
	Notation  string `json:"notation" jsonschema:"canonical notation"`
	Dice      []int  `json:"dice" jsonschema:"individual die faces"`
	Modifier  int    `json:"modifier" jsonschema:"flat modifier"`
	Total     int    `json:"total" jsonschema:"roll total"`
	Breakdown string `json:"breakdown" jsonschema:"human readable breakdown"`
}

// RollDiceTool defines the MCP tool schema for rolling dice.
func RollDiceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_dice",
		Description: "Rolls dice from standard notation (XdY+Z)",
	}
}

// RollDiceHandler executes a dice roll.
func RollDiceHandler(client GameClient) mcp.ToolHandlerFor[RollDiceInput, RollDiceResult] {
	return gameTool[RollDiceInput](client, game.MethodRollDice, func(reply struct {
		Roll dice.DamageRoll `json:"roll"`
	}) (RollDiceResult, error) {
		faces := reply.Roll.Dice
		if faces == nil {
			faces = []int{}
		}
		return RollDiceResult{
			Notation:  reply.Roll.Notation.String(),
			Dice:      faces,
			Modifier:  reply.Roll.Modifier,
			Total:     reply.Roll.Total,
			Breakdown: reply.Roll.Breakdown,
		}, nil
	})
}

// AttackInput represents the MCP tool input for a weapon attack.
type AttackInput struct {
	SessionID  string `json:"session_id" jsonschema:"session identifier"`
	AttackerID string `json:"attacker_id" jsonschema:"attacking character or token"`
	TargetID   string `json:"target_id" jsonschema:"target character or token"`
}

// AttackResult represents the outcome of an attack or spell.
type AttackResult struct {
	Hit             bool     `json:"hit" jsonschema:"attack connected"`
	Critical        bool     `json:"critical" jsonschema:"natural 20"`
	Fumble          bool     `json:"fumble" jsonschema:"natural 1"`
	DamageDealt     int      `json:"damage_dealt" jsonschema:"damage after resistances"`
	Healed          int      `json:"healed,omitempty" jsonschema:"health restored"`
	RemainingHealth int      `json:"remaining_health" jsonschema:"target health afterwards"`
	Breakdowns      []string `json:"breakdowns" jsonschema:"roll breakdowns"`
}

// BasicAttackTool defines the MCP tool schema for a weapon attack.
func BasicAttackTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "basic_attack",
		Description: "Attacks a target with the attacker's equipped weapon (or unarmed strike)",
	}
}

// BasicAttackHandler executes a weapon attack.
func BasicAttackHandler(client GameClient) mcp.ToolHandlerFor[AttackInput, AttackResult] {
	return gameTool[AttackInput](client, game.MethodBasicAttack, func(reply struct {
		Attack combat.AttackResult `json:"attack"`
	}) (AttackResult, error) {
		r := reply.Attack
		return AttackResult{
			Hit:             r.Hit,
			Critical:        r.Critical,
			Fumble:          r.Fumble,
			DamageDealt:     r.DamageDealt,
			RemainingHealth: r.RemainingHealth,
			Breakdowns:      nonNil(r.Breakdowns),
		}, nil
	})
}

// CastSpellInput represents the MCP tool input for casting a spell.
type CastSpellInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	CasterID  string `json:"caster_id" jsonschema:"casting character or token"`
	TargetID  string `json:"target_id" jsonschema:"target character or token"`
	Spell     string `json:"spell" jsonschema:"spell name, for example Fire Bolt"`
}

// CastSpellTool defines the MCP tool schema for casting a spell.
func CastSpellTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "cast_spell",
		Description: "Casts a known spell at a target",
	}
}

// CastSpellHandler executes a spell.
func CastSpellHandler(client GameClient) mcp.ToolHandlerFor[CastSpellInput, AttackResult] {
	return gameTool[CastSpellInput](client, game.MethodCastSpell, func(reply struct {
		Spell combat.SpellResult `json:"spell"`
	}) (AttackResult, error) {
		r := reply.Spell
		return AttackResult{
			Hit:             r.Hit,
			Critical:        r.Critical,
			Fumble:          r.Fumble,
			DamageDealt:     r.DamageDealt,
			Healed:          r.Healed,
			RemainingHealth: r.RemainingHealth,
			Breakdowns:      nonNil(r.Breakdowns),
		}, nil
	})
}

// MoveTokenInput represents the MCP tool input for moving a token.
type MoveTokenInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	TokenID   string `json:"token_id" jsonschema:"token to move"`
	X         int    `json:"x" jsonschema:"destination column"`
	Y         int    `json:"y" jsonschema:"destination row"`
}

// MoveTokenResult represents the MCP tool output for moving a token.
type MoveTokenResult struct {
	TokenID      string  `json:"token_id" jsonschema:"moved token"`
	X            int     `json:"x" jsonschema:"new column"`
	Y            int     `json:"y" jsonschema:"new row"`
	Steps        int     `json:"steps" jsonschema:"tiles walked"`
	Cost         float64 `json:"cost" jsonschema:"movement cost of the path"`
	MovementUsed float64 `json:"movement_used" jsonschema:"movement spent this turn"`
	Remaining    float64 `json:"remaining" jsonschema:"movement left this turn"`
}

// MoveTokenTool defines the MCP tool schema for moving a token.
func MoveTokenTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "move_token",
		Description: "Moves a token along the cheapest legal path within its remaining movement",
	}
}

// MoveTokenHandler executes a move.
func MoveTokenHandler(client GameClient) mcp.ToolHandlerFor[MoveTokenInput, MoveTokenResult] {
	return gameTool[MoveTokenInput](client, game.MethodMoveToken, func(reply struct {
		Move engine.MoveResult `json:"move"`
	}) (MoveTokenResult, error) {
		m := reply.Move
		steps := len(m.Path.Steps)
		if steps > 0 {
			steps--
		}
		return MoveTokenResult{
			TokenID:      m.TokenID,
			X:            m.To.X,
			Y:            m.To.Y,
			Steps:        steps,
			Cost:         m.Path.Cost,
			MovementUsed: m.MovementUsed,
			Remaining:    m.Remaining,
		}, nil
	})
}

// EndTurnInput represents the MCP tool input for ending a turn.
type EndTurnInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// EndTurnResult represents the MCP tool output for ending a turn.
type EndTurnResult struct {
	Next *TurnSummary `json:"next,omitempty" jsonschema:"turn that starts next"`
}

// EndTurnTool defines the MCP tool schema for ending a turn.
func EndTurnTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "end_turn",
		Description: "Ends the current turn and starts the next one in initiative order",
	}
}

// EndTurnHandler ends the current turn.
func EndTurnHandler(client GameClient) mcp.ToolHandlerFor[EndTurnInput, EndTurnResult] {
	return gameTool[EndTurnInput](client, game.MethodEndTurn, func(reply struct {
		Turn *turn.Turn `json:"turn"`
	}) (EndTurnResult, error) {
		if reply.Turn == nil {
			return EndTurnResult{}, nil
		}
		return EndTurnResult{Next: summarizeTurn(reply.Turn)}, nil
	})
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
