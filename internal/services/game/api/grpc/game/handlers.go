package game

import (
	"context"
	"encoding/json"
	"strings"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/grid"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/turn"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/engine"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/storage"
	"google.golang.org/protobuf/types/known/structpb"
)

var handlers = map[string]handlerFunc{
	MethodCreateSession:   handle(createSession),
	MethodGetState:        handle(getState),
	MethodStartSession:    handle(statusChange((*engine.Engine).StartSession)),
	MethodCompleteSession: handle(statusChange((*engine.Engine).CompleteSession)),
	MethodCancelSession:   handle(statusChange((*engine.Engine).CancelSession)),
	MethodDeleteSession:   handle(deleteSession),

	MethodAddCharacter:    handle(addCharacter),
	MethodUpdateCharacter: handle(updateCharacter),
	MethodDeleteCharacter: handle(deleteCharacter),
	MethodPlaceToken:      handle(placeToken),
	MethodRemoveToken:     handle(removeToken),
	MethodSetMap:          handle(setMap),
	MethodPatchTile:       handle(patchTile),

	MethodRollInitiative:       handle(initiativeOp((*engine.Engine).RollInitiative)),
	MethodStartTurn:            handle(startTurn),
	MethodEndTurn:              handle(endTurn),
	MethodUpdateTurn:           handle(updateTurn),
	MethodInterruptTurn:        handle(initiativeOp((*engine.Engine).InterruptTurn)),
	MethodResumeTurn:           handle(initiativeOp((*engine.Engine).ResumeTurn)),
	MethodAddToInitiative:      handle(addToInitiative),
	MethodRemoveFromInitiative: handle(removeFromInitiative),
	MethodClearInitiative:      handle(initiativeOp((*engine.Engine).ClearInitiative)),

	MethodMoveToken:       handle(moveToken),
	MethodBasicAttack:     handle(basicAttack),
	MethodCastSpell:       handle(castSpell),
	MethodApplyDamage:     handle(healthChange((*engine.Engine).ApplyDamage)),
	MethodApplyHealing:    handle(healthChange((*engine.Engine).ApplyHealing)),
	MethodPerceptionCheck: handle(check((*engine.Engine).PerceptionCheck)),
	MethodAbilityCheck:    handle(check((*engine.Engine).AbilityCheck)),
	MethodRollDice:        handle(rollDice),

	MethodListActivity: handle(listActivity),
	MethodListRoster:   handle(listRoster),
}

// handle decodes the request into T before calling fn.
func handle[T any](fn func(s *Service, ctx context.Context, caller engine.Caller, in T) (any, error)) handlerFunc {
	return func(s *Service, ctx context.Context, caller engine.Caller, raw *structpb.Struct) (any, error) {
		var in T
		if err := decodeRequest(raw, &in); err != nil {
			return nil, err
		}
		return fn(s, ctx, caller, in)
	}
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

func stateResponse(agg *session.Aggregate) map[string]any {
	return map[string]any{"state": agg, "version": agg.Version}
}

func createSession(s *Service, ctx context.Context, caller engine.Caller, in engine.CreateSessionInput) (any, error) {
	agg, err := s.engine.CreateSession(ctx, caller, in)
	if err != nil {
		return nil, err
	}
	return stateResponse(agg), nil
}

func getState(s *Service, ctx context.Context, caller engine.Caller, in sessionRequest) (any, error) {
	agg, err := s.engine.GetState(ctx, caller, in.SessionID)
	if err != nil {
		return nil, err
	}
	return stateResponse(agg), nil
}

type sessionOp func(*engine.Engine, context.Context, engine.Caller, string) (*session.Aggregate, error)

func statusChange(op sessionOp) func(*Service, context.Context, engine.Caller, sessionRequest) (any, error) {
	return func(s *Service, ctx context.Context, caller engine.Caller, in sessionRequest) (any, error) {
		agg, err := op(s.engine, ctx, caller, in.SessionID)
		if err != nil {
			return nil, err
		}
		return stateResponse(agg), nil
	}
}

func deleteSession(s *Service, ctx context.Context, caller engine.Caller, in sessionRequest) (any, error) {
	if err := s.engine.DeleteSession(ctx, caller, in.SessionID); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true}, nil
}

type characterRequest struct {
	SessionID string          `json:"session_id"`
	Character actor.Character `json:"character"`
}

func addCharacter(s *Service, ctx context.Context, caller engine.Caller, in characterRequest) (any, error) {
	c, err := s.engine.AddCharacter(ctx, caller, in.SessionID, in.Character)
	if err != nil {
		return nil, err
	}
	return map[string]any{"character": c}, nil
}

type updateCharacterRequest struct {
	SessionID   string          `json:"session_id"`
	CharacterID string          `json:"character_id"`
	Patch       json.RawMessage `json:"patch"`
}

func updateCharacter(s *Service, ctx context.Context, caller engine.Caller, in updateCharacterRequest) (any, error) {
	c, err := s.engine.UpdateCharacter(ctx, caller, in.SessionID, in.CharacterID, in.Patch)
	if err != nil {
		return nil, err
	}
	return map[string]any{"character": c}, nil
}

type characterIDRequest struct {
	SessionID   string `json:"session_id"`
	CharacterID string `json:"character_id"`
}

func deleteCharacter(s *Service, ctx context.Context, caller engine.Caller, in characterIDRequest) (any, error) {
	if err := s.engine.DeleteCharacter(ctx, caller, in.SessionID, in.CharacterID); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true}, nil
}

type tokenRequest struct {
	SessionID string      `json:"session_id"`
	Token     actor.Token `json:"token"`
}

func placeToken(s *Service, ctx context.Context, caller engine.Caller, in tokenRequest) (any, error) {
	t, err := s.engine.PlaceToken(ctx, caller, in.SessionID, in.Token)
	if err != nil {
		return nil, err
	}
	return map[string]any{"token": t}, nil
}

type tokenIDRequest struct {
	SessionID string `json:"session_id"`
	TokenID   string `json:"token_id"`
}

func removeToken(s *Service, ctx context.Context, caller engine.Caller, in tokenIDRequest) (any, error) {
	if err := s.engine.RemoveToken(ctx, caller, in.SessionID, in.TokenID); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true}, nil
}

type mapRequest struct {
	SessionID string    `json:"session_id"`
	Map       *grid.Map `json:"map"`
}

func setMap(s *Service, ctx context.Context, caller engine.Caller, in mapRequest) (any, error) {
	m, err := s.engine.SetMap(ctx, caller, in.SessionID, in.Map)
	if err != nil {
		return nil, err
	}
	return map[string]any{"map": m}, nil
}

type tileRequest struct {
	SessionID string    `json:"session_id"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Tile      grid.Tile `json:"tile"`
}

func patchTile(s *Service, ctx context.Context, caller engine.Caller, in tileRequest) (any, error) {
	tile, err := s.engine.PatchTile(ctx, caller, in.SessionID, grid.Point{X: in.X, Y: in.Y}, in.Tile)
	if err != nil {
		return nil, err
	}
	return map[string]any{"tile": tile}, nil
}

type initiativeFunc func(*engine.Engine, context.Context, engine.Caller, string) (turn.State, error)

func initiativeOp(op initiativeFunc) func(*Service, context.Context, engine.Caller, sessionRequest) (any, error) {
	return func(s *Service, ctx context.Context, caller engine.Caller, in sessionRequest) (any, error) {
		state, err := op(s.engine, ctx, caller, in.SessionID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"initiative": state}, nil
	}
}

type startTurnRequest struct {
	SessionID  string `json:"session_id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

func startTurn(s *Service, ctx context.Context, caller engine.Caller, in startTurnRequest) (any, error) {
	var entityType turn.EntityType
	if strings.TrimSpace(in.EntityType) != "" {
		parsed, ok := turn.ParseEntityType(in.EntityType)
		if !ok {
			return nil, apperrors.WithMetadata(apperrors.CodeInvalidInput, "unknown entity type",
				map[string]string{"EntityType": in.EntityType})
		}
		entityType = parsed
	}
	t, err := s.engine.StartTurn(ctx, caller, in.SessionID, entityType, in.EntityID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"turn": t}, nil
}

func endTurn(s *Service, ctx context.Context, caller engine.Caller, in sessionRequest) (any, error) {
	t, err := s.engine.EndTurn(ctx, caller, in.SessionID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"turn": t}, nil
}

type updateTurnRequest struct {
	SessionID string     `json:"session_id"`
	Patch     turn.Patch `json:"patch"`
}

func updateTurn(s *Service, ctx context.Context, caller engine.Caller, in updateTurnRequest) (any, error) {
	t, err := s.engine.UpdateTurn(ctx, caller, in.SessionID, in.Patch)
	if err != nil {
		return nil, err
	}
	return map[string]any{"turn": t}, nil
}

type entityRequest struct {
	SessionID string `json:"session_id"`
	EntityID  string `json:"entity_id"`
}

func addToInitiative(s *Service, ctx context.Context, caller engine.Caller, in entityRequest) (any, error) {
	entry, err := s.engine.AddToInitiative(ctx, caller, in.SessionID, in.EntityID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"entry": entry}, nil
}

func removeFromInitiative(s *Service, ctx context.Context, caller engine.Caller, in entityRequest) (any, error) {
	state, err := s.engine.RemoveFromInitiative(ctx, caller, in.SessionID, in.EntityID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"initiative": state}, nil
}

type moveRequest struct {
	SessionID string `json:"session_id"`
	TokenID   string `json:"token_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Override  bool   `json:"override,omitempty"`
}

func moveToken(s *Service, ctx context.Context, caller engine.Caller, in moveRequest) (any, error) {
	result, err := s.engine.MoveToken(ctx, caller, in.SessionID, in.TokenID, grid.Point{X: in.X, Y: in.Y}, in.Override)
	if err != nil {
		return nil, err
	}
	return map[string]any{"move": result}, nil
}

type attackRequest struct {
	SessionID string `json:"session_id"`
	engine.AttackInput
}

func basicAttack(s *Service, ctx context.Context, caller engine.Caller, in attackRequest) (any, error) {
	result, err := s.engine.BasicAttack(ctx, caller, in.SessionID, in.AttackInput)
	if err != nil {
		return nil, err
	}
	return map[string]any{"attack": result}, nil
}

type spellRequest struct {
	SessionID string `json:"session_id"`
	engine.SpellInput
}

func castSpell(s *Service, ctx context.Context, caller engine.Caller, in spellRequest) (any, error) {
	result, err := s.engine.CastSpell(ctx, caller, in.SessionID, in.SpellInput)
	if err != nil {
		return nil, err
	}
	return map[string]any{"spell": result}, nil
}

type healthRequest struct {
	SessionID string `json:"session_id"`
	engine.HealthInput
}

func healthChange[R any](op func(*engine.Engine, context.Context, engine.Caller, string, engine.HealthInput) (R, error)) func(*Service, context.Context, engine.Caller, healthRequest) (any, error) {
	return func(s *Service, ctx context.Context, caller engine.Caller, in healthRequest) (any, error) {
		change, err := op(s.engine, ctx, caller, in.SessionID, in.HealthInput)
		if err != nil {
			return nil, err
		}
		return map[string]any{"change": change}, nil
	}
}

type checkRequest struct {
	SessionID string `json:"session_id"`
	engine.CheckInput
}

func check[R any](op func(*engine.Engine, context.Context, engine.Caller, string, engine.CheckInput) (R, error)) func(*Service, context.Context, engine.Caller, checkRequest) (any, error) {
	return func(s *Service, ctx context.Context, caller engine.Caller, in checkRequest) (any, error) {
		result, err := op(s.engine, ctx, caller, in.SessionID, in.CheckInput)
		if err != nil {
			return nil, err
		}
		return map[string]any{"check": result}, nil
	}
}

type rollRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Notation  string `json:"notation"`
}

func rollDice(s *Service, ctx context.Context, caller engine.Caller, in rollRequest) (any, error) {
	roll, err := s.engine.RollDice(ctx, caller, in.SessionID, in.Notation)
	if err != nil {
		return nil, err
	}
	return map[string]any{"roll": roll}, nil
}

type listActivityRequest struct {
	SessionID string `json:"session_id"`
	Filter    string `json:"filter,omitempty"`
	PageSize  int    `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
}

func listActivity(s *Service, ctx context.Context, caller engine.Caller, in listActivityRequest) (any, error) {
	if s.activity == nil {
		return nil, apperrors.New(apperrors.CodeStateConflict, "activity log is not configured")
	}
	if _, err := s.engine.GetState(ctx, caller, in.SessionID); err != nil {
		return nil, err
	}
	if in.PageSize <= 0 {
		in.PageSize = s.pageSize
	}
	page, err := s.activity.ListActivity(ctx, storage.ActivityQuery{
		SessionID: in.SessionID,
		Filter:    in.Filter,
		PageSize:  in.PageSize,
		PageToken: in.PageToken,
	})
	if err != nil {
		return nil, err
	}
	entries := page.Entries
	if entries == nil {
		entries = []session.LogEntry{}
	}
	return map[string]any{"entries": entries, "next_page_token": page.NextPageToken}, nil
}

type listRosterRequest struct {
	SessionID string `json:"session_id"`
	OwnerID   string `json:"owner_id,omitempty"`
}

// listRoster reads the character and token projections without loading the
// aggregate. Tokens are left out when the roster is narrowed to one owner.
func listRoster(s *Service, ctx context.Context, caller engine.Caller, in listRosterRequest) (any, error) {
	if s.roster == nil {
		return nil, apperrors.New(apperrors.CodeStateConflict, "roster reader is not configured")
	}
	if strings.TrimSpace(in.SessionID) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "session id is required")
	}
	if _, err := s.engine.GetState(ctx, caller, in.SessionID); err != nil {
		return nil, err
	}
	characters, err := s.roster.ListCharacters(ctx, in.SessionID, strings.TrimSpace(in.OwnerID))
	if err != nil {
		return nil, err
	}
	if characters == nil {
		characters = []*actor.Character{}
	}
	out := map[string]any{"characters": characters}
	if in.OwnerID == "" {
		tokens, err := s.roster.ListTokens(ctx, in.SessionID)
		if err != nil {
			return nil, err
		}
		if tokens == nil {
			tokens = []*actor.Token{}
		}
		out["tokens"] = tokens
	}
	return out, nil
}
