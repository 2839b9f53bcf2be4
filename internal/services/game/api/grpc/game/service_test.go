package game

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/auth"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/interceptors"
	grpcmeta "github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/api/grpc/metadata"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/actor"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/combat"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/dice"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/domain/session"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/engine"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/notify"
	"github.com/kopertop/ai-dnd-expo-sub000/internal/services/game/storage/sqlite"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stateReply struct {
	State   session.Aggregate `json:"state"`
	Version int64             `json:"version"`
}

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	hub := notify.NewHub()
	eng, err := engine.New(store,
		engine.WithActivityLog(store),
		engine.WithNotifier(hub),
		engine.WithDice(func() (dice.Source, error) { return dice.NewSequence(4), nil }),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	authn := auth.New(auth.Config{})
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpcmeta.UnaryServerInterceptor(nil),
			authn.UnaryServerInterceptor(),
			interceptors.LoggingInterceptor(t.Logf),
		),
		grpc.ChainStreamInterceptor(
			grpcmeta.StreamServerInterceptor(nil),
			authn.StreamServerInterceptor(),
		),
	)
	RegisterTabletopServiceServer(srv, NewService(eng, WithActivityReader(store), WithRosterReader(store), WithHub(hub), WithDefaultPageSize(20)))

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// setupTable creates an active session with one player character on the
// map and a goblin next to it.
func setupTable(t *testing.T, host, player *Client) (string, string) {
	t.Helper()
	ctx := context.Background()

	var created stateReply
	err := host.Call(ctx, MethodCreateSession, map[string]any{
		"quest": map[string]any{"title": "The Sunken Crypt"},
		"map":   map[string]any{"id": "crypt", "width": 5, "height": 5},
	}, &created)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if created.State.Session.Status != session.StatusWaiting || created.Version != 1 {
		t.Fatalf("created = %+v", created)
	}
	sessionID := created.State.Session.ID

	if err := host.Call(ctx, MethodStartSession, sessionRequest{SessionID: sessionID}, nil); err != nil {
		t.Fatalf("start session: %v", err)
	}

	var added struct {
		Character actor.Character `json:"character"`
	}
	err = player.Call(ctx, MethodAddCharacter, map[string]any{
		"session_id": sessionID,
		"character":  map[string]any{"name": "Aria", "max_health": 10, "abilities": map[string]any{"dex": 14}},
	}, &added)
	if err != nil {
		t.Fatalf("add character: %v", err)
	}
	if added.Character.OwnerID != "player-1" || added.Character.Health != 10 {
		t.Fatalf("character = %+v", added.Character)
	}

	tokens := []map[string]any{
		{"id": "tok-aria", "kind": "player", "character_id": added.Character.ID, "x": 0, "y": 0},
		{"id": "goblin", "kind": "npc", "name": "Goblin", "x": 1, "y": 0, "max_health": 7},
	}
	for _, tok := range tokens {
		if err := host.Call(ctx, MethodPlaceToken, map[string]any{"session_id": sessionID, "token": tok}, nil); err != nil {
			t.Fatalf("place token %v: %v", tok["id"], err)
		}
	}
	return sessionID, added.Character.ID
}

func TestTabletopServiceRoundTrip(t *testing.T) {
	conn := startServer(t)
	host := NewClient(conn, WithIdentity("host-1", "player"))
	player := NewClient(conn, WithIdentity("player-1", "player"))
	ctx := context.Background()
	sessionID, _ := setupTable(t, host, player)

	var rolled struct {
		Roll dice.DamageRoll `json:"roll"`
	}
	if err := player.Call(ctx, MethodRollDice, rollRequest{SessionID: sessionID, Notation: "2d6+1"}, &rolled); err != nil {
		t.Fatalf("roll dice: %v", err)
	}
	if rolled.Roll.Total != 9 || rolled.Roll.Notation.String() != "2d6+1" {
		t.Fatalf("roll = %+v", rolled.Roll)
	}

	var moved struct {
		Move engine.MoveResult `json:"move"`
	}
	if err := player.Call(ctx, MethodMoveToken, moveRequest{SessionID: sessionID, TokenID: "tok-aria", X: 0, Y: 2}, &moved); err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Move.MovementUsed != 2 || moved.Move.To.Y != 2 {
		t.Fatalf("move = %+v", moved.Move)
	}

	var damaged struct {
		Change combat.HealthChange `json:"change"`
	}
	err := host.Call(ctx, MethodApplyDamage, map[string]any{"session_id": sessionID, "target_id": "goblin", "amount": 3}, &damaged)
	if err != nil {
		t.Fatalf("damage: %v", err)
	}
	if damaged.Change.RemainingHealth != 4 {
		t.Fatalf("change = %+v", damaged.Change)
	}

	var state stateReply
	if err := player.Call(ctx, MethodGetState, sessionRequest{SessionID: sessionID}, &state); err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.Version != 7 || len(state.State.Tokens) != 2 {
		t.Fatalf("state version %d tokens %d", state.Version, len(state.State.Tokens))
	}

	var page struct {
		Entries       []session.LogEntry `json:"entries"`
		NextPageToken string             `json:"next_page_token"`
	}
	err = player.Call(ctx, MethodListActivity, listActivityRequest{SessionID: sessionID, Filter: `type = "movement"`}, &page)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(page.Entries) != 1 || page.Entries[0].Type != session.LogMovement || page.NextPageToken != "" {
		t.Fatalf("page = %+v", page)
	}

	err = player.Call(ctx, MethodListActivity, listActivityRequest{SessionID: sessionID, PageSize: 3}, &page)
	if err != nil {
		t.Fatalf("list activity page: %v", err)
	}
	if len(page.Entries) != 3 || page.NextPageToken == "" || page.Entries[0].Type != session.LogDamage {
		t.Fatalf("page = %+v", page)
	}
}

func TestListRoster(t *testing.T) {
	conn := startServer(t)
	host := NewClient(conn, WithIdentity("host-1", "player"))
	player := NewClient(conn, WithIdentity("player-1", "player"))
	ctx := context.Background()
	sessionID, characterID := setupTable(t, host, player)

	var roster struct {
		Characters []actor.Character `json:"characters"`
		Tokens     []actor.Token     `json:"tokens"`
	}
	if err := player.Call(ctx, MethodListRoster, listRosterRequest{SessionID: sessionID}, &roster); err != nil {
		t.Fatalf("list roster: %v", err)
	}
	if len(roster.Characters) != 1 || roster.Characters[0].ID != characterID || len(roster.Tokens) != 2 {
		t.Fatalf("roster = %+v", roster)
	}

	roster.Characters, roster.Tokens = nil, nil
	if err := player.Call(ctx, MethodListRoster, listRosterRequest{SessionID: sessionID, OwnerID: "someone-else"}, &roster); err != nil {
		t.Fatalf("list roster by owner: %v", err)
	}
	if len(roster.Characters) != 0 || roster.Tokens != nil {
		t.Fatalf("roster = %+v", roster)
	}

	err := player.Call(ctx, MethodListRoster, listRosterRequest{SessionID: "missing"}, nil)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("missing session err = %v", err)
	}
}

func TestTabletopServiceErrors(t *testing.T) {
	conn := startServer(t)
	host := NewClient(conn, WithIdentity("host-1", "player"))
	player := NewClient(conn, WithIdentity("player-1", "player"))
	ctx := context.Background()
	sessionID, _ := setupTable(t, host, player)

	err := player.Call(ctx, MethodRollInitiative, sessionRequest{SessionID: sessionID}, nil)
	assertStatus(t, err, codes.PermissionDenied, "NOT_HOST")

	err = host.Call(ctx, MethodGetState, sessionRequest{SessionID: "missing"}, nil)
	assertStatus(t, err, codes.NotFound, "SESSION_NOT_FOUND")

	err = player.Call(ctx, MethodCastSpell, map[string]any{"session_id": sessionID, "caster_id": "x", "target_id": "y", "spell": "Wish"}, nil)
	assertStatus(t, err, codes.NotFound, "SPELL_UNKNOWN")

	err = host.Call(ctx, MethodStartTurn, map[string]any{"session_id": sessionID, "entity_type": "dragon", "entity_id": "goblin"}, nil)
	assertStatus(t, err, codes.InvalidArgument, "INVALID_INPUT")

	err = host.Call(ctx, MethodMoveToken, map[string]any{"session_id": sessionID, "token_id": "tok-aria", "x": "east"}, nil)
	assertStatus(t, err, codes.InvalidArgument, "INVALID_INPUT")

	anonymous := NewClient(conn)
	err = anonymous.Call(ctx, MethodGetState, sessionRequest{SessionID: sessionID}, nil)
	assertStatus(t, err, codes.Unauthenticated, "UNAUTHENTICATED")
}

func TestHostRoleGrantsHostPowers(t *testing.T) {
	conn := startServer(t)
	host := NewClient(conn, WithIdentity("host-1", "player"))
	player := NewClient(conn, WithIdentity("player-1", "player"))
	sessionID, _ := setupTable(t, host, player)

	gm := NewClient(conn, WithIdentity("gm-7", "host"))
	var rolled struct {
		Initiative struct {
			Order []struct {
				EntityID string `json:"entity_id"`
			} `json:"order"`
		} `json:"initiative"`
	}
	if err := gm.Call(context.Background(), MethodRollInitiative, sessionRequest{SessionID: sessionID}, &rolled); err != nil {
		t.Fatalf("roll initiative: %v", err)
	}
	if len(rolled.Initiative.Order) != 2 {
		t.Fatalf("order = %+v", rolled.Initiative.Order)
	}
}

func TestWatchSession(t *testing.T) {
	conn := startServer(t)
	host := NewClient(conn, WithIdentity("host-1", "player"))
	player := NewClient(conn, WithIdentity("player-1", "player"))
	ctx := context.Background()
	sessionID, _ := setupTable(t, host, player)

	events := make(chan notify.Event, 8)
	done := make(chan error, 1)
	go func() {
		done <- player.Watch(ctx, sessionID, func(evt notify.Event) error {
			events <- evt
			return nil
		})
	}()

	snapshot := nextEvent(t, events)
	if snapshot.Reason != ReasonSnapshot || snapshot.Version != 5 {
		t.Fatalf("snapshot = %+v", snapshot)
	}

	if err := host.Call(ctx, MethodApplyHealing, map[string]any{"session_id": sessionID, "target_id": "goblin", "amount": 1}, nil); err != nil {
		t.Fatalf("heal: %v", err)
	}
	changed := nextEvent(t, events)
	if changed.Reason != "apply_healing" || changed.Version != 6 {
		t.Fatalf("changed = %+v", changed)
	}

	if err := host.Call(ctx, MethodDeleteSession, sessionRequest{SessionID: sessionID}, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted := nextEvent(t, events); deleted.Reason != notify.ReasonDeleted {
		t.Fatalf("deleted = %+v", deleted)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch ended with %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not end after delete")
	}
}

func TestWatchSessionUnknownSession(t *testing.T) {
	conn := startServer(t)
	player := NewClient(conn, WithIdentity("player-1", "player"))
	err := player.Watch(context.Background(), "missing", func(notify.Event) error { return nil })
	assertStatus(t, err, codes.NotFound, "SESSION_NOT_FOUND")
}

func nextEvent(t *testing.T, events <-chan notify.Event) notify.Event {
	t.Helper()
	select {
	case evt := <-events:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return notify.Event{}
	}
}

func assertStatus(t *testing.T, err error, code codes.Code, reason string) {
	t.Helper()
	st, ok := status.FromError(err)
	if !ok || st.Code() != code {
		t.Fatalf("err = %v, want %s", err, code)
	}
	for _, detail := range st.Details() {
		if info, ok := detail.(*errdetails.ErrorInfo); ok {
			if info.GetReason() != reason {
				t.Fatalf("reason = %s, want %s", info.GetReason(), reason)
			}
			return
		}
	}
	t.Fatalf("no ErrorInfo on %v", err)
}
