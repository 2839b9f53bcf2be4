// Package game exposes the engine as game.v1.TabletopService.
//
// Requests and responses are google.protobuf.Struct messages holding the
// engine's JSON shapes, so the service is registered with a hand-written
// grpc.ServiceDesc instead of generated stubs. Method groups:
//   - session lifecycle: CreateSession, StartSession, CompleteSession,
//     CancelSession, DeleteSession, GetState
//   - roster and map: AddCharacter, UpdateCharacter, DeleteCharacter,
//     PlaceToken, RemoveToken, SetMap, PatchTile
//   - turn control: RollInitiative, StartTurn, EndTurn, UpdateTurn,
//     InterruptTurn, ResumeTurn, AddToInitiative, RemoveFromInitiative,
//     ClearInitiative
//   - movement and combat: MoveToken, BasicAttack, CastSpell, ApplyDamage,
//     ApplyHealing, PerceptionCheck, AbilityCheck, RollDice
//   - reads: ListActivity, ListRoster and the server stream WatchSession
package game
