package store

import (
	"context"

	"github.com/MatiMita/Futnova/internal/league"
)

// Store is the entity store behind the API: teams, players and matches, plus
// the transactional result recorder. Standings and leaderboards are not
// stored; they are derived from the finalized match set on every read.
type Store interface {
	ListTeams(ctx context.Context) ([]league.Team, error)
	GetTeam(ctx context.Context, id string) (league.Team, error)
	CreateTeam(ctx context.Context, t league.Team) (league.Team, error)
	UpdateTeam(ctx context.Context, t league.Team) (league.Team, error)
	// DeleteTeam cascades to the team's players and matches.
	DeleteTeam(ctx context.Context, id string) error

	// ListPlayers returns all players, or only one team's roster when teamID
	// is non-empty.
	ListPlayers(ctx context.Context, teamID string) ([]league.Player, error)
	GetPlayer(ctx context.Context, id string) (league.Player, error)
	CreatePlayer(ctx context.Context, p league.Player) (league.Player, error)
	UpdatePlayer(ctx context.Context, p league.Player) (league.Player, error)
	DeletePlayer(ctx context.Context, id string) error

	ListMatches(ctx context.Context) ([]league.Match, error)
	ListFinalizedMatches(ctx context.Context) ([]league.Match, error)
	GetMatch(ctx context.Context, id string) (league.Match, error)
	CreateMatch(ctx context.Context, m league.Match) (league.Match, error)
	// UpdateMatch edits scheduling info only; scores go through RecordResult.
	UpdateMatch(ctx context.Context, m league.Match) (league.Match, error)
	DeleteMatch(ctx context.Context, id string) error

	// RecordResult atomically persists score, finalized flag and event lists
	// for one match. It either fully succeeds or leaves the match untouched.
	RecordResult(ctx context.Context, matchID string, sub league.ResultSubmission) (league.Match, error)

	Close(ctx context.Context) error
}

// StandingsRecomputer is implemented by backends keeping a materialized
// standings table. The document backend has none and computes on read.
type StandingsRecomputer interface {
	RecomputeStandings(ctx context.Context) error
}
