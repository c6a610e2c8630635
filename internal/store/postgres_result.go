package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/MatiMita/Futnova/internal/league"
)

// recomputeStandingsSQL rebuilds the materialized posiciones table from the
// full finalized match set in one statement. Running it instead of patching
// per-match increments means re-editing an already finalized score can never
// leave the table drifted.
const recomputeStandingsSQL = `
WITH estadisticas_equipos AS (
	SELECT
		e.id AS equipo_id,
		COUNT(p.id) AS partidos_jugados,
		COUNT(CASE
			WHEN (p.equipo_local_id = e.id AND p.goles_local > p.goles_visitante)
				OR (p.equipo_visitante_id = e.id AND p.goles_visitante > p.goles_local)
			THEN 1
		END) AS partidos_ganados,
		COUNT(CASE
			WHEN p.goles_local = p.goles_visitante
			THEN 1
		END) AS partidos_empatados,
		COUNT(CASE
			WHEN (p.equipo_local_id = e.id AND p.goles_local < p.goles_visitante)
				OR (p.equipo_visitante_id = e.id AND p.goles_visitante < p.goles_local)
			THEN 1
		END) AS partidos_perdidos,
		COALESCE(SUM(CASE
			WHEN p.equipo_local_id = e.id THEN p.goles_local
			WHEN p.equipo_visitante_id = e.id THEN p.goles_visitante
		END), 0) AS goles_favor,
		COALESCE(SUM(CASE
			WHEN p.equipo_local_id = e.id THEN p.goles_visitante
			WHEN p.equipo_visitante_id = e.id THEN p.goles_local
		END), 0) AS goles_contra
	FROM equipos e
	LEFT JOIN partidos p ON (p.equipo_local_id = e.id OR p.equipo_visitante_id = e.id)
		AND p.finalizado = true
	GROUP BY e.id
)
INSERT INTO posiciones (
	equipo_id, partidos_jugados, partidos_ganados, partidos_empatados,
	partidos_perdidos, goles_favor, goles_contra, diferencia_goles, puntos
)
SELECT
	equipo_id,
	partidos_jugados,
	partidos_ganados,
	partidos_empatados,
	partidos_perdidos,
	goles_favor,
	goles_contra,
	goles_favor - goles_contra AS diferencia_goles,
	(partidos_ganados * 3) + partidos_empatados AS puntos
FROM estadisticas_equipos
ON CONFLICT (equipo_id)
DO UPDATE SET
	partidos_jugados = EXCLUDED.partidos_jugados,
	partidos_ganados = EXCLUDED.partidos_ganados,
	partidos_empatados = EXCLUDED.partidos_empatados,
	partidos_perdidos = EXCLUDED.partidos_perdidos,
	goles_favor = EXCLUDED.goles_favor,
	goles_contra = EXCLUDED.goles_contra,
	diferencia_goles = EXCLUDED.diferencia_goles,
	puntos = EXCLUDED.puntos,
	ultima_actualizacion = CURRENT_TIMESTAMP
`

// refreshPlayerCountersSQL rewrites the cached per-player goal and card
// counters from the event tables, restricted to finalized matches. Events are
// authoritative; the counters exist for views that read players directly.
const refreshPlayerCountersSQL = `
UPDATE jugadores j
SET
	goles = COALESCE((
		SELECT SUM(g.cantidad) FROM goles g
		JOIN partidos p ON p.id = g.partido_id
		WHERE g.jugador_id = j.id AND p.finalizado = true
	), 0),
	tarjetas_amarillas = COALESCE((
		SELECT COUNT(*) FROM tarjetas t
		JOIN partidos p ON p.id = t.partido_id
		WHERE t.jugador_id = j.id AND t.tipo = 'amarilla' AND p.finalizado = true
	), 0),
	tarjetas_rojas = COALESCE((
		SELECT COUNT(*) FROM tarjetas t
		JOIN partidos p ON p.id = t.partido_id
		WHERE t.jugador_id = j.id AND t.tipo = 'roja' AND p.finalizado = true
	), 0)
`

// RecordResult commits a final score plus goal and card attributions for one
// match in a single transaction. Event rows are replaced wholesale, player
// counters and the standings table are refreshed, and any failure rolls the
// whole write back so readers never see a half-updated match.
func (s *Postgres) RecordResult(ctx context.Context, matchID string, sub league.ResultSubmission) (league.Match, error) {
	n, ok := parseID(matchID)
	if !ok {
		return league.Match{}, league.ErrMatchNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return league.Match{}, fmt.Errorf("begin record result tx: %w", errors.Join(league.ErrStoreUnavailable, err))
	}
	defer tx.Rollback()

	var homeID, awayID int64
	err = tx.QueryRowContext(ctx,
		`SELECT equipo_local_id, equipo_visitante_id FROM partidos WHERE id = $1 FOR UPDATE`,
		n).Scan(&homeID, &awayID)
	if errors.Is(err, sql.ErrNoRows) {
		return league.Match{}, league.ErrMatchNotFound
	}
	if err != nil {
		return league.Match{}, fmt.Errorf("locking match %s: %w", matchID, err)
	}

	roster, err := s.rosterForTeams(ctx, tx, homeID, awayID)
	if err != nil {
		return league.Match{}, err
	}
	if err := league.ValidateResult(sub, roster); err != nil {
		return league.Match{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE partidos SET goles_local = $1, goles_visitante = $2, finalizado = $3 WHERE id = $4`,
		sub.HomeGoals, sub.AwayGoals, sub.Finalized, n); err != nil {
		return league.Match{}, fmt.Errorf("updating match %s result: %w", matchID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM goles WHERE partido_id = $1`, n); err != nil {
		return league.Match{}, fmt.Errorf("clearing goal events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tarjetas WHERE partido_id = $1`, n); err != nil {
		return league.Match{}, fmt.Errorf("clearing card events: %w", err)
	}

	for _, g := range sub.Scorers {
		playerID, ok := parseID(g.PlayerID)
		if !ok {
			return league.Match{}, &league.ReferentialError{Kind: "jugador", ID: g.PlayerID}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO goles (partido_id, jugador_id, cantidad) VALUES ($1, $2, $3)`,
			n, playerID, g.Count); err != nil {
			return league.Match{}, fmt.Errorf("inserting goal event: %w", err)
		}
	}
	insertCards := func(ids []string, kind string) error {
		for _, id := range ids {
			playerID, ok := parseID(id)
			if !ok {
				return &league.ReferentialError{Kind: "jugador", ID: id}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tarjetas (partido_id, jugador_id, tipo) VALUES ($1, $2, $3)`,
				n, playerID, kind); err != nil {
				return fmt.Errorf("inserting %s card event: %w", kind, err)
			}
		}
		return nil
	}
	if err := insertCards(sub.YellowCards, "amarilla"); err != nil {
		return league.Match{}, err
	}
	if err := insertCards(sub.RedCards, "roja"); err != nil {
		return league.Match{}, err
	}

	if _, err := tx.ExecContext(ctx, refreshPlayerCountersSQL); err != nil {
		return league.Match{}, fmt.Errorf("refreshing player counters: %w", err)
	}
	if _, err := tx.ExecContext(ctx, recomputeStandingsSQL); err != nil {
		return league.Match{}, fmt.Errorf("recomputing standings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return league.Match{}, fmt.Errorf("commit record result tx: %w", errors.Join(league.ErrStoreUnavailable, err))
	}

	s.log.Info().Str("partido", matchID).
		Int("goles_local", sub.HomeGoals).Int("goles_visitante", sub.AwayGoals).
		Bool("finalizado", sub.Finalized).Msg("resultado registrado")

	return s.GetMatch(ctx, matchID)
}

func (s *Postgres) rosterForTeams(ctx context.Context, tx *sql.Tx, teamIDs ...int64) ([]league.Player, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, equipo_id FROM jugadores WHERE equipo_id = ANY($1)`,
		pq.Array(teamIDs))
	if err != nil {
		return nil, fmt.Errorf("querying roster: %w", err)
	}
	defer rows.Close()

	var roster []league.Player
	for rows.Next() {
		var id, teamID int64
		if err := rows.Scan(&id, &teamID); err != nil {
			return nil, fmt.Errorf("scanning roster row: %w", err)
		}
		roster = append(roster, league.Player{ID: formatID(id), TeamID: formatID(teamID)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating roster rows: %w", err)
	}
	return roster, nil
}

// RecomputeStandings rebuilds the materialized standings table on demand.
func (s *Postgres) RecomputeStandings(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, recomputeStandingsSQL); err != nil {
		return fmt.Errorf("recomputing standings: %w", err)
	}
	return nil
}
