package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/MatiMita/Futnova/internal/league"
)

const uniqueViolation = "23505"

// Postgres persists the league in relational tables: equipos, jugadores,
// partidos, goles, tarjetas, and a materialized posiciones table refreshed on
// every result write.
type Postgres struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPostgres opens a Postgres connection using the given connection string.
func NewPostgres(connStr string, log zerolog.Logger) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// verify early
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", errors.Join(league.ErrStoreUnavailable, err))
	}
	log.Info().Msg("conectado a postgres")
	return &Postgres{db: db, log: log}, nil
}

func (s *Postgres) Close(ctx context.Context) error {
	return s.db.Close()
}

// Migrate creates the necessary tables if they do not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS equipos (
			id             SERIAL PRIMARY KEY,
			nombre         VARCHAR(100) NOT NULL UNIQUE,
			logo_url       VARCHAR(255),
			grupo          VARCHAR(50),
			fecha_creacion TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS jugadores (
			id                 SERIAL PRIMARY KEY,
			nombre             VARCHAR(100) NOT NULL,
			apellido           VARCHAR(100) NOT NULL,
			numero_camiseta    INTEGER,
			posicion           VARCHAR(50),
			equipo_id          INTEGER REFERENCES equipos(id) ON DELETE CASCADE,
			goles              INTEGER DEFAULT 0,
			tarjetas_amarillas INTEGER DEFAULT 0,
			tarjetas_rojas     INTEGER DEFAULT 0,
			fecha_registro     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS partidos (
			id                  SERIAL PRIMARY KEY,
			equipo_local_id     INTEGER REFERENCES equipos(id) ON DELETE CASCADE,
			equipo_visitante_id INTEGER REFERENCES equipos(id) ON DELETE CASCADE,
			goles_local         INTEGER DEFAULT 0,
			goles_visitante     INTEGER DEFAULT 0,
			fecha               DATE NOT NULL,
			jornada             INTEGER NOT NULL,
			finalizado          BOOLEAN DEFAULT false,
			fecha_creacion      TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS goles (
			id         SERIAL PRIMARY KEY,
			partido_id INTEGER REFERENCES partidos(id) ON DELETE CASCADE,
			jugador_id INTEGER REFERENCES jugadores(id) ON DELETE CASCADE,
			cantidad   INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE TABLE IF NOT EXISTS tarjetas (
			id         SERIAL PRIMARY KEY,
			partido_id INTEGER REFERENCES partidos(id) ON DELETE CASCADE,
			jugador_id INTEGER REFERENCES jugadores(id) ON DELETE CASCADE,
			tipo       VARCHAR(10) CHECK (tipo IN ('amarilla', 'roja'))
		);`,
		`CREATE TABLE IF NOT EXISTS posiciones (
			id                   SERIAL PRIMARY KEY,
			equipo_id            INTEGER REFERENCES equipos(id) ON DELETE CASCADE UNIQUE,
			partidos_jugados     INTEGER DEFAULT 0,
			partidos_ganados     INTEGER DEFAULT 0,
			partidos_empatados   INTEGER DEFAULT 0,
			partidos_perdidos    INTEGER DEFAULT 0,
			goles_favor          INTEGER DEFAULT 0,
			goles_contra         INTEGER DEFAULT 0,
			diferencia_goles     INTEGER DEFAULT 0,
			puntos               INTEGER DEFAULT 0,
			ultima_actualizacion TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// parseID maps the string identifiers used across both backends onto the
// serial integer keys of this one. A non-numeric id cannot exist here.
func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil
}

func formatID(n int64) string {
	return strconv.FormatInt(n, 10)
}

func (s *Postgres) ListTeams(ctx context.Context) ([]league.Team, error) {
	const q = `
	SELECT id, nombre, COALESCE(logo_url, ''), COALESCE(grupo, ''), fecha_creacion
	FROM equipos
	ORDER BY nombre
	`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []league.Team
	for rows.Next() {
		var t league.Team
		var id int64
		if err := rows.Scan(&id, &t.Name, &t.LogoURL, &t.Group, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		t.ID = formatID(id)
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating teams rows: %w", err)
	}
	return teams, nil
}

func (s *Postgres) GetTeam(ctx context.Context, id string) (league.Team, error) {
	n, ok := parseID(id)
	if !ok {
		return league.Team{}, league.ErrTeamNotFound
	}
	const q = `
	SELECT id, nombre, COALESCE(logo_url, ''), COALESCE(grupo, ''), fecha_creacion
	FROM equipos WHERE id = $1
	`
	var t league.Team
	var tid int64
	err := s.db.QueryRowContext(ctx, q, n).Scan(&tid, &t.Name, &t.LogoURL, &t.Group, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return league.Team{}, league.ErrTeamNotFound
	}
	if err != nil {
		return league.Team{}, fmt.Errorf("querying team %s: %w", id, err)
	}
	t.ID = formatID(tid)
	return t, nil
}

func (s *Postgres) CreateTeam(ctx context.Context, t league.Team) (league.Team, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return league.Team{}, fmt.Errorf("begin create team tx: %w", err)
	}
	defer tx.Rollback()

	const q = `
	INSERT INTO equipos (nombre, logo_url, grupo)
	VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
	RETURNING id, fecha_creacion
	`
	var id int64
	err = tx.QueryRowContext(ctx, q, t.Name, t.LogoURL, t.Group).Scan(&id, &t.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return league.Team{}, league.ErrDuplicateTeamName
		}
		return league.Team{}, fmt.Errorf("inserting team %s: %w", t.Name, err)
	}

	// Seed the standings row for the new team.
	if _, err := tx.ExecContext(ctx, `INSERT INTO posiciones (equipo_id) VALUES ($1)`, id); err != nil {
		return league.Team{}, fmt.Errorf("seeding standings for team %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return league.Team{}, fmt.Errorf("commit create team tx: %w", err)
	}
	t.ID = formatID(id)
	return t, nil
}

func (s *Postgres) UpdateTeam(ctx context.Context, t league.Team) (league.Team, error) {
	n, ok := parseID(t.ID)
	if !ok {
		return league.Team{}, league.ErrTeamNotFound
	}
	const q = `
	UPDATE equipos SET nombre = $1, logo_url = NULLIF($2, ''), grupo = NULLIF($3, '')
	WHERE id = $4
	RETURNING fecha_creacion
	`
	err := s.db.QueryRowContext(ctx, q, t.Name, t.LogoURL, t.Group, n).Scan(&t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return league.Team{}, league.ErrTeamNotFound
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return league.Team{}, league.ErrDuplicateTeamName
		}
		return league.Team{}, fmt.Errorf("updating team %s: %w", t.ID, err)
	}
	return t, nil
}

func (s *Postgres) DeleteTeam(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return league.ErrTeamNotFound
	}
	// Players, matches, events and the standings row go with it (FK cascade).
	res, err := s.db.ExecContext(ctx, `DELETE FROM equipos WHERE id = $1`, n)
	if err != nil {
		return fmt.Errorf("deleting team %s: %w", id, err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return league.ErrTeamNotFound
	}
	return nil
}

const playerColumns = `
	j.id, j.nombre, j.apellido, COALESCE(j.numero_camiseta, 0),
	COALESCE(j.posicion, ''), j.equipo_id, e.nombre,
	j.goles, j.tarjetas_amarillas, j.tarjetas_rojas, j.fecha_registro
`

func scanPlayer(row interface{ Scan(...any) error }) (league.Player, error) {
	var p league.Player
	var id, teamID int64
	err := row.Scan(&id, &p.FirstName, &p.LastName, &p.JerseyNumber,
		&p.Position, &teamID, &p.TeamName,
		&p.Goals, &p.YellowCards, &p.RedCards, &p.RegisteredAt)
	if err != nil {
		return league.Player{}, err
	}
	p.ID = formatID(id)
	p.TeamID = formatID(teamID)
	return p, nil
}

func (s *Postgres) ListPlayers(ctx context.Context, teamID string) ([]league.Player, error) {
	q := `
	SELECT ` + playerColumns + `
	FROM jugadores j JOIN equipos e ON j.equipo_id = e.id
	ORDER BY j.apellido, j.nombre
	`
	var args []any
	if teamID != "" {
		n, ok := parseID(teamID)
		if !ok {
			return nil, league.ErrTeamNotFound
		}
		q = `
		SELECT ` + playerColumns + `
		FROM jugadores j JOIN equipos e ON j.equipo_id = e.id
		WHERE j.equipo_id = $1
		ORDER BY COALESCE(j.numero_camiseta, 999), j.apellido
		`
		args = append(args, n)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	var players []league.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning player row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating player rows: %w", err)
	}
	return players, nil
}

func (s *Postgres) GetPlayer(ctx context.Context, id string) (league.Player, error) {
	n, ok := parseID(id)
	if !ok {
		return league.Player{}, league.ErrPlayerNotFound
	}
	q := `
	SELECT ` + playerColumns + `
	FROM jugadores j JOIN equipos e ON j.equipo_id = e.id
	WHERE j.id = $1
	`
	p, err := scanPlayer(s.db.QueryRowContext(ctx, q, n))
	if errors.Is(err, sql.ErrNoRows) {
		return league.Player{}, league.ErrPlayerNotFound
	}
	if err != nil {
		return league.Player{}, fmt.Errorf("querying player %s: %w", id, err)
	}
	return p, nil
}

func (s *Postgres) CreatePlayer(ctx context.Context, p league.Player) (league.Player, error) {
	teamID, ok := parseID(p.TeamID)
	if !ok {
		return league.Player{}, &league.ReferentialError{Kind: "equipo", ID: p.TeamID}
	}
	const q = `
	INSERT INTO jugadores (nombre, apellido, numero_camiseta, posicion, equipo_id)
	VALUES ($1, $2, NULLIF($3, 0), NULLIF($4, ''), $5)
	RETURNING id, fecha_registro
	`
	var id int64
	err := s.db.QueryRowContext(ctx, q,
		p.FirstName, p.LastName, p.JerseyNumber, string(p.Position), teamID,
	).Scan(&id, &p.RegisteredAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
			return league.Player{}, &league.ReferentialError{Kind: "equipo", ID: p.TeamID}
		}
		return league.Player{}, fmt.Errorf("inserting player %s %s: %w", p.FirstName, p.LastName, err)
	}
	p.ID = formatID(id)
	p.Goals, p.YellowCards, p.RedCards = 0, 0, 0
	return p, nil
}

func (s *Postgres) UpdatePlayer(ctx context.Context, p league.Player) (league.Player, error) {
	n, ok := parseID(p.ID)
	if !ok {
		return league.Player{}, league.ErrPlayerNotFound
	}
	teamID, ok := parseID(p.TeamID)
	if !ok {
		return league.Player{}, &league.ReferentialError{Kind: "equipo", ID: p.TeamID}
	}
	const q = `
	UPDATE jugadores
	SET nombre = $1, apellido = $2, numero_camiseta = NULLIF($3, 0),
	    posicion = NULLIF($4, ''), equipo_id = $5
	WHERE id = $6
	RETURNING goles, tarjetas_amarillas, tarjetas_rojas, fecha_registro
	`
	err := s.db.QueryRowContext(ctx, q,
		p.FirstName, p.LastName, p.JerseyNumber, string(p.Position), teamID, n,
	).Scan(&p.Goals, &p.YellowCards, &p.RedCards, &p.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return league.Player{}, league.ErrPlayerNotFound
	}
	if err != nil {
		return league.Player{}, fmt.Errorf("updating player %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *Postgres) DeletePlayer(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return league.ErrPlayerNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM jugadores WHERE id = $1`, n)
	if err != nil {
		return fmt.Errorf("deleting player %s: %w", id, err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return league.ErrPlayerNotFound
	}
	return nil
}

const matchColumns = `
	p.id, p.equipo_local_id, p.equipo_visitante_id, el.nombre, ev.nombre,
	p.goles_local, p.goles_visitante, p.fecha, p.jornada, p.finalizado, p.fecha_creacion
`

func scanMatch(row interface{ Scan(...any) error }) (league.Match, error) {
	var m league.Match
	var id, homeID, awayID int64
	err := row.Scan(&id, &homeID, &awayID, &m.HomeTeam, &m.AwayTeam,
		&m.HomeGoals, &m.AwayGoals, &m.Date, &m.Round, &m.Finalized, &m.CreatedAt)
	if err != nil {
		return league.Match{}, err
	}
	m.ID = formatID(id)
	m.HomeTeamID = formatID(homeID)
	m.AwayTeamID = formatID(awayID)
	return m, nil
}

func (s *Postgres) listMatches(ctx context.Context, onlyFinalized bool) ([]league.Match, error) {
	q := `
	SELECT ` + matchColumns + `
	FROM partidos p
	JOIN equipos el ON p.equipo_local_id = el.id
	JOIN equipos ev ON p.equipo_visitante_id = ev.id
	`
	if onlyFinalized {
		q += ` WHERE p.finalizado = true`
	}
	q += ` ORDER BY p.fecha DESC, p.jornada DESC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var matches []league.Match
	var ids []int64
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		matches = append(matches, m)
		n, _ := parseID(m.ID)
		ids = append(ids, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating match rows: %w", err)
	}
	if err := s.attachEvents(ctx, matches, ids); err != nil {
		return nil, err
	}
	return matches, nil
}

// attachEvents loads goal and card detail for the given matches in two
// queries and distributes them onto the match structs.
func (s *Postgres) attachEvents(ctx context.Context, matches []league.Match, ids []int64) error {
	if len(matches) == 0 {
		return nil
	}
	byID := make(map[string]*league.Match, len(matches))
	for i := range matches {
		byID[matches[i].ID] = &matches[i]
	}

	goalRows, err := s.db.QueryContext(ctx,
		`SELECT partido_id, jugador_id, cantidad FROM goles WHERE partido_id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("querying goal events: %w", err)
	}
	defer goalRows.Close()
	for goalRows.Next() {
		var matchID, playerID int64
		var count int
		if err := goalRows.Scan(&matchID, &playerID, &count); err != nil {
			return fmt.Errorf("scanning goal event: %w", err)
		}
		if m := byID[formatID(matchID)]; m != nil {
			m.Scorers = append(m.Scorers, league.GoalEvent{PlayerID: formatID(playerID), Count: count})
		}
	}
	if err := goalRows.Err(); err != nil {
		return fmt.Errorf("iterating goal events: %w", err)
	}

	cardRows, err := s.db.QueryContext(ctx,
		`SELECT partido_id, jugador_id, tipo FROM tarjetas WHERE partido_id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("querying card events: %w", err)
	}
	defer cardRows.Close()
	for cardRows.Next() {
		var matchID, playerID int64
		var kind string
		if err := cardRows.Scan(&matchID, &playerID, &kind); err != nil {
			return fmt.Errorf("scanning card event: %w", err)
		}
		m := byID[formatID(matchID)]
		if m == nil {
			continue
		}
		if kind == "roja" {
			m.RedCards = append(m.RedCards, formatID(playerID))
		} else {
			m.YellowCards = append(m.YellowCards, formatID(playerID))
		}
	}
	if err := cardRows.Err(); err != nil {
		return fmt.Errorf("iterating card events: %w", err)
	}
	return nil
}

func (s *Postgres) ListMatches(ctx context.Context) ([]league.Match, error) {
	return s.listMatches(ctx, false)
}

func (s *Postgres) ListFinalizedMatches(ctx context.Context) ([]league.Match, error) {
	return s.listMatches(ctx, true)
}

func (s *Postgres) GetMatch(ctx context.Context, id string) (league.Match, error) {
	n, ok := parseID(id)
	if !ok {
		return league.Match{}, league.ErrMatchNotFound
	}
	q := `
	SELECT ` + matchColumns + `
	FROM partidos p
	JOIN equipos el ON p.equipo_local_id = el.id
	JOIN equipos ev ON p.equipo_visitante_id = ev.id
	WHERE p.id = $1
	`
	m, err := scanMatch(s.db.QueryRowContext(ctx, q, n))
	if errors.Is(err, sql.ErrNoRows) {
		return league.Match{}, league.ErrMatchNotFound
	}
	if err != nil {
		return league.Match{}, fmt.Errorf("querying match %s: %w", id, err)
	}
	matches := []league.Match{m}
	if err := s.attachEvents(ctx, matches, []int64{n}); err != nil {
		return league.Match{}, err
	}
	return matches[0], nil
}

func (s *Postgres) CreateMatch(ctx context.Context, m league.Match) (league.Match, error) {
	homeID, ok := parseID(m.HomeTeamID)
	if !ok {
		return league.Match{}, &league.ReferentialError{Kind: "equipo", ID: m.HomeTeamID}
	}
	awayID, ok := parseID(m.AwayTeamID)
	if !ok {
		return league.Match{}, &league.ReferentialError{Kind: "equipo", ID: m.AwayTeamID}
	}
	const q = `
	INSERT INTO partidos (equipo_local_id, equipo_visitante_id, fecha, jornada)
	VALUES ($1, $2, $3, $4)
	RETURNING id, fecha_creacion
	`
	var id int64
	err := s.db.QueryRowContext(ctx, q, homeID, awayID, m.Date, m.Round).Scan(&id, &m.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
			return league.Match{}, &league.ReferentialError{Kind: "equipo", ID: m.HomeTeamID}
		}
		return league.Match{}, fmt.Errorf("inserting match: %w", err)
	}
	m.ID = formatID(id)
	m.HomeGoals, m.AwayGoals, m.Finalized = 0, 0, false
	return m, nil
}

func (s *Postgres) UpdateMatch(ctx context.Context, m league.Match) (league.Match, error) {
	n, ok := parseID(m.ID)
	if !ok {
		return league.Match{}, league.ErrMatchNotFound
	}
	homeID, ok := parseID(m.HomeTeamID)
	if !ok {
		return league.Match{}, &league.ReferentialError{Kind: "equipo", ID: m.HomeTeamID}
	}
	awayID, ok := parseID(m.AwayTeamID)
	if !ok {
		return league.Match{}, &league.ReferentialError{Kind: "equipo", ID: m.AwayTeamID}
	}
	const q = `
	UPDATE partidos
	SET equipo_local_id = $1, equipo_visitante_id = $2, fecha = $3, jornada = $4
	WHERE id = $5
	`
	res, err := s.db.ExecContext(ctx, q, homeID, awayID, m.Date, m.Round, n)
	if err != nil {
		return league.Match{}, fmt.Errorf("updating match %s: %w", m.ID, err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return league.Match{}, league.ErrMatchNotFound
	}
	return s.GetMatch(ctx, m.ID)
}

func (s *Postgres) DeleteMatch(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return league.ErrMatchNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM partidos WHERE id = $1`, n)
	if err != nil {
		return fmt.Errorf("deleting match %s: %w", id, err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return league.ErrMatchNotFound
	}
	return nil
}
