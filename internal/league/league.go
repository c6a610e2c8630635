package league

import "time"

// Position classifies a player on the pitch. The goalkeeper value gates the
// clean-sheet leaderboard.
type Position string

const (
	Goalkeeper Position = "portero"
	Defender   Position = "defensa"
	Midfielder Position = "mediocampista"
	Forward    Position = "delantero"
)

// Team represents a club in the league.
type Team struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"nombre" bson:"nombre"`
	LogoURL   string    `json:"logo_url,omitempty" bson:"logo_url,omitempty"`
	Group     string    `json:"grupo,omitempty" bson:"grupo,omitempty"`
	CreatedAt time.Time `json:"fecha_creacion" bson:"fecha_creacion"`
}

// Player belongs to exactly one team. Goals and card fields are cached
// counters; finalized match events are the source of truth when present.
type Player struct {
	ID           string    `json:"id" bson:"_id"`
	FirstName    string    `json:"nombre" bson:"nombre"`
	LastName     string    `json:"apellido" bson:"apellido"`
	JerseyNumber int       `json:"numero_camiseta,omitempty" bson:"numero_camiseta,omitempty"`
	Position     Position  `json:"posicion,omitempty" bson:"posicion,omitempty"`
	TeamID       string    `json:"equipo_id" bson:"equipo_id"`
	TeamName     string    `json:"equipo_nombre,omitempty" bson:"-"`
	Goals        int       `json:"goles" bson:"goles"`
	YellowCards  int       `json:"tarjetas_amarillas" bson:"tarjetas_amarillas"`
	RedCards     int       `json:"tarjetas_rojas" bson:"tarjetas_rojas"`
	RegisteredAt time.Time `json:"fecha_registro" bson:"fecha_registro"`
}

// GoalEvent attributes one or more goals in a match to a player.
type GoalEvent struct {
	PlayerID string `json:"jugadorId" bson:"jugador_id" validate:"required"`
	Count    int    `json:"cantidad" bson:"cantidad" validate:"gte=1"`
}

// Match represents a fixture between two teams. Scores and event lists are
// only authoritative once Finalized is true.
type Match struct {
	ID          string      `json:"id" bson:"_id"`
	HomeTeamID  string      `json:"equipo_local_id" bson:"equipo_local_id"`
	AwayTeamID  string      `json:"equipo_visitante_id" bson:"equipo_visitante_id"`
	HomeTeam    string      `json:"equipo_local,omitempty" bson:"-"`
	AwayTeam    string      `json:"equipo_visitante,omitempty" bson:"-"`
	HomeGoals   int         `json:"goles_local" bson:"goles_local"`
	AwayGoals   int         `json:"goles_visitante" bson:"goles_visitante"`
	Date        time.Time   `json:"fecha" bson:"fecha"`
	Round       int         `json:"jornada" bson:"jornada"`
	Finalized   bool        `json:"finalizado" bson:"finalizado"`
	Scorers     []GoalEvent `json:"goleadores,omitempty" bson:"goleadores,omitempty"`
	YellowCards []string    `json:"tarjetasAmarillas,omitempty" bson:"tarjetas_amarillas,omitempty"`
	RedCards    []string    `json:"tarjetasRojas,omitempty" bson:"tarjetas_rojas,omitempty"`
	CreatedAt   time.Time   `json:"fecha_creacion" bson:"fecha_creacion"`
}

// ResultSubmission carries a final score plus per-goal and per-card player
// attributions for one match. A repeated card entry means a repeated card.
type ResultSubmission struct {
	HomeGoals   int         `json:"goles_local" validate:"gte=0"`
	AwayGoals   int         `json:"goles_visitante" validate:"gte=0"`
	Finalized   bool        `json:"finalizado"`
	Scorers     []GoalEvent `json:"goleadores" validate:"dive"`
	YellowCards []string    `json:"tarjetasAmarillas"`
	RedCards    []string    `json:"tarjetasRojas"`
}

// StandingsRow holds the standings info for one team.
type StandingsRow struct {
	TeamID       string `json:"equipo_id"`
	TeamName     string `json:"equipo_nombre"`
	LogoURL      string `json:"logo_url,omitempty"`
	Group        string `json:"grupo,omitempty"`
	Played       int    `json:"partidos_jugados"`
	Wins         int    `json:"partidos_ganados"`
	Draws        int    `json:"partidos_empatados"`
	Losses       int    `json:"partidos_perdidos"`
	GoalsFor     int    `json:"goles_favor"`
	GoalsAgainst int    `json:"goles_contra"`
	GoalDiff     int    `json:"diferencia_goles"`
	Points       int    `json:"puntos"`
}

// CardRow is one entry of the disciplinary leaderboard.
type CardRow struct {
	Player
	CardPoints int `json:"puntos_tarjetas"`
}

// KeeperRow is one entry of the goalkeeper ranking. Conceded goals are the
// keeper's team goals-against over the matches the team played, used as a
// proxy since per-match keeper lineups are not recorded.
type KeeperRow struct {
	Player
	MatchesPlayed int     `json:"partidos_jugados"`
	GoalsConceded int     `json:"goles_recibidos"`
	CleanSheets   int     `json:"vallas_invictas"`
	AvgConceded   float64 `json:"promedio_goles_recibidos"`
}
