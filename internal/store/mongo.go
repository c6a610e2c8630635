package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MatiMita/Futnova/internal/league"
)

// Mongo persists the league in document collections: equipos, jugadores and
// partidos. Match events are embedded on the match document, so a result
// write is a single-document update and therefore atomic; there is no
// materialized standings collection, the table is computed on read.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	log    zerolog.Logger
}

// NewMongo connects to the given MongoDB instance and pings it early.
func NewMongo(ctx context.Context, uri, dbName string, log zerolog.Logger) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("pinging mongo: %w", errors.Join(league.ErrStoreUnavailable, err))
	}
	log.Info().Str("db", dbName).Msg("conectado a mongodb")
	return &Mongo{client: client, db: client.Database(dbName), log: log}, nil
}

func (s *Mongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Mongo) teams() *mongo.Collection   { return s.db.Collection("equipos") }
func (s *Mongo) players() *mongo.Collection { return s.db.Collection("jugadores") }
func (s *Mongo) matches() *mongo.Collection { return s.db.Collection("partidos") }

func (s *Mongo) ListTeams(ctx context.Context) ([]league.Team, error) {
	cur, err := s.teams().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "nombre", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	var teams []league.Team
	if err := cur.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("decoding teams: %w", err)
	}
	return teams, nil
}

func (s *Mongo) GetTeam(ctx context.Context, id string) (league.Team, error) {
	var t league.Team
	err := s.teams().FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return league.Team{}, league.ErrTeamNotFound
	}
	if err != nil {
		return league.Team{}, fmt.Errorf("querying team %s: %w", id, err)
	}
	return t, nil
}

func (s *Mongo) CreateTeam(ctx context.Context, t league.Team) (league.Team, error) {
	count, err := s.teams().CountDocuments(ctx, bson.M{"nombre": t.Name})
	if err != nil {
		return league.Team{}, fmt.Errorf("checking team name: %w", err)
	}
	if count > 0 {
		return league.Team{}, league.ErrDuplicateTeamName
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	if _, err := s.teams().InsertOne(ctx, t); err != nil {
		return league.Team{}, fmt.Errorf("inserting team %s: %w", t.Name, err)
	}
	return t, nil
}

func (s *Mongo) UpdateTeam(ctx context.Context, t league.Team) (league.Team, error) {
	update := bson.M{"$set": bson.M{
		"nombre":   t.Name,
		"logo_url": t.LogoURL,
		"grupo":    t.Group,
	}}
	res, err := s.teams().UpdateOne(ctx, bson.M{"_id": t.ID}, update)
	if err != nil {
		return league.Team{}, fmt.Errorf("updating team %s: %w", t.ID, err)
	}
	if res.MatchedCount == 0 {
		return league.Team{}, league.ErrTeamNotFound
	}
	return s.GetTeam(ctx, t.ID)
}

func (s *Mongo) DeleteTeam(ctx context.Context, id string) error {
	res, err := s.teams().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting team %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return league.ErrTeamNotFound
	}
	// Cascade to the team's players and matches.
	if _, err := s.players().DeleteMany(ctx, bson.M{"equipo_id": id}); err != nil {
		return fmt.Errorf("deleting players of team %s: %w", id, err)
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"equipo_local_id": id},
		bson.M{"equipo_visitante_id": id},
	}}
	if _, err := s.matches().DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("deleting matches of team %s: %w", id, err)
	}
	return nil
}

func (s *Mongo) ListPlayers(ctx context.Context, teamID string) ([]league.Player, error) {
	filter := bson.M{}
	sort := bson.D{{Key: "apellido", Value: 1}}
	if teamID != "" {
		filter["equipo_id"] = teamID
		sort = bson.D{{Key: "numero_camiseta", Value: 1}}
	}
	cur, err := s.players().Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	var players []league.Player
	if err := cur.All(ctx, &players); err != nil {
		return nil, fmt.Errorf("decoding players: %w", err)
	}
	if err := s.attachTeamNames(ctx, players); err != nil {
		return nil, err
	}
	return players, nil
}

func (s *Mongo) attachTeamNames(ctx context.Context, players []league.Player) error {
	if len(players) == 0 {
		return nil
	}
	teams, err := s.ListTeams(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	for i := range players {
		players[i].TeamName = names[players[i].TeamID]
	}
	return nil
}

func (s *Mongo) GetPlayer(ctx context.Context, id string) (league.Player, error) {
	var p league.Player
	err := s.players().FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return league.Player{}, league.ErrPlayerNotFound
	}
	if err != nil {
		return league.Player{}, fmt.Errorf("querying player %s: %w", id, err)
	}
	return p, nil
}

func (s *Mongo) CreatePlayer(ctx context.Context, p league.Player) (league.Player, error) {
	if _, err := s.GetTeam(ctx, p.TeamID); err != nil {
		if errors.Is(err, league.ErrTeamNotFound) {
			return league.Player{}, &league.ReferentialError{Kind: "equipo", ID: p.TeamID}
		}
		return league.Player{}, err
	}
	p.ID = uuid.NewString()
	p.Goals, p.YellowCards, p.RedCards = 0, 0, 0
	p.RegisteredAt = time.Now()
	if _, err := s.players().InsertOne(ctx, p); err != nil {
		return league.Player{}, fmt.Errorf("inserting player %s %s: %w", p.FirstName, p.LastName, err)
	}
	return p, nil
}

func (s *Mongo) UpdatePlayer(ctx context.Context, p league.Player) (league.Player, error) {
	update := bson.M{"$set": bson.M{
		"nombre":          p.FirstName,
		"apellido":        p.LastName,
		"numero_camiseta": p.JerseyNumber,
		"posicion":        p.Position,
		"equipo_id":       p.TeamID,
	}}
	res, err := s.players().UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	if err != nil {
		return league.Player{}, fmt.Errorf("updating player %s: %w", p.ID, err)
	}
	if res.MatchedCount == 0 {
		return league.Player{}, league.ErrPlayerNotFound
	}
	return s.GetPlayer(ctx, p.ID)
}

func (s *Mongo) DeletePlayer(ctx context.Context, id string) error {
	res, err := s.players().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting player %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return league.ErrPlayerNotFound
	}
	return nil
}

func (s *Mongo) listMatches(ctx context.Context, filter bson.M) ([]league.Match, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fecha", Value: -1}, {Key: "jornada", Value: -1}})
	cur, err := s.matches().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	var matches []league.Match
	if err := cur.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("decoding matches: %w", err)
	}
	if err := s.attachMatchTeamNames(ctx, matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *Mongo) attachMatchTeamNames(ctx context.Context, matches []league.Match) error {
	if len(matches) == 0 {
		return nil
	}
	teams, err := s.ListTeams(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	for i := range matches {
		matches[i].HomeTeam = names[matches[i].HomeTeamID]
		matches[i].AwayTeam = names[matches[i].AwayTeamID]
	}
	return nil
}

func (s *Mongo) ListMatches(ctx context.Context) ([]league.Match, error) {
	return s.listMatches(ctx, bson.M{})
}

func (s *Mongo) ListFinalizedMatches(ctx context.Context) ([]league.Match, error) {
	return s.listMatches(ctx, bson.M{"finalizado": true})
}

func (s *Mongo) GetMatch(ctx context.Context, id string) (league.Match, error) {
	var m league.Match
	err := s.matches().FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return league.Match{}, league.ErrMatchNotFound
	}
	if err != nil {
		return league.Match{}, fmt.Errorf("querying match %s: %w", id, err)
	}
	matches := []league.Match{m}
	if err := s.attachMatchTeamNames(ctx, matches); err != nil {
		return league.Match{}, err
	}
	return matches[0], nil
}

func (s *Mongo) CreateMatch(ctx context.Context, m league.Match) (league.Match, error) {
	for _, teamID := range []string{m.HomeTeamID, m.AwayTeamID} {
		if _, err := s.GetTeam(ctx, teamID); err != nil {
			if errors.Is(err, league.ErrTeamNotFound) {
				return league.Match{}, &league.ReferentialError{Kind: "equipo", ID: teamID}
			}
			return league.Match{}, err
		}
	}
	m.ID = uuid.NewString()
	m.HomeGoals, m.AwayGoals, m.Finalized = 0, 0, false
	m.Scorers, m.YellowCards, m.RedCards = nil, nil, nil
	m.CreatedAt = time.Now()
	if _, err := s.matches().InsertOne(ctx, m); err != nil {
		return league.Match{}, fmt.Errorf("inserting match: %w", err)
	}
	return m, nil
}

func (s *Mongo) UpdateMatch(ctx context.Context, m league.Match) (league.Match, error) {
	update := bson.M{"$set": bson.M{
		"equipo_local_id":     m.HomeTeamID,
		"equipo_visitante_id": m.AwayTeamID,
		"fecha":               m.Date,
		"jornada":             m.Round,
	}}
	res, err := s.matches().UpdateOne(ctx, bson.M{"_id": m.ID}, update)
	if err != nil {
		return league.Match{}, fmt.Errorf("updating match %s: %w", m.ID, err)
	}
	if res.MatchedCount == 0 {
		return league.Match{}, league.ErrMatchNotFound
	}
	return s.GetMatch(ctx, m.ID)
}

func (s *Mongo) DeleteMatch(ctx context.Context, id string) error {
	res, err := s.matches().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting match %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return league.ErrMatchNotFound
	}
	return nil
}

// RecordResult validates the submission against both rosters and writes the
// score, flag and embedded event lists in one UpdateOne. A single-document
// update cannot be observed half-applied, which is all the atomicity the
// aggregators need.
func (s *Mongo) RecordResult(ctx context.Context, matchID string, sub league.ResultSubmission) (league.Match, error) {
	m, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return league.Match{}, err
	}

	var roster []league.Player
	for _, teamID := range []string{m.HomeTeamID, m.AwayTeamID} {
		teamPlayers, err := s.ListPlayers(ctx, teamID)
		if err != nil {
			return league.Match{}, err
		}
		roster = append(roster, teamPlayers...)
	}
	if err := league.ValidateResult(sub, roster); err != nil {
		return league.Match{}, err
	}

	scorers := sub.Scorers
	if scorers == nil {
		scorers = []league.GoalEvent{}
	}
	yellows := sub.YellowCards
	if yellows == nil {
		yellows = []string{}
	}
	reds := sub.RedCards
	if reds == nil {
		reds = []string{}
	}
	update := bson.M{"$set": bson.M{
		"goles_local":        sub.HomeGoals,
		"goles_visitante":    sub.AwayGoals,
		"finalizado":         sub.Finalized,
		"goleadores":         scorers,
		"tarjetas_amarillas": yellows,
		"tarjetas_rojas":     reds,
	}}
	res, err := s.matches().UpdateOne(ctx, bson.M{"_id": matchID}, update)
	if err != nil {
		return league.Match{}, fmt.Errorf("recording result for match %s: %w", matchID, err)
	}
	if res.MatchedCount == 0 {
		return league.Match{}, league.ErrMatchNotFound
	}

	s.log.Info().Str("partido", matchID).
		Int("goles_local", sub.HomeGoals).Int("goles_visitante", sub.AwayGoals).
		Bool("finalizado", sub.Finalized).Msg("resultado registrado")

	return s.GetMatch(ctx, matchID)
}
