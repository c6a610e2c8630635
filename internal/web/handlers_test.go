package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/MatiMita/Futnova/internal/auth"
	"github.com/MatiMita/Futnova/internal/league"
)

// fakeStore is an in-memory Store for handler tests. It reuses the same
// validation path as the real backends.
type fakeStore struct {
	teams   map[string]league.Team
	players map[string]league.Player
	matches map[string]league.Match
	nextID  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		teams:   map[string]league.Team{},
		players: map[string]league.Player{},
		matches: map[string]league.Match{},
	}
}

func (f *fakeStore) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) ListTeams(ctx context.Context) ([]league.Team, error) {
	var out []league.Team
	for _, t := range f.teams {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) GetTeam(ctx context.Context, id string) (league.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return league.Team{}, league.ErrTeamNotFound
	}
	return t, nil
}

func (f *fakeStore) CreateTeam(ctx context.Context, t league.Team) (league.Team, error) {
	for _, existing := range f.teams {
		if existing.Name == t.Name {
			return league.Team{}, league.ErrDuplicateTeamName
		}
	}
	t.ID = f.id()
	f.teams[t.ID] = t
	return t, nil
}

func (f *fakeStore) UpdateTeam(ctx context.Context, t league.Team) (league.Team, error) {
	if _, ok := f.teams[t.ID]; !ok {
		return league.Team{}, league.ErrTeamNotFound
	}
	f.teams[t.ID] = t
	return t, nil
}

func (f *fakeStore) DeleteTeam(ctx context.Context, id string) error {
	if _, ok := f.teams[id]; !ok {
		return league.ErrTeamNotFound
	}
	delete(f.teams, id)
	for pid, p := range f.players {
		if p.TeamID == id {
			delete(f.players, pid)
		}
	}
	for mid, m := range f.matches {
		if m.HomeTeamID == id || m.AwayTeamID == id {
			delete(f.matches, mid)
		}
	}
	return nil
}

func (f *fakeStore) ListPlayers(ctx context.Context, teamID string) ([]league.Player, error) {
	var out []league.Player
	for _, p := range f.players {
		if teamID == "" || p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPlayer(ctx context.Context, id string) (league.Player, error) {
	p, ok := f.players[id]
	if !ok {
		return league.Player{}, league.ErrPlayerNotFound
	}
	return p, nil
}

func (f *fakeStore) CreatePlayer(ctx context.Context, p league.Player) (league.Player, error) {
	if _, ok := f.teams[p.TeamID]; !ok {
		return league.Player{}, &league.ReferentialError{Kind: "equipo", ID: p.TeamID}
	}
	p.ID = f.id()
	f.players[p.ID] = p
	return p, nil
}

func (f *fakeStore) UpdatePlayer(ctx context.Context, p league.Player) (league.Player, error) {
	if _, ok := f.players[p.ID]; !ok {
		return league.Player{}, league.ErrPlayerNotFound
	}
	f.players[p.ID] = p
	return p, nil
}

func (f *fakeStore) DeletePlayer(ctx context.Context, id string) error {
	if _, ok := f.players[id]; !ok {
		return league.ErrPlayerNotFound
	}
	delete(f.players, id)
	return nil
}

func (f *fakeStore) ListMatches(ctx context.Context) ([]league.Match, error) {
	var out []league.Match
	for _, m := range f.matches {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) ListFinalizedMatches(ctx context.Context) ([]league.Match, error) {
	var out []league.Match
	for _, m := range f.matches {
		if m.Finalized {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) GetMatch(ctx context.Context, id string) (league.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return league.Match{}, league.ErrMatchNotFound
	}
	return m, nil
}

func (f *fakeStore) CreateMatch(ctx context.Context, m league.Match) (league.Match, error) {
	for _, teamID := range []string{m.HomeTeamID, m.AwayTeamID} {
		if _, ok := f.teams[teamID]; !ok {
			return league.Match{}, &league.ReferentialError{Kind: "equipo", ID: teamID}
		}
	}
	m.ID = f.id()
	f.matches[m.ID] = m
	return m, nil
}

func (f *fakeStore) UpdateMatch(ctx context.Context, m league.Match) (league.Match, error) {
	if _, ok := f.matches[m.ID]; !ok {
		return league.Match{}, league.ErrMatchNotFound
	}
	f.matches[m.ID] = m
	return m, nil
}

func (f *fakeStore) DeleteMatch(ctx context.Context, id string) error {
	if _, ok := f.matches[id]; !ok {
		return league.ErrMatchNotFound
	}
	delete(f.matches, id)
	return nil
}

func (f *fakeStore) RecordResult(ctx context.Context, matchID string, sub league.ResultSubmission) (league.Match, error) {
	m, ok := f.matches[matchID]
	if !ok {
		return league.Match{}, league.ErrMatchNotFound
	}
	var roster []league.Player
	for _, p := range f.players {
		if p.TeamID == m.HomeTeamID || p.TeamID == m.AwayTeamID {
			roster = append(roster, p)
		}
	}
	if err := league.ValidateResult(sub, roster); err != nil {
		return league.Match{}, err
	}
	m.HomeGoals = sub.HomeGoals
	m.AwayGoals = sub.AwayGoals
	m.Finalized = sub.Finalized
	m.Scorers = sub.Scorers
	m.YellowCards = sub.YellowCards
	m.RedCards = sub.RedCards
	f.matches[matchID] = m
	return m, nil
}

func (f *fakeStore) Close(ctx context.Context) error { return nil }

var testSecret = []byte("test-secret")

func newTestServer(f *fakeStore) http.Handler {
	log := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return NewServer(f, testSecret, log).Routes()
}

func bearer(t *testing.T, u auth.User) string {
	t.Helper()
	token, err := auth.NewToken(testSecret, u, time.Hour)
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return "Bearer " + token
}

func doRequest(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func seedLeague(t *testing.T, f *fakeStore) (home, away league.Team, match league.Match, scorer league.Player) {
	t.Helper()
	ctx := context.Background()
	home, _ = f.CreateTeam(ctx, league.Team{Name: "Local FC"})
	away, _ = f.CreateTeam(ctx, league.Team{Name: "Visitante FC"})
	match, _ = f.CreateMatch(ctx, league.Match{HomeTeamID: home.ID, AwayTeamID: away.ID, Round: 1})
	scorer, _ = f.CreatePlayer(ctx, league.Player{FirstName: "Leo", LastName: "Diez", TeamID: home.ID})
	return home, away, match, scorer
}

func TestStandingsEndpoint(t *testing.T) {
	f := newFakeStore()
	home, away, match, _ := seedLeague(t, f)
	_, err := f.RecordResult(context.Background(), match.ID, league.ResultSubmission{
		HomeGoals: 3, AwayGoals: 1, Finalized: true,
	})
	if err != nil {
		t.Fatalf("seeding result: %v", err)
	}

	rec := doRequest(t, newTestServer(f), "GET", "/api/estadisticas/posiciones", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var table []league.StandingsRow
	if err := json.Unmarshal(rec.Body.Bytes(), &table); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("table len = %d, want 2", len(table))
	}
	if table[0].TeamID != home.ID || table[0].Points != 3 {
		t.Errorf("table[0] = %+v, want winner %s with 3 points", table[0], home.ID)
	}
	if table[1].TeamID != away.ID || table[1].Points != 0 {
		t.Errorf("table[1] = %+v, want loser %s with 0 points", table[1], away.ID)
	}
}

func TestRecordResult_RequiresAuth(t *testing.T) {
	f := newFakeStore()
	_, _, match, _ := seedLeague(t, f)
	h := newTestServer(f)
	body := `{"goles_local":1,"goles_visitante":0,"finalizado":true}`

	rec := doRequest(t, h, "PUT", "/api/partidos/"+match.ID+"/resultado", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}

	visitor := bearer(t, auth.User{ID: "v", Role: auth.RoleVisitor})
	rec = doRequest(t, h, "PUT", "/api/partidos/"+match.ID+"/resultado", visitor, body)
	if rec.Code != http.StatusForbidden {
		t.Errorf("visitor status = %d, want 403", rec.Code)
	}

	captain := bearer(t, auth.User{ID: "c", Role: auth.RoleCaptain, TeamID: "someteam"})
	rec = doRequest(t, h, "PUT", "/api/partidos/"+match.ID+"/resultado", captain, body)
	if rec.Code != http.StatusForbidden {
		t.Errorf("captain status = %d, want 403", rec.Code)
	}
}

func TestRecordResult_AdminHappyPath(t *testing.T) {
	f := newFakeStore()
	_, _, match, scorer := seedLeague(t, f)
	admin := bearer(t, auth.User{ID: "a", Role: auth.RoleAdmin})
	body := `{"goles_local":2,"goles_visitante":0,"finalizado":true,` +
		`"goleadores":[{"jugadorId":"` + scorer.ID + `","cantidad":2}],` +
		`"tarjetasAmarillas":["` + scorer.ID + `"]}`

	rec := doRequest(t, newTestServer(f), "PUT", "/api/partidos/"+match.ID+"/resultado", admin, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var updated league.Match
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if updated.HomeGoals != 2 || !updated.Finalized || len(updated.Scorers) != 1 {
		t.Errorf("updated = %+v, want score 2-0 finalized with 1 goal event", updated)
	}
}

func TestRecordResult_Validation(t *testing.T) {
	f := newFakeStore()
	_, _, match, _ := seedLeague(t, f)
	h := newTestServer(f)
	admin := bearer(t, auth.User{ID: "a", Role: auth.RoleAdmin})

	rec := doRequest(t, h, "PUT", "/api/partidos/"+match.ID+"/resultado", admin,
		`{"goles_local":-1,"goles_visitante":0,"finalizado":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative goals status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, h, "PUT", "/api/partidos/"+match.ID+"/resultado", admin,
		`{"goles_local":1,"goles_visitante":0,"finalizado":true,"goleadores":[{"jugadorId":"ghost","cantidad":1}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown scorer status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, h, "PUT", "/api/partidos/desconocido/resultado", admin,
		`{"goles_local":1,"goles_visitante":0,"finalizado":true}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown match status = %d, want 404", rec.Code)
	}
}

func TestCreateTeam_DuplicateName(t *testing.T) {
	f := newFakeStore()
	seedLeague(t, f)
	admin := bearer(t, auth.User{ID: "a", Role: auth.RoleAdmin})

	rec := doRequest(t, newTestServer(f), "POST", "/api/equipos", admin, `{"nombre":"Local FC"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestCreateMatch_SameTeamRejected(t *testing.T) {
	f := newFakeStore()
	home, _, _, _ := seedLeague(t, f)
	admin := bearer(t, auth.User{ID: "a", Role: auth.RoleAdmin})
	body := `{"equipo_local_id":"` + home.ID + `","equipo_visitante_id":"` + home.ID + `",` +
		`"fecha":"2026-03-01T00:00:00Z","jornada":1}`

	rec := doRequest(t, newTestServer(f), "POST", "/api/partidos", admin, body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for home == away", rec.Code)
	}
}

func TestCaptainRosterScope(t *testing.T) {
	f := newFakeStore()
	home, away, _, _ := seedLeague(t, f)
	h := newTestServer(f)
	captain := bearer(t, auth.User{ID: "c", Role: auth.RoleCaptain, TeamID: home.ID})

	ownBody := `{"nombre":"Ana","apellido":"Sosa","equipo_id":"` + home.ID + `"}`
	rec := doRequest(t, h, "POST", "/api/jugadores", captain, ownBody)
	if rec.Code != http.StatusCreated {
		t.Errorf("own roster status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	otherBody := `{"nombre":"Ana","apellido":"Sosa","equipo_id":"` + away.ID + `"}`
	rec = doRequest(t, h, "POST", "/api/jugadores", captain, otherBody)
	if rec.Code != http.StatusForbidden {
		t.Errorf("other roster status = %d, want 403", rec.Code)
	}
}

func TestTopScorersEndpoint(t *testing.T) {
	f := newFakeStore()
	_, _, match, scorer := seedLeague(t, f)
	_, err := f.RecordResult(context.Background(), match.ID, league.ResultSubmission{
		HomeGoals: 2, AwayGoals: 0, Finalized: true,
		Scorers: []league.GoalEvent{{PlayerID: scorer.ID, Count: 2}},
	})
	if err != nil {
		t.Fatalf("seeding result: %v", err)
	}

	rec := doRequest(t, newTestServer(f), "GET", "/api/estadisticas/goleadores?limit=5", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var scorers []league.Player
	if err := json.Unmarshal(rec.Body.Bytes(), &scorers); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(scorers) != 1 || scorers[0].Goals != 2 {
		t.Errorf("scorers = %+v, want one entry with 2 goals", scorers)
	}
}

func TestRecompute_UnsupportedBackend(t *testing.T) {
	f := newFakeStore()
	admin := bearer(t, auth.User{ID: "a", Role: auth.RoleAdmin})

	rec := doRequest(t, newTestServer(f), "POST", "/api/estadisticas/posiciones/recalcular", admin, "")
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501 when no materialized table exists", rec.Code)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	f := newFakeStore()
	rec := doRequest(t, newTestServer(f), "GET", "/api/equipos", "Bearer garbage", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
