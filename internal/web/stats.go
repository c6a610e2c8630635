package web

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/MatiMita/Futnova/internal/auth"
	"github.com/MatiMita/Futnova/internal/league"
)

const defaultLeaderboardLimit = 10

// fetchAggregationInputs loads teams, players and finalized matches in
// parallel; the three reads are independent. Any failure surfaces as-is, a
// partial aggregation is never computed.
func (s *Server) fetchAggregationInputs(r *http.Request) ([]league.Team, []league.Player, []league.Match, error) {
	var (
		teams   []league.Team
		players []league.Player
		matches []league.Match
		errs    [3]error
		wg      sync.WaitGroup
	)
	ctx := r.Context()
	wg.Add(3)
	go func() {
		defer wg.Done()
		teams, errs[0] = s.store.ListTeams(ctx)
	}()
	go func() {
		defer wg.Done()
		players, errs[1] = s.store.ListPlayers(ctx, "")
	}()
	go func() {
		defer wg.Done()
		matches, errs[2] = s.store.ListFinalizedMatches(ctx)
	}()
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return teams, players, matches, nil
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	teams, _, matches, err := s.fetchAggregationInputs(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, league.ComputeStandings(teams, matches))
}

func (s *Server) handleTopScorers(w http.ResponseWriter, r *http.Request) {
	_, players, matches, err := s.fetchAggregationInputs(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	scorers := league.ComputeTopScorers(players, matches, limitParam(r))
	if scorers == nil {
		scorers = []league.Player{}
	}
	s.writeJSON(w, http.StatusOK, scorers)
}

func (s *Server) handleCardTable(w http.ResponseWriter, r *http.Request) {
	_, players, matches, err := s.fetchAggregationInputs(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rows := league.ComputeCardTable(players, matches, limitParam(r))
	if rows == nil {
		rows = []league.CardRow{}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleKeeperTable(w http.ResponseWriter, r *http.Request) {
	_, players, matches, err := s.fetchAggregationInputs(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rows := league.ComputeKeeperTable(players, matches)
	if rows == nil {
		rows = []league.KeeperRow{}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

// handleRecompute refreshes the materialized standings table. Only the
// relational backend keeps one; the document backend computes on read.
func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	if !s.requireWrite(w, r, auth.Resource{Kind: auth.ResourceMatch}) {
		return
	}
	if s.recomputer == nil {
		s.writeJSON(w, http.StatusNotImplemented,
			errorBody("este backend no materializa posiciones"))
		return
	}
	if err := s.recomputer.RecomputeStandings(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "tabla de posiciones actualizada"})
}

func limitParam(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultLeaderboardLimit
}
