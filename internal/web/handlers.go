package web

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MatiMita/Futnova/internal/auth"
	"github.com/MatiMita/Futnova/internal/league"
)

type teamInput struct {
	Name    string `json:"nombre" validate:"required,max=100"`
	LogoURL string `json:"logo_url" validate:"omitempty,max=255"`
	Group   string `json:"grupo" validate:"omitempty,max=50"`
}

type playerInput struct {
	FirstName    string `json:"nombre" validate:"required,max=100"`
	LastName     string `json:"apellido" validate:"required,max=100"`
	JerseyNumber int    `json:"numero_camiseta" validate:"gte=0,lte=99"`
	Position     string `json:"posicion" validate:"omitempty,oneof=portero defensa mediocampista delantero"`
	TeamID       string `json:"equipo_id" validate:"required"`
}

type matchInput struct {
	HomeTeamID string    `json:"equipo_local_id" validate:"required"`
	AwayTeamID string    `json:"equipo_visitante_id" validate:"required,nefield=HomeTeamID"`
	Date       time.Time `json:"fecha" validate:"required"`
	Round      int       `json:"jornada" validate:"gte=1"`
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.store.ListTeams(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if teams == nil {
		teams = []league.Team{}
	}
	s.writeJSON(w, http.StatusOK, teams)
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := s.store.GetTeam(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, team)
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	if !s.requireWrite(w, r, auth.Resource{Kind: auth.ResourceTeam}) {
		return
	}
	var in teamInput
	if !s.decode(w, r, &in) {
		return
	}
	team, err := s.store.CreateTeam(r.Context(), league.Team{
		Name:    in.Name,
		LogoURL: in.LogoURL,
		Group:   in.Group,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, team)
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	if !s.requireWrite(w, r, auth.Resource{Kind: auth.ResourceTeam}) {
		return
	}
	var in teamInput
	if !s.decode(w, r, &in) {
		return
	}
	team, err := s.store.UpdateTeam(r.Context(), league.Team{
		ID:      mux.Vars(r)["id"],
		Name:    in.Name,
		LogoURL: in.LogoURL,
		Group:   in.Group,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, team)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	if !s.requireWrite(w, r, auth.Resource{Kind: auth.ResourceTeam}) {
		return
	}
	if err := s.store.DeleteTeam(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "equipo eliminado"})
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.store.ListPlayers(r.Context(), r.URL.Query().Get("equipo"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if players == nil {
		players = []league.Player{}
	}
	s.writeJSON(w, http.StatusOK, players)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.store.GetPlayer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, player)
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var in playerInput
	if !s.decode(w, r, &in) {
		return
	}
	if !s.requireWrite(w, r, auth.Resource{Kind: auth.ResourcePlayer, TeamID: in.TeamID}) {
		return
	}
	player, err := s.store.CreatePlayer(r.Context(), league.Player{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		JerseyNumber: in.JerseyNumber,
		Position:     league.Position(in.Position),
		TeamID:       in.TeamID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, player)
}

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	var in playerInput
	if !s.decode(w, r, &in) {
		return
	}
	existing, err := s.store.GetPlayer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	// A captain must own both the player's current team and the target team,
	// so roster moves between teams stay admin-only.
	if !s.requireWrite(w, r, auth.Resource{Kind: auth.ResourcePlayer, TeamID: existing.TeamID}) {
		return
	}
	if in.TeamID != existing.TeamID {
		if !s.requireWrite(w, r, auth.Resource{Kind: auth.ResourcePlayer, TeamID: in.TeamID}) {
			return
		}
	}
	player, err := s.store.UpdatePlayer(r.Context(), league.Player{
		ID:           existing.ID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		JerseyNumber: in.JerseyNumber,
		Position:     league.Position(in.Position),
		TeamID:       in.TeamID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, player)
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetPlayer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !s.requireWrite(w, r, auth.Resource{Kind: auth.ResourcePlayer, TeamID: existing.TeamID}) {
		return
	}
	if err := s.store.DeletePlayer(r.Context(), existing.ID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "jugador eliminado"})
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.store.ListMatches(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if matches == nil {
		matches = []league.Match{}
	}
	s.writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	match, err := s.store.GetMatch(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, match)
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	if !s.requireWrite(w, r, auth.Resource{Kind: auth.ResourceMatch}) {
		return
	}
	var in matchInput
	if !s.decode(w, r, &in) {
		return
	}
	match, err := s.store.CreateMatch(r.Context(), league.Match{
		HomeTeamID: in.HomeTeamID,
		AwayTeamID: in.AwayTeamID,
		Date:       in.Date,
		Round:      in.Round,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, match)
}

func (s *Server) handleUpdateMatch(w http.ResponseWriter, r *http.Request) {
	if !s.requireWrite(w, r, auth.Resource{Kind: auth.ResourceMatch}) {
		return
	}
	var in matchInput
	if !s.decode(w, r, &in) {
		return
	}
	match, err := s.store.UpdateMatch(r.Context(), league.Match{
		ID:         mux.Vars(r)["id"],
		HomeTeamID: in.HomeTeamID,
		AwayTeamID: in.AwayTeamID,
		Date:       in.Date,
		Round:      in.Round,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, match)
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	if !s.requireWrite(w, r, auth.Resource{Kind: auth.ResourceMatch}) {
		return
	}
	if err := s.store.DeleteMatch(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "partido eliminado"})
}

func (s *Server) handleRecordResult(w http.ResponseWriter, r *http.Request) {
	if !s.requireWrite(w, r, auth.Resource{Kind: auth.ResourceMatch}) {
		return
	}
	var sub league.ResultSubmission
	if !s.decode(w, r, &sub) {
		return
	}
	match, err := s.store.RecordResult(r.Context(), mux.Vars(r)["id"], sub)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, match)
}
