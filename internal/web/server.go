package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/MatiMita/Futnova/internal/auth"
	"github.com/MatiMita/Futnova/internal/league"
	"github.com/MatiMita/Futnova/internal/store"
)

// Server exposes the league over a REST API. All statistics endpoints are
// public reads; mutations go through the access policy.
type Server struct {
	store      store.Store
	recomputer store.StandingsRecomputer
	validate   *validator.Validate
	jwtSecret  []byte
	log        zerolog.Logger
}

func NewServer(st store.Store, jwtSecret []byte, log zerolog.Logger) *Server {
	s := &Server{
		store:     st,
		validate:  validator.New(),
		jwtSecret: jwtSecret,
		log:       log,
	}
	if r, ok := st.(store.StandingsRecomputer); ok {
		s.recomputer = r
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestLogger)
	r.Use(s.authenticate)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/equipos", s.handleListTeams).Methods("GET")
	api.HandleFunc("/equipos", s.handleCreateTeam).Methods("POST")
	api.HandleFunc("/equipos/{id}", s.handleGetTeam).Methods("GET")
	api.HandleFunc("/equipos/{id}", s.handleUpdateTeam).Methods("PUT")
	api.HandleFunc("/equipos/{id}", s.handleDeleteTeam).Methods("DELETE")

	api.HandleFunc("/jugadores", s.handleListPlayers).Methods("GET")
	api.HandleFunc("/jugadores", s.handleCreatePlayer).Methods("POST")
	api.HandleFunc("/jugadores/{id}", s.handleGetPlayer).Methods("GET")
	api.HandleFunc("/jugadores/{id}", s.handleUpdatePlayer).Methods("PUT")
	api.HandleFunc("/jugadores/{id}", s.handleDeletePlayer).Methods("DELETE")

	api.HandleFunc("/partidos", s.handleListMatches).Methods("GET")
	api.HandleFunc("/partidos", s.handleCreateMatch).Methods("POST")
	api.HandleFunc("/partidos/{id}", s.handleGetMatch).Methods("GET")
	api.HandleFunc("/partidos/{id}", s.handleUpdateMatch).Methods("PUT")
	api.HandleFunc("/partidos/{id}", s.handleDeleteMatch).Methods("DELETE")
	api.HandleFunc("/partidos/{id}/resultado", s.handleRecordResult).Methods("PUT")

	api.HandleFunc("/estadisticas/posiciones", s.handleStandings).Methods("GET")
	api.HandleFunc("/estadisticas/goleadores", s.handleTopScorers).Methods("GET")
	api.HandleFunc("/estadisticas/tarjetas", s.handleCardTable).Methods("GET")
	api.HandleFunc("/estadisticas/porteros", s.handleKeeperTable).Methods("GET")
	api.HandleFunc("/estadisticas/posiciones/recalcular", s.handleRecompute).Methods("POST")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	return r
}

type contextKey string

const userKey contextKey = "user"

// authenticate decodes the bearer token when present. Endpoints that require
// a role check for the user themselves; public reads ignore it.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		user, err := auth.ParseToken(s.jwtSecret, token)
		if err != nil {
			s.writeJSON(w, http.StatusUnauthorized, errorBody("token inválido"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func currentUser(r *http.Request) (auth.User, bool) {
	u, ok := r.Context().Value(userKey).(auth.User)
	return u, ok
}

// requireWrite resolves the caller and runs the capability check for the
// given resource. It writes the response itself on failure.
func (s *Server) requireWrite(w http.ResponseWriter, r *http.Request, res auth.Resource) bool {
	user, ok := currentUser(r)
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, errorBody("autenticación requerida"))
		return false
	}
	if !auth.CanWrite(user, res) {
		s.writeJSON(w, http.StatusForbidden, errorBody("operación no permitida"))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			s.log.Error().Err(err).Msg("encoding response")
		}
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var valErr *league.ValidationError
	var refErr *league.ReferentialError
	switch {
	case errors.Is(err, league.ErrTeamNotFound),
		errors.Is(err, league.ErrPlayerNotFound),
		errors.Is(err, league.ErrMatchNotFound):
		s.writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.As(err, &valErr), errors.As(err, &refErr):
		s.writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, league.ErrDuplicateTeamName):
		s.writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, league.ErrStoreUnavailable):
		s.writeJSON(w, http.StatusServiceUnavailable, errorBody("almacenamiento no disponible"))
	default:
		s.log.Error().Err(err).Msg("internal error")
		s.writeJSON(w, http.StatusInternalServerError, errorBody("error interno"))
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("cuerpo JSON inválido"))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}
