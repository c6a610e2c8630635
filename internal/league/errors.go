package league

import (
	"errors"
	"fmt"
)

var (
	ErrTeamNotFound   = errors.New("equipo no encontrado")
	ErrPlayerNotFound = errors.New("jugador no encontrado")
	ErrMatchNotFound  = errors.New("partido no encontrado")

	// ErrDuplicateTeamName signals a unique-name violation on team creation.
	ErrDuplicateTeamName = errors.New("ya existe un equipo con ese nombre")

	// ErrStoreUnavailable wraps transient I/O failures talking to the backing
	// store. Callers may retry the whole operation; nothing retries here.
	ErrStoreUnavailable = errors.New("almacenamiento no disponible")
)

// ValidationError reports malformed input detected before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación: %s %s", e.Field, e.Reason)
}

// ReferentialError reports an event or record referencing an unknown entity.
type ReferentialError struct {
	Kind string
	ID   string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("referencia inválida: %s %q", e.Kind, e.ID)
}
