package gamestate

import "github.com/rotisserie/eris"

var (
	ErrKeyNotFound = eris.New("key not found")
	ErrNoSnapshot  = eris.New("no snapshot saved")

	// ErrComponentSchemaMismatch is returned when the schema stored with a
	// snapshot does not match the schema of the component registered under
	// the same name.
	ErrComponentSchemaMismatch = eris.New("saved component schema does not match the registered component")
)
