// README: Opaque entity identifier shared by all modules.
package types

import "github.com/google/uuid"

type ID string

// NewID returns a random ID. IDs are opaque; callers must not parse them.
func NewID() ID {
	return ID(uuid.NewString())
}
