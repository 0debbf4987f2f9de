package util

import (
	"time"

	"github.com/google/uuid"
)

// NewID gera um UUID v4 para identidades anônimas e ids de token.
func NewID() string {
	return uuid.NewString()
}

// Now devolve o instante atual em UTC.
func Now() time.Time {
	return time.Now().UTC()
}
