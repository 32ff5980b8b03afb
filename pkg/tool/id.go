// Package tool holds small helpers shared across services.
package tool

import "github.com/google/uuid"

// GenerateUUIDV7 returns a time-ordered UUID, used for payment and audit row
// ids and for trace ids minted at the HTTP edge.
func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}
