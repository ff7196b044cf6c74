// Package id provides unique identifier generation for lessons.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Generate creates a new unique lesson ID.
// Format: lesson-<timestamp>-<random>
// Example: lesson-1701432000-a1b2c3d4
func Generate() string {
	timestamp := time.Now().Unix()
	random := make([]byte, 4)
	if _, err := rand.Read(random); err != nil {
		// Fallback to timestamp only if crypto/rand fails
		return fmt.Sprintf("lesson-%d", timestamp)
	}
	return fmt.Sprintf("lesson-%d-%s", timestamp, hex.EncodeToString(random))
}
