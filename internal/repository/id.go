package repository

import (
	"strings"

	"github.com/google/uuid"
)

const idLength = 12

// NewRecordID returns a URL-safe identifier of 12 lowercase hex characters.
func NewRecordID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:idLength]
}
