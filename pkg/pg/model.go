package pg

import (
	"time"

	"github.com/google/uuid"
)

// Model is the base for uuid-keyed rows (tenant-level records). Row data
// keyed by autoincrement ids declares its own fields instead.
type Model struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
