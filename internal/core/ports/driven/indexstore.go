package driven

import (
	"context"

	"github.com/agora-labs/agora-cli/internal/core/domain"
)

// IndexStore persists the vector table as one serialized blob.
// Durability is best-effort: the in-memory table remains authoritative for
// the running process, and save failures are logged and swallowed by the
// index service.
type IndexStore interface {
	// Save replaces the persisted blob with the given records.
	// Implementations must not corrupt the previous blob on a failed
	// write (write-to-temp-then-rename or equivalent).
	Save(ctx context.Context, records []domain.VectorRecord) error

	// Load reads the persisted records. A missing blob yields an empty
	// slice; an unparseable blob yields an error wrapping
	// domain.ErrIndexCorrupt so the caller can start fresh.
	Load(ctx context.Context) ([]domain.VectorRecord, error)
}
