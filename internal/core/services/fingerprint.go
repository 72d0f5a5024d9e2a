package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

// Fingerprint summarises a record set by (id, path, modification time, size).
// Equal record sets give equal fingerprints regardless of input order.
func Fingerprint(records []domain.SourceRecord) string {
	sorted := make([]domain.SourceRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ID != sorted[j].ID {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Path < sorted[j].Path
	})

	h := sha256.New()
	for _, rec := range sorted {
		fmt.Fprintf(h, "%s\x00%s\x00%d\x00%d\n", rec.ID, rec.Path, rec.ModTime.UnixNano(), rec.Size)
	}
	return hex.EncodeToString(h.Sum(nil))
}
