package persistence

import (
	"fmt"
	"strings"
	"time"
)

const (
	// FloorPlanKeyPrefix namespaces floor plan documents.
	FloorPlanKeyPrefix = "floorplan/"
	// DirectoryKey holds the encoded user directory.
	DirectoryKey = "directory/users"
)

// FloorPlanKey returns the document key of the plan with the given id.
func FloorPlanKey(id string) string {
	return FloorPlanKeyPrefix + id
}

// Record is one versioned document. Data is opaque to the backend; Version
// is stored alongside it so conditional writes never have to decode Data.
type Record struct {
	Key       string
	Version   int64
	Data      []byte
	UpdatedAt time.Time
}

// Validate checks that the record can be written.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Key) == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidRecord)
	}
	if r.Version <= 0 {
		return fmt.Errorf("%w: version must be positive", ErrInvalidRecord)
	}
	return nil
}

// Clone returns a copy that does not share the Data buffer.
func (r Record) Clone() Record {
	out := r
	if r.Data != nil {
		out.Data = append([]byte(nil), r.Data...)
	}
	return out
}
