package store

import (
	"context"
	"fmt"
	"strings"
)

const externalSuffix = " (ext v"

// TriggerExternalMutation simulates another editor committing a change: it
// bumps the version of the latest plan and renames its first room. It
// retries when it loses a race with a concurrent commit.
func (s *Store) TriggerExternalMutation(ctx context.Context) (CommitResult, error) {
	const attempts = 3

	var result CommitResult
	for i := 0; i < attempts; i++ {
		latest, err := s.Fetch(ctx)
		if err != nil {
			return CommitResult{}, err
		}

		next := latest.Clone()
		next.Touch(latest.Version+1, s.now())
		if len(next.Rooms) > 0 {
			room := &next.Rooms[0]
			base, _, _ := strings.Cut(room.Name, externalSuffix)
			room.Name = fmt.Sprintf("%s%s%d)", base, externalSuffix, next.Version)
		}

		result, err = s.Commit(ctx, next)
		if err != nil {
			return CommitResult{}, err
		}
		if result.Committed {
			s.loggerFor(ctx, "TriggerExternalMutation").InfoContext(ctx, "external mutation committed", "version", next.Version)
			return result, nil
		}
	}
	return result, nil
}
