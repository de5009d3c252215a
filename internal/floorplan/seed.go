package floorplan

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// InitialVersion is the version a freshly seeded plan starts at.
const InitialVersion int64 = 1

type seedDocument struct {
	ID     string     `yaml:"id"`
	Floors []Floor    `yaml:"floors"`
	Rooms  []seedRoom `yaml:"rooms"`
}

type seedRoom struct {
	ID                 string    `yaml:"id"`
	Floor              string    `yaml:"floor"`
	Name               string    `yaml:"name"`
	Capacity           int       `yaml:"capacity"`
	Category           Category  `yaml:"category"`
	Features           []string  `yaml:"features"`
	OccupancyThreshold *int      `yaml:"occupancy_threshold"`
	Placement          Placement `yaml:"placement"`
	Popularity         int       `yaml:"popularity"`
}

// Seed produces the initial plan written to an empty backend.
type Seed func(now time.Time) FloorPlan

// DefaultSeed returns the embedded two-floor office layout.
func DefaultSeed() (Seed, error) {
	return parseSeed(defaultSeed)
}

// LoadSeed parses a YAML seed document.
func LoadSeed(r io.Reader) (Seed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return parseSeed(data)
}

// LoadSeedFile parses the YAML seed document at path. An empty path selects
// the embedded default.
func LoadSeedFile(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed %s: %w", path, err)
	}
	defer f.Close()
	return LoadSeed(f)
}

func parseSeed(data []byte) (Seed, error) {
	var doc seedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	plan := FloorPlan{
		ID:     doc.ID,
		Floors: doc.Floors,
		Rooms:  make([]Room, 0, len(doc.Rooms)),
	}
	for _, r := range doc.Rooms {
		plan.Rooms = append(plan.Rooms, Room{
			ID:                 r.ID,
			FloorID:            r.Floor,
			Name:               r.Name,
			Capacity:           r.Capacity,
			Category:           r.Category,
			Features:           r.Features,
			OccupancyThreshold: r.OccupancyThreshold,
			Placement:          r.Placement,
			Popularity:         r.Popularity,
		})
	}
	if problems := plan.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("seed is invalid: %v", problems)
	}

	return func(now time.Time) FloorPlan {
		out := plan.Clone()
		out.Touch(InitialVersion, now)
		return out
	}, nil
}
