package handhistory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// SeatMapping translates recognized region labels into hand-history seat
// numbers, per table type. It is read-only configuration; the pipeline never
// writes it.
type SeatMapping map[string]map[string]int

// DefaultSeatMapping returns the built-in mappings for the supported clients.
func DefaultSeatMapping() SeatMapping {
	return SeatMapping{
		"ggpoker": {
			"bottom":       1,
			"bottom_left":  2,
			"top_left":     3,
			"top":          4,
			"top_right":    5,
			"bottom_right": 6,
		},
		"natural8": {
			"bottom":    1,
			"left":      2,
			"top_left":  3,
			"top_right": 5,
			"right":     6,
		},
	}
}

type seatMappingFile struct {
	Tables map[string]map[string]int `toml:"tables"`
}

// LoadSeatMapping reads a seat-mapping TOML file. A missing file falls back
// to the defaults; a present but malformed file is an error.
func LoadSeatMapping(path string) (SeatMapping, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSeatMapping(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seat mapping %s: %w", path, err)
	}

	var parsed seatMappingFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse seat mapping %s: %w", path, err)
	}
	if len(parsed.Tables) == 0 {
		return DefaultSeatMapping(), nil
	}
	return SeatMapping(parsed.Tables), nil
}

// PositionToSeat resolves recognized position labels to seat numbers using
// the mapping for the given table type. Positions absent from the mapping
// are ignored, not errors.
func PositionToSeat(positions map[string]string, tableType string, mapping SeatMapping) map[int]string {
	if mapping == nil {
		mapping = DefaultSeatMapping()
	}
	byPosition := mapping[tableType]
	result := make(map[int]string, len(positions))
	for position, name := range positions {
		seat, ok := byPosition[position]
		if !ok {
			continue
		}
		result[seat] = name
	}
	return result
}
