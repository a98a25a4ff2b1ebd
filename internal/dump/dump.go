// Package dump persists recognition results as versioned TOML documents so a
// recognition pass never has to be repeated.
//
// Two format versions exist. v1 keys entries by hand identifier alone, so a
// retake of the same hand overwrites the earlier screenshot; that loss is
// part of the legacy format's contract. v2, the current version, keys by a
// composite of hand identifier and capture timestamp and preserves every
// screenshot distinctly. The codec writes only the current version but reads
// both, and refuses files whose version tag is missing or unknown rather
// than guessing a schema.
package dump

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"unveil/internal/handhistory"
	"unveil/internal/screenshot"
)

// Version tags a dump format revision.
type Version string

const (
	V1 Version = "v1"
	V2 Version = "v2"

	// CurrentVersion is the only version Write accepts by default.
	CurrentVersion = V2
)

var (
	// ErrMalformed marks files that are not parseable dumps or carry no
	// version tag.
	ErrMalformed = errors.New("malformed dump file")
	// ErrUnsupportedVersion marks files written by an unknown format
	// revision.
	ErrUnsupportedVersion = errors.New("unsupported dump version")
)

// Result is one screenshot's recognition output: the per-position recognized
// text, the hand identifier, and the screenshot's parsed identity.
type Result struct {
	HandID    string
	Filename  string
	TableType string
	Identity  screenshot.Identity
	Positions map[string]string
}

// Failure records a screenshot that produced no result.
type Failure struct {
	Filename string
	Reason   string
}

// WriteOptions carries dump metadata and the target format version.
type WriteOptions struct {
	Version      Version
	RunID        string
	SourceFolder string
	// SeatMappings is embedded in the file so a reader resolves positions
	// with the same mapping the writer used. Empty means the defaults.
	SeatMappings handhistory.SeatMapping
	Clock        func() time.Time
}

type fileMetadata struct {
	Version         string `toml:"version"`
	WrittenAt       string `toml:"written_at"`
	RunID           string `toml:"run_id,omitempty"`
	SourceFolder    string `toml:"source_folder,omitempty"`
	TotalSuccessful int    `toml:"total_successful"`
	TotalErrors     int    `toml:"total_errors"`
}

type fileEntry struct {
	HandID     string            `toml:"hand_id,omitempty"`
	Filename   string            `toml:"filename"`
	TableType  string            `toml:"table_type"`
	Stakes     string            `toml:"stakes,omitempty"`
	CapturedAt string            `toml:"captured_at,omitempty"`
	Positions  map[string]string `toml:"positions"`
}

type fileLayout struct {
	Metadata     fileMetadata              `toml:"metadata"`
	SeatMappings map[string]map[string]int `toml:"seat_mappings,omitempty"`
	Results      map[string]fileEntry      `toml:"results"`
	Errors       map[string]string         `toml:"errors,omitempty"`
}

// Write persists the results and failures to a timestamped TOML file under
// dir and returns the path written. The zero WriteOptions writes the current
// version.
func Write(results []Result, failures []Failure, dir string, opts WriteOptions) (string, error) {
	version := opts.Version
	if version == "" {
		version = CurrentVersion
	}
	if version != V1 && version != V2 {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}
	now := time.Now
	if opts.Clock != nil {
		now = opts.Clock
	}
	timestamp := now()

	sorted := append([]Result(nil), results...)
	sort.Slice(sorted, func(i, j int) bool {
		ti, tj := sorted[i].Identity.Timestamp(), sorted[j].Identity.Timestamp()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return sorted[i].Filename < sorted[j].Filename
	})

	entries := make(map[string]fileEntry, len(sorted))
	for _, result := range sorted {
		entry := fileEntry{
			Filename:  result.Filename,
			TableType: result.TableType,
			Positions: result.Positions,
		}
		key := result.HandID
		if version == V2 {
			entry.HandID = result.HandID
			entry.Stakes = result.Identity.Stakes()
			entry.CapturedAt = result.Identity.Timestamp().Format(time.RFC3339)
			key = compositeKey(result.HandID, result.Identity)
		}
		// In v1 a colliding hand identifier overwrites the earlier entry;
		// the later capture wins because of the sort above.
		entries[key] = entry
	}

	errorEntries := make(map[string]string, len(failures))
	for _, failure := range failures {
		errorEntries[failure.Filename] = failure.Reason
	}

	mappings := opts.SeatMappings
	if len(mappings) == 0 {
		mappings = handhistory.DefaultSeatMapping()
	}
	layout := fileLayout{
		Metadata: fileMetadata{
			Version:         string(version),
			WrittenAt:       timestamp.Format(time.RFC3339),
			RunID:           opts.RunID,
			SourceFolder:    opts.SourceFolder,
			TotalSuccessful: len(entries),
			TotalErrors:     len(errorEntries),
		},
		SeatMappings: map[string]map[string]int(mappings),
		Results:      entries,
	}
	if len(errorEntries) > 0 {
		layout.Errors = errorEntries
	}

	encoded, err := toml.Marshal(layout)
	if err != nil {
		return "", fmt.Errorf("encode dump: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure dump directory: %w", err)
	}
	path := filepath.Join(dir, "recognition_"+timestamp.Format("2006-01-02_15-04-05")+".toml")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", fmt.Errorf("write dump: %w", err)
	}
	return path, nil
}

func compositeKey(handID string, identity screenshot.Identity) string {
	if identity == (screenshot.Identity{}) {
		return handID
	}
	return handID + "_" + identity.SortKey()
}

// Read loads a dump of any supported version and normalizes it to
// hand-identifier grouping: hand id -> seat number -> recognized name.
// Composite v2 keys are collapsed onto their hand identifier; seat entries
// from every contributing screenshot are preserved, with later captures
// winning a direct seat conflict. Position labels resolve to seats through
// the mapping embedded in the file, falling back to the built-in defaults.
func Read(path string) (map[string]map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dump %s: %w", path, err)
	}

	var layout fileLayout
	if err := toml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	version := Version(strings.TrimSpace(layout.Metadata.Version))
	switch version {
	case V1, V2:
	case "":
		return nil, fmt.Errorf("%w: %s: missing version tag", ErrMalformed, path)
	default:
		return nil, fmt.Errorf("%w: %q in %s", ErrUnsupportedVersion, version, path)
	}

	mapping := handhistory.SeatMapping(layout.SeatMappings)
	if len(mapping) == 0 {
		mapping = handhistory.DefaultSeatMapping()
	}

	keys := make([]string, 0, len(layout.Results))
	for key := range layout.Results {
		keys = append(keys, key)
	}
	// Order retakes by their capture instant so the latest one wins a seat
	// conflict. The key itself is no substitute for the captured_at field:
	// dumps written before the composite key moved to the 24-hour clock sort
	// "03-15_PM" ahead of "09-39_AM".
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := layout.Results[keys[i]].CapturedAt, layout.Results[keys[j]].CapturedAt
		if ci != cj {
			return ci < cj
		}
		return keys[i] < keys[j]
	})

	grouped := make(map[string]map[int]string)
	for _, key := range keys {
		entry := layout.Results[key]
		handID := entry.HandID
		if handID == "" {
			handID = handIDFromKey(key, version)
		}
		seats := handhistory.PositionToSeat(entry.Positions, entry.TableType, mapping)
		if grouped[handID] == nil {
			grouped[handID] = make(map[int]string, len(seats))
		}
		for seat, name := range seats {
			grouped[handID][seat] = name
		}
	}
	return grouped, nil
}

func handIDFromKey(key string, version Version) string {
	if version == V1 {
		return key
	}
	if idx := strings.IndexByte(key, '_'); idx > 0 {
		return key[:idx]
	}
	return key
}
