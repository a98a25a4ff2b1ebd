// Package screenshot decodes the structured filenames the capture tool
// assigns to table screenshots.
//
// A capture is named like "2024-02-08_ 09-39_AM_$2_$5_#154753304.png": date,
// 12-hour time with AM/PM, small and big blind, and the numeric table id.
// The literal space after the first underscore is part of the format.
package screenshot

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var filenamePattern = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2})_ (\d{2}-\d{2})_(AM|PM)_\$(\d+(?:\.\d+)?)_\$(\d+(?:\.\d+)?)_#(\d+)\.png$`,
)

// Identity captures every field encoded in a screenshot filename. Values are
// only produced fully populated; a filename that fails any part of the
// grammar yields no Identity at all.
type Identity struct {
	Date       string
	Time       string
	Period     string
	SmallBlind float64
	BigBlind   float64
	TableID    int64
}

// Parse decodes the filename (or path; only the base name is considered) into
// an Identity. The second return is false when the name does not match the
// capture grammar.
func Parse(name string) (Identity, bool) {
	match := filenamePattern.FindStringSubmatch(filepath.Base(name))
	if match == nil {
		return Identity{}, false
	}
	smallBlind, err := strconv.ParseFloat(match[4], 64)
	if err != nil {
		return Identity{}, false
	}
	bigBlind, err := strconv.ParseFloat(match[5], 64)
	if err != nil {
		return Identity{}, false
	}
	tableID, err := strconv.ParseInt(match[6], 10, 64)
	if err != nil {
		return Identity{}, false
	}
	return Identity{
		Date:       match[1],
		Time:       match[2],
		Period:     match[3],
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		TableID:    tableID,
	}, true
}

// IsValid reports whether the filename matches the capture grammar.
func IsValid(name string) bool {
	_, ok := Parse(name)
	return ok
}

// Stakes formats the blinds as "$2/$5". Whole-number blinds drop the decimal
// part; fractional blinds keep two digits ("$0.50/$1").
func (id Identity) Stakes() string {
	return "$" + formatBlind(id.SmallBlind) + "/$" + formatBlind(id.BigBlind)
}

func formatBlind(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// Timestamp combines the date, time, and period into a wall-clock timestamp,
// normalizing the 12-hour clock to 24-hour (09-39 AM -> 09:39, 03-15 PM ->
// 15:15). The zero time is returned if the stored fields do not form a valid
// instant; Parse never produces such an Identity.
func (id Identity) Timestamp() time.Time {
	value := id.Date + " " + strings.ReplaceAll(id.Time, "-", ":") + " " + id.Period
	ts, err := time.Parse("2006-01-02 03:04 PM", value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// SortKey renders the capture instant on the 24-hour clock so lexical order
// matches chronological order. The raw Time field cannot serve here because
// "03-15_PM" sorts before "09-39_AM" while being the later capture.
func (id Identity) SortKey() string {
	return id.Timestamp().Format("2006-01-02_15-04")
}
