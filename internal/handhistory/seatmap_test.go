package handhistory_test

import (
	"os"
	"path/filepath"
	"testing"

	"unveil/internal/handhistory"
)

func TestPositionToSeatDefaults(t *testing.T) {
	positions := map[string]string{
		"bottom":    "Alice",
		"top_left":  "Bob",
		"top_right": "EMPTY",
		"unknown":   "Ghost",
	}
	seats := handhistory.PositionToSeat(positions, "ggpoker", nil)
	if seats[1] != "Alice" {
		t.Fatalf("expected bottom to map to seat 1, got %v", seats)
	}
	if seats[3] != "Bob" {
		t.Fatalf("expected top_left to map to seat 3, got %v", seats)
	}
	if seats[5] != "EMPTY" {
		t.Fatalf("expected top_right to map to seat 5, got %v", seats)
	}
	if _, ok := seats[0]; ok {
		t.Fatal("unknown positions must be ignored")
	}
	if len(seats) != 3 {
		t.Fatalf("expected 3 mapped seats, got %v", seats)
	}
}

func TestPositionToSeatPerTableType(t *testing.T) {
	positions := map[string]string{"left": "Carol", "right": "Dave"}

	ggpoker := handhistory.PositionToSeat(positions, "ggpoker", nil)
	if len(ggpoker) != 0 {
		t.Fatalf("ggpoker has no left/right positions, got %v", ggpoker)
	}

	natural8 := handhistory.PositionToSeat(positions, "natural8", nil)
	if natural8[2] != "Carol" || natural8[6] != "Dave" {
		t.Fatalf("unexpected natural8 mapping: %v", natural8)
	}
}

func TestLoadSeatMappingMissingFileFallsBack(t *testing.T) {
	mapping, err := handhistory.LoadSeatMapping(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadSeatMapping returned error: %v", err)
	}
	if mapping["ggpoker"]["bottom"] != 1 {
		t.Fatalf("expected default mapping, got %v", mapping)
	}
}

func TestLoadSeatMappingFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seats.toml")
	content := "[tables.custom]\ncenter = 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	mapping, err := handhistory.LoadSeatMapping(path)
	if err != nil {
		t.Fatalf("LoadSeatMapping returned error: %v", err)
	}
	if mapping["custom"]["center"] != 3 {
		t.Fatalf("expected custom mapping, got %v", mapping)
	}
}

func TestLoadSeatMappingMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seats.toml")
	if err := os.WriteFile(path, []byte("tables = ["), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := handhistory.LoadSeatMapping(path); err == nil {
		t.Fatal("expected malformed mapping to error")
	}
}
