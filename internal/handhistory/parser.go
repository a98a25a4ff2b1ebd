// Package handhistory parses GGPoker hand-history text and rewrites the
// anonymized player identifiers with recognized names.
package handhistory

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	handHeaderPattern = regexp.MustCompile(`^Poker Hand #(OM\d+): .+ - (\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2})$`)
	tablePattern      = regexp.MustCompile(`^Table '([^']+)' (\d+)-max Seat #\d+ is the button$`)
	seatPattern       = regexp.MustCompile(`^Seat (\d+): (.+) \(\$[\d,.]+ in chips\)$`)
	blockBoundary     = regexp.MustCompile(`\n{2,}Poker Hand #`)
)

// Hand is one parsed hand-history block. RawText is the verbatim input span,
// byte for byte, so exact-string substitution stays correct.
type Hand struct {
	HandID    string
	TableName string
	MaxSeats  int
	Timestamp time.Time
	Seats     map[int]string
	RawText   string
}

// PlayerAt returns the displayed name at the given seat, or "".
func (h *Hand) PlayerAt(seat int) string {
	return h.Seats[seat]
}

// SeatOf returns the seat holding the given displayed name, or 0.
func (h *Hand) SeatOf(name string) int {
	for seat, occupant := range h.Seats {
		if occupant == name {
			return seat
		}
	}
	return 0
}

// ParseHand parses a single hand block. The second return is false when the
// block is missing the header or table line; a block never yields a partial
// record. Seat lines are order-independent; if the source repeats a seat
// number the later occurrence wins.
func ParseHand(text string) (*Hand, bool) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 0 {
		return nil, false
	}

	header := handHeaderPattern.FindStringSubmatch(lines[0])
	if header == nil {
		return nil, false
	}
	timestamp, err := time.Parse("2006/01/02 15:04:05", header[2])
	if err != nil {
		return nil, false
	}

	hand := &Hand{
		HandID:    header[1],
		Timestamp: timestamp,
		Seats:     make(map[int]string),
		RawText:   text,
	}

	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "*** ") {
			break
		}
		if match := tablePattern.FindStringSubmatch(line); match != nil {
			hand.TableName = match[1]
			hand.MaxSeats, _ = strconv.Atoi(match[2])
			continue
		}
		if match := seatPattern.FindStringSubmatch(line); match != nil {
			seat, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			hand.Seats[seat] = match[2]
		}
	}

	if hand.TableName == "" {
		return nil, false
	}
	return hand, true
}

// ParseFile splits a hand-history file into blocks and parses each one.
// Blocks that fail to parse are omitted; a missing or unreadable file is an
// error.
func ParseFile(path string) ([]*Hand, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hand history %s: %w", path, err)
	}

	var hands []*Hand
	for _, block := range splitBlocks(string(content)) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if hand, ok := ParseHand(block); ok {
			hands = append(hands, hand)
		}
	}
	return hands, nil
}

// splitBlocks cuts the file at every blank-line run that precedes a hand
// header, keeping the header with the block it opens. RE2 has no lookahead,
// so the boundary match re-extends over the header prefix.
func splitBlocks(content string) []string {
	const headerPrefix = "Poker Hand #"
	var blocks []string
	start := 0
	for _, loc := range blockBoundary.FindAllStringIndex(content, -1) {
		if loc[0] < start {
			continue
		}
		blocks = append(blocks, content[start:loc[0]])
		start = loc[1] - len(headerPrefix)
	}
	blocks = append(blocks, content[start:])
	return blocks
}

// FindHand returns the hand with the given identifier, or nil.
func FindHand(hands []*Hand, handID string) *Hand {
	for _, hand := range hands {
		if hand.HandID == handID {
			return hand
		}
	}
	return nil
}
