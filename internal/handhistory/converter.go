package handhistory

import (
	"regexp"
)

// Names that are never rewritten: the hero marker the client uses for the
// logged-in player, and the marker recognition emits for an empty seat.
const (
	HeroName  = "Hero"
	EmptySeat = "EMPTY"
)

// ErrNoRecognitionData is the outcome reason for hands whose identifier has
// no entry in the recognition lookup.
const ErrNoRecognitionData = "no matching recognition data"

// Outcome records the result of converting one hand. ConvertedText is set
// only on success; Reason only on failure. Substitutions holds every
// opaque-id -> identity rewrite that actually changed the text.
type Outcome struct {
	HandID        string
	Success       bool
	OriginalText  string
	ConvertedText string
	Reason        string
	Substitutions map[string]string
}

// Convert rewrites every verbatim occurrence of each seat's opaque
// identifier with the recognized identity from seatNames. Replacement is
// global and word-bounded so partial matches inside longer tokens are left
// alone. Hero and empty-seat markers pass through untouched.
func Convert(hand *Hand, seatNames map[int]string) Outcome {
	text := hand.RawText
	substitutions := make(map[string]string)

	for seat, opaqueID := range hand.Seats {
		if opaqueID == HeroName {
			continue
		}
		identity, ok := seatNames[seat]
		if !ok || identity == "" || identity == EmptySeat {
			continue
		}
		pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(opaqueID) + `\b`)
		rewritten := pattern.ReplaceAllLiteralString(text, identity)
		if rewritten != text {
			substitutions[opaqueID] = identity
			text = rewritten
		}
	}

	return Outcome{
		HandID:        hand.HandID,
		Success:       true,
		OriginalText:  hand.RawText,
		ConvertedText: text,
		Substitutions: substitutions,
	}
}

// ConvertAll converts each hand using the per-hand seat lookup. Hands absent
// from the lookup are never dropped: they yield a failed outcome carrying the
// unmodified original text.
func ConvertAll(hands []*Hand, lookup map[string]map[int]string) []Outcome {
	outcomes := make([]Outcome, 0, len(hands))
	for _, hand := range hands {
		seatNames, ok := lookup[hand.HandID]
		if !ok {
			outcomes = append(outcomes, Outcome{
				HandID:       hand.HandID,
				OriginalText: hand.RawText,
				Reason:       ErrNoRecognitionData,
			})
			continue
		}
		outcomes = append(outcomes, Convert(hand, seatNames))
	}
	return outcomes
}

// Summary tallies outcome counts for reporting.
type Summary struct {
	Converted int
	Skipped   int
}

// Summarize counts successful and failed outcomes.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, outcome := range outcomes {
		if outcome.Success {
			s.Converted++
		} else {
			s.Skipped++
		}
	}
	return s
}
