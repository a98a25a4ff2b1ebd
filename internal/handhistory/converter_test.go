package handhistory_test

import (
	"strings"
	"testing"

	"unveil/internal/handhistory"
)

func TestConvertReplacesEveryOccurrence(t *testing.T) {
	hand, ok := handhistory.ParseHand(sampleHand)
	if !ok {
		t.Fatal("expected hand to parse")
	}

	outcome := handhistory.Convert(hand, map[int]string{1: "Alice", 4: "Bob"})
	if !outcome.Success {
		t.Fatalf("expected success, got reason %q", outcome.Reason)
	}
	if strings.Contains(outcome.ConvertedText, "b3f8e036") {
		t.Fatal("expected every occurrence of b3f8e036 to be replaced")
	}
	if strings.Contains(outcome.ConvertedText, "91ac02d7") {
		t.Fatal("expected every occurrence of 91ac02d7 to be replaced")
	}
	if got := strings.Count(outcome.ConvertedText, "Alice"); got != 2 {
		t.Fatalf("expected Alice in seat line and action line, found %d occurrences", got)
	}
	if outcome.Substitutions["b3f8e036"] != "Alice" || outcome.Substitutions["91ac02d7"] != "Bob" {
		t.Fatalf("unexpected substitution set: %v", outcome.Substitutions)
	}
	if outcome.OriginalText != sampleHand {
		t.Fatal("original text must be preserved on the outcome")
	}
}

func TestConvertNeverRewritesHero(t *testing.T) {
	hand, ok := handhistory.ParseHand(sampleHand)
	if !ok {
		t.Fatal("expected hand to parse")
	}

	outcome := handhistory.Convert(hand, map[int]string{2: "NotTheHero"})
	if strings.Contains(outcome.ConvertedText, "NotTheHero") {
		t.Fatal("hero name must never be replaced")
	}
	if !strings.Contains(outcome.ConvertedText, "Hero") {
		t.Fatal("hero marker must survive conversion")
	}
	if len(outcome.Substitutions) != 0 {
		t.Fatalf("expected no substitutions, got %v", outcome.Substitutions)
	}
}

func TestConvertSkipsEmptySeatIdentity(t *testing.T) {
	hand, ok := handhistory.ParseHand(sampleHand)
	if !ok {
		t.Fatal("expected hand to parse")
	}

	outcome := handhistory.Convert(hand, map[int]string{1: handhistory.EmptySeat, 4: ""})
	if outcome.ConvertedText != hand.RawText {
		t.Fatal("empty-seat identities must not rewrite anything")
	}
	if len(outcome.Substitutions) != 0 {
		t.Fatalf("expected no substitutions, got %v", outcome.Substitutions)
	}
}

func TestConvertNoOpRewriteIsNotRecorded(t *testing.T) {
	hand, ok := handhistory.ParseHand(sampleHand)
	if !ok {
		t.Fatal("expected hand to parse")
	}

	// Identity equals the opaque id: the text cannot change.
	outcome := handhistory.Convert(hand, map[int]string{1: "b3f8e036"})
	if outcome.ConvertedText != hand.RawText {
		t.Fatal("no-op rewrite must leave the text unchanged")
	}
	if len(outcome.Substitutions) != 0 {
		t.Fatalf("unchanged text must not record a substitution, got %v", outcome.Substitutions)
	}
}

func TestConvertIsWordBounded(t *testing.T) {
	block := `Poker Hand #OM9: Omaha Pot Limit ($2/$5) - 2024/02/08 09:39:12
Table 'PLOGold03' 6-max Seat #1 is the button
Seat 1: ab12 ($10 in chips)
ab12: folds
ab123 is not this player`
	hand, ok := handhistory.ParseHand(block)
	if !ok {
		t.Fatal("expected hand to parse")
	}

	outcome := handhistory.Convert(hand, map[int]string{1: "Carol"})
	if !strings.Contains(outcome.ConvertedText, "ab123 is not this player") {
		t.Fatal("replacement must not touch longer tokens sharing a prefix")
	}
	if strings.Contains(outcome.ConvertedText, "ab12:") {
		t.Fatal("expected the exact token to be replaced")
	}
}

func TestConvertAll(t *testing.T) {
	matched := `Poker Hand #OM1: Omaha Pot Limit ($2/$5) - 2024/02/08 09:39:12
Table 'PLOGold03' 6-max Seat #1 is the button
Seat 1: aaaa1111 ($10 in chips)
Seat 2: bbbb2222 ($20 in chips)
aaaa1111: folds
bbbb2222: checks`
	unmatched := `Poker Hand #OM2: Omaha Pot Limit ($2/$5) - 2024/02/08 10:00:00
Table 'PLOGold03' 6-max Seat #1 is the button
Seat 1: cccc3333 ($30 in chips)`

	first, ok := handhistory.ParseHand(matched)
	if !ok {
		t.Fatal("expected first hand to parse")
	}
	second, ok := handhistory.ParseHand(unmatched)
	if !ok {
		t.Fatal("expected second hand to parse")
	}

	lookup := map[string]map[int]string{
		"OM1": {1: "Alice", 2: "Bob"},
	}
	outcomes := handhistory.ConvertAll([]*handhistory.Hand{first, second}, lookup)
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	if !outcomes[0].Success || len(outcomes[0].Substitutions) == 0 {
		t.Fatalf("expected OM1 to convert with substitutions, got %+v", outcomes[0])
	}
	if outcomes[1].Success {
		t.Fatal("expected OM2 to fail")
	}
	if outcomes[1].Reason != handhistory.ErrNoRecognitionData {
		t.Fatalf("unexpected reason: %q", outcomes[1].Reason)
	}
	if outcomes[1].OriginalText != unmatched {
		t.Fatal("failed outcome must preserve the original text unmodified")
	}

	summary := handhistory.Summarize(outcomes)
	if summary.Converted != 1 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
