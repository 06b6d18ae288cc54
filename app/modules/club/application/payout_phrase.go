package clubservice

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
)

// PayoutPhraseParser turns a natural-language first-payout phrase ("two weeks
// after start") into a payout interval. Phrases are parsed relative to the
// club's start time, so "after start" style suffixes collapse into the base
// time and the remainder reads as a deadline.
type PayoutPhraseParser struct {
	w *when.Parser
}

// NewPayoutPhraseParser creates a parser with the English rule set.
func NewPayoutPhraseParser() *PayoutPhraseParser {
	w := when.New(nil)
	w.Add(en.All...)
	return &PayoutPhraseParser{w: w}
}

// Parse resolves phrase against start and returns the interval between them.
// The phrase must land strictly after the start time.
func (p *PayoutPhraseParser) Parse(phrase string, start time.Time) (time.Duration, error) {
	normalized := strings.ToLower(strings.TrimSpace(phrase))
	if normalized == "" {
		return 0, fmt.Errorf("payout phrase is empty")
	}

	// "two weeks after start" reads as the deadline "in two weeks" once the
	// base time is the start time itself.
	normalized = strings.ReplaceAll(normalized, "after the start", "")
	normalized = strings.ReplaceAll(normalized, "after start", "")
	normalized = strings.TrimSpace(normalized)
	if !strings.HasPrefix(normalized, "in ") && !strings.HasPrefix(normalized, "within ") {
		normalized = "in " + normalized
	}

	r, err := p.w.Parse(normalized, start)
	if err != nil {
		return 0, fmt.Errorf("could not parse payout phrase %q: %w", phrase, err)
	}
	if r == nil {
		return 0, fmt.Errorf("could not recognize payout phrase: %s", phrase)
	}

	interval := r.Time.Sub(start)
	if interval <= 0 {
		return 0, fmt.Errorf("payout phrase %q does not land after the start time", phrase)
	}
	return interval, nil
}
