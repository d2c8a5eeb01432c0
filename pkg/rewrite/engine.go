package rewrite

import (
	"fmt"
	"strings"

	"github.com/tonedown/tonedown/pkg/domain"
)

// Tone selects the wrapping template applied after softening.
type Tone string

// Recognized tones.
const (
	ToneProfessional Tone = "professional"
	ToneCalm         Tone = "calm"
	ToneFriendly     Tone = "friendly"
	ToneShort        Tone = "short"
)

// shortExcerptLimit bounds the excerpt for the short tone when the text has
// no sentence terminator.
const shortExcerptLimit = 100

// ParseTone validates a wire-level tone string.
func ParseTone(s string) (Tone, error) {
	switch Tone(s) {
	case ToneProfessional, ToneCalm, ToneFriendly, ToneShort:
		return Tone(s), nil
	default:
		return "", fmt.Errorf("%w: unknown tone %q", domain.ErrInvalidInput, s)
	}
}

// Result is the outcome of a rewrite operation.
type Result struct {
	Rewritten string
	Tone      Tone
}

// Engine applies the softening rule table followed by a tone template. It is
// immutable after construction and safe for concurrent use; Rewrite is a pure
// function of its inputs.
type Engine struct {
	rules []compiledRule
}

// NewEngine compiles the supplied rule table. Passing nil uses DefaultRules.
func NewEngine(rules []Rule) (*Engine, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// Rewrite softens the text and wraps it in the template for the given tone.
func (e *Engine) Rewrite(text string, tone Tone) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	}

	wrap, ok := toneWrappers[tone]
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown tone %q", domain.ErrInvalidInput, tone)
	}

	return Result{Rewritten: wrap(e.Soften(text)), Tone: tone}, nil
}

// Soften applies every substitution rule in table order. Each rule performs a
// global case-insensitive whole-word replacement over the running text, so
// later rules operate on the output of earlier ones.
func (e *Engine) Soften(text string) string {
	for _, rule := range e.rules {
		text = rule.expr.ReplaceAllString(text, rule.replacement)
	}
	return text
}

// toneWrappers maps each tone to its template. Every template first collapses
// internal whitespace, trims, and ASCII-capitalizes the first letter of the
// softened text.
var toneWrappers = map[Tone]func(string) string{
	ToneProfessional: func(s string) string {
		return "I'd like to share some feedback: " + capitalize(normalize(s)) + " Let's work together on improving this."
	},
	ToneCalm: func(s string) string {
		return "I understand where you're coming from. " + capitalize(normalize(s)) + " Can we talk this through later?"
	},
	ToneFriendly: func(s string) string {
		return "Hey there! " + capitalize(normalize(s)) + " Would love to hear your thoughts 🙂"
	},
	ToneShort: func(s string) string {
		return "Quick note: " + firstSentence(capitalize(normalize(s))) + " Let's discuss."
	},
}

// normalize collapses runs of whitespace to single spaces and trims the ends.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// capitalize upper-cases a leading ASCII letter. Casing is intentionally
// ASCII-only so output never depends on locale.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}

// firstSentence returns the text through the first sentence terminator, or
// the first 100 characters when no terminator exists.
func firstSentence(s string) string {
	if i := strings.IndexAny(s, ".!?"); i >= 0 {
		return s[:i+1]
	}
	runes := []rune(s)
	if len(runes) > shortExcerptLimit {
		return string(runes[:shortExcerptLimit])
	}
	return s
}
