package service

import (
	"strings"

	"github.com/noah-isme/chatty-edu-api/internal/models"
)

var (
	bannedSwears = []string{
		"fuck", "shit", "cunt", "bitch", "bastard", "crap", "piss", "dick", "cock", "tits",
		"asshole", "ass", "bollock",
	}
	maskedSwears = []string{"fk", "fck", "fuk", "sht", "sh1t", "btch", "b1tch", "biatch"}
	matureTopics = []string{"sex", "porn", "drugs", "suicide", "kill", "terrorist"}
)

var leetReplacements = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'!': 'i',
	'|': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'8': 'b',
	'9': 'g',
}

// SafetyFilter screens a chat exchange by what the student typed.
type SafetyFilter struct {
	config models.SafetyFilterConfig
}

// NewSafetyFilter builds a filter for the given settings.
func NewSafetyFilter(config models.SafetyFilterConfig) SafetyFilter {
	return SafetyFilter{config: config}
}

// Unsafe reports whether the input trips any enabled rule.
func (f SafetyFilter) Unsafe(input string) bool {
	if !f.config.Enabled {
		return false
	}

	text := newScreenedText(input)

	if f.config.BlockSwears {
		for _, word := range bannedSwears {
			if text.contains(word) {
				return true
			}
			if stripped := dropVowels(word); len(stripped) >= minFragmentLength && strings.Contains(text.vowelless, stripped) {
				return true
			}
		}
		for _, word := range maskedSwears {
			if strings.Contains(text.normalized, word) {
				return true
			}
		}
	}

	if f.config.BlockMatureTopics {
		for _, word := range matureTopics {
			if text.contains(word) {
				return true
			}
		}
	}

	return false
}

// Words and fragments this short only match whole words, so "class" and
// "photosynthesis" pass.
const minFragmentLength = 3

type screenedText struct {
	lower      string
	normalized string
	vowelless  string
	words      map[string]struct{}
}

func newScreenedText(input string) screenedText {
	lower := strings.ToLower(input)
	normalized := normalizeLeet(lower)

	words := map[string]struct{}{}
	for _, field := range strings.Fields(lower) {
		words[normalizeLeet(field)] = struct{}{}
	}

	return screenedText{
		lower:      lower,
		normalized: normalized,
		vowelless:  dropVowels(normalized),
		words:      words,
	}
}

func (t screenedText) contains(word string) bool {
	if len(word) <= minFragmentLength {
		_, ok := t.words[word]
		return ok
	}
	return strings.Contains(t.lower, word) || strings.Contains(t.normalized, word)
}

// Apply returns the fallback message when the input is unsafe, otherwise answer.
func (f SafetyFilter) Apply(answer, input string) (string, bool) {
	if f.Unsafe(input) {
		return f.config.FallbackMessage, true
	}
	return answer, false
}

// normalizeLeet maps digit and symbol substitutions back to letters and drops
// everything that is not an ASCII letter, so "f*ck" and "sh-1t" collapse.
func normalizeLeet(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if replacement, ok := leetReplacements[r]; ok {
			builder.WriteRune(replacement)
			continue
		}
		if r >= 'a' && r <= 'z' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

func dropVowels(text string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
			return -1
		}
		return r
	}, text)
}
