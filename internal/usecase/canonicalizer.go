package usecase

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Canonicalization defaults used when a field cannot be parsed from the title
const (
	defaultVolumeML   = 700
	defaultABVPercent = 40
	noAgeStatement    = "NAS" // sentinel for titles without an age statement

	minVolumeML = 50
	maxVolumeML = 5000

	brandTokenCount = 6
)

// Compiled regex patterns for title canonicalization
var (
	// Matches bracketed segments (both ASCII and full-width pairs) including contents
	bracketPattern = regexp.MustCompile(`【[^】]*】|\[[^\]]*\]|（[^）]*）|\([^)]*\)`)

	// Matches bottle volume like "700ml", "700 ml", "1800ml"
	volumePattern = regexp.MustCompile(`(?i)\b(\d{3,4})\s?ml`)

	// Matches strength like "43%", "43.5%", "40度"
	strengthPattern = regexp.MustCompile(`\b(\d{2})(?:\.\d+)?\s*(?:%|度)`)

	// Matches age statements like "12年" and "12yo" / "12 yo"
	ageJPPattern = regexp.MustCompile(`\b(\d{1,2})年`)
	ageENPattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s*yo\b`)

	// Multiple spaces cleanup
	spaceRunPattern = regexp.MustCompile(`\s+`)
)

// Canonicalizer derives a comparable identity key from noisy marketplace
// titles. It is a pure transformation: same title in, same key out, and
// unparseable fields fall back to defaults rather than erroring.
type Canonicalizer struct {
	noiseWords         []string // lowercased denylist substrings
	enableDebugLogging bool
}

// NewCanonicalizer creates a canonicalizer with the configured noise denylist
func NewCanonicalizer(noiseWords []string, enableDebugLogging bool) *Canonicalizer {
	lowered := make([]string, 0, len(noiseWords))
	for _, w := range noiseWords {
		w = strings.ToLower(normalizeWidth(w))
		if w != "" {
			lowered = append(lowered, w)
		}
	}

	// Longest first, so "数量限定" is stripped whole before "限定" can split it
	sort.SliceStable(lowered, func(i, j int) bool {
		return len(lowered[i]) > len(lowered[j])
	})

	return &Canonicalizer{
		noiseWords:         lowered,
		enableDebugLogging: enableDebugLogging,
	}
}

// Canonicalize computes the grouping key for a listing title.
// Key format: "{first 6 tokens}|{volume}ml|{strength}%|{age}".
// Two listings sharing a key are treated as the same product for grouping;
// the key is intentionally coarse, not a catalog identity.
func (c *Canonicalizer) Canonicalize(title string) string {
	cleaned := c.cleanTitle(title)

	volume := parseVolume(cleaned, defaultVolumeML)
	strength := parseStrength(cleaned, defaultABVPercent)
	age := parseAge(cleaned)

	// Drop the parsed fields from the token run so that "700ml 40%" and
	// "700ml 40度" leave identical brand tokens behind
	tokens := brandTokens(stripParsedFields(cleaned))

	key := fmt.Sprintf("%s|%dml|%d%%|%s", strings.Join(tokens, " "), volume, strength, age)

	if c.enableDebugLogging {
		log.Printf("[CANON] %q -> %q", title, key)
	}

	return key
}

// ParseVolume extracts the bottle volume from a raw title, nil when absent.
// Values are clamped to the plausible bottle range.
func (c *Canonicalizer) ParseVolume(title string) *int {
	normalized := strings.ToLower(normalizeWidth(title))
	m := volumePattern.FindStringSubmatch(normalized)
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	v = clampVolume(v)
	return &v
}

// ParseStrength extracts the ABV percentage from a raw title, nil when absent
func (c *Canonicalizer) ParseStrength(title string) *int {
	normalized := strings.ToLower(normalizeWidth(title))
	m := strengthPattern.FindStringSubmatch(normalized)
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &v
}

// cleanTitle lowercases the title and strips promotional noise:
// bracketed segments, denylist substrings, and runs of whitespace
func (c *Canonicalizer) cleanTitle(title string) string {
	// Fold width variants first so full-width digits and percent signs parse
	cleaned := normalizeWidth(title)
	cleaned = strings.ToLower(cleaned)
	cleaned = bracketPattern.ReplaceAllString(cleaned, " ")

	for _, noise := range c.noiseWords {
		cleaned = strings.ReplaceAll(cleaned, noise, " ")
	}

	cleaned = spaceRunPattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// normalizeWidth folds full-width ASCII (digits, letters, percent) to regular
// ASCII and half-width katakana back to full-width katakana
func normalizeWidth(s string) string {
	return width.Fold.String(s)
}

// parseVolume returns the first clamped volume match, or the fallback
func parseVolume(cleaned string, fallback int) int {
	m := volumePattern.FindStringSubmatch(cleaned)
	if m == nil {
		return fallback
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return fallback
	}
	return clampVolume(v)
}

// parseStrength returns the first ABV match, or the fallback
func parseStrength(cleaned string, fallback int) int {
	m := strengthPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return fallback
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return fallback
	}
	return v
}

// parseAge returns the first age-statement match, or the NAS sentinel
func parseAge(cleaned string) string {
	if m := ageJPPattern.FindStringSubmatch(cleaned); m != nil {
		return m[1]
	}
	if m := ageENPattern.FindStringSubmatch(cleaned); m != nil {
		return m[1]
	}
	return noAgeStatement
}

// stripParsedFields removes volume/strength/age matches from the cleaned title
// so the brand-token run compares equal across notation variants
func stripParsedFields(cleaned string) string {
	s := volumePattern.ReplaceAllString(cleaned, " ")
	s = strengthPattern.ReplaceAllString(s, " ")
	s = ageJPPattern.ReplaceAllString(s, " ")
	s = ageENPattern.ReplaceAllString(s, " ")
	s = spaceRunPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// brandTokens takes the leading token run identifying the brand/series
func brandTokens(cleaned string) []string {
	tokens := strings.Fields(cleaned)
	if len(tokens) > brandTokenCount {
		tokens = tokens[:brandTokenCount]
	}
	return tokens
}

func clampVolume(v int) int {
	if v < minVolumeML {
		return minVolumeML
	}
	if v > maxVolumeML {
		return maxVolumeML
	}
	return v
}
