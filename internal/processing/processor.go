package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

// amountRegexp matches a bare numeric amount once the dollar sign and
// thousands separators are stripped. Anything else (other currency
// symbols, negatives, trailing text) is treated as malformed.
var amountRegexp = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

// FallbackCategory is assigned when no keyword rule matches a title.
const FallbackCategory = "Uncategorized"

type categoryRule struct {
	name     string
	keywords []string
}

// categoryRules is evaluated in declaration order; the first rule with
// a matching keyword wins, so more specific rules come first.
var categoryRules = []categoryRule{
	{"Scripts & Screenplays", []string{"script", "screenplay"}},
	{"Cameras & Camcorders", []string{"camera", "camcorder"}},
	{"Lighting Equipment", []string{"light", "lighting"}},
	{"Books & Reference", []string{"book", "volume", "reference"}},
	{"Posters & Prints", []string{"poster", "signed poster"}},
	{"Furniture", []string{"sofa", "chair", "table", "furniture"}},
	{"Coffee & Kitchen", []string{"mug", "cup", "coffee maker", "espresso"}},
	{"Instruments & Audio", []string{"guitar", "bass", "keyboard", "drum", "microphone", "audio", "speaker"}},
	{"Records & Music", []string{"record", "album", "vinyl"}},
	{"Props & Memorabilia", []string{"prop", "memorabilia", "production slate"}},
}

// ParseCurrency converts a currency-formatted string such as "$1,000"
// into its numeric value. Malformed or missing input yields nil rather
// than an error so one bad field never fails a whole load.
func ParseCurrency(raw string) *float64 {
	return parseAmount(raw)
}

// ParseEstimate splits an estimate range such as "$800-1,200" into its
// low and high bounds. A single value yields equal bounds; anything
// unparseable yields (nil, nil).
func ParseEstimate(raw string) (low, high *float64) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}

	if before, after, found := strings.Cut(s, "-"); found {
		low = parseAmount(before)
		high = parseAmount(after)
		if low == nil || high == nil {
			return nil, nil
		}
		return low, high
	}

	low = parseAmount(s)
	if low == nil {
		return nil, nil
	}
	h := *low
	return low, &h
}

// DetectCategory classifies a lot title by case-insensitive keyword
// match against the ordered rule table. Every title resolves to exactly
// one category; FallbackCategory is returned when nothing matches.
func DetectCategory(title string) string {
	lowered := strings.ToLower(title)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.name
			}
		}
	}
	return FallbackCategory
}

// Categories returns the closed label set in rule order, with the
// fallback label last.
func Categories() []string {
	out := make([]string, 0, len(categoryRules)+1)
	for _, rule := range categoryRules {
		out = append(out, rule.name)
	}
	return append(out, FallbackCategory)
}

// BuildLotID hashes the stable fields to form deterministic IDs.
// Returns empty string when both inputs are empty; the loader falls
// back to a random ID in that case.
func BuildLotID(title, url string) string {
	if title == "" && url == "" {
		return ""
	}
	s := sha1.Sum([]byte(title + "|" + url))
	return hex.EncodeToString(s[:])
}

func parseAmount(raw string) *float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if !amountRegexp.MatchString(s) {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
