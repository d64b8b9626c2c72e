package location

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	// tokenEditThreshold is the normalized edit distance below which two
	// tokens count as the same word.
	tokenEditThreshold = 0.3

	// matchRatioThreshold is the share of original tokens that must match
	// before the result is considered textually consistent.
	matchRatioThreshold = 0.5
)

var (
	postalCodeRe  = regexp.MustCompile(`\b\d{5}(-\d{4})?\b`)
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
)

// phraseExpansions are applied on the whole lowercased string before
// tokenizing, so multi-word expansions survive.
var phraseExpansions = map[string]string{
	"nyc":    "new york city",
	"sf":     "san francisco",
	"philly": "philadelphia",
	"gwb":    "george washington bridge",
	"bqe":    "brooklyn queens expressway",
	"fdr":    "fdr drive",
}

// tokenExpansions map common postal abbreviations to their spelled-out
// forms. Ambiguous two-letter state codes (IN, OR, ME, OK, HI, DE, CT) are
// intentionally absent.
var tokenExpansions = map[string]string{
	"st":   "street",
	"ave":  "avenue",
	"av":   "avenue",
	"blvd": "boulevard",
	"rd":   "road",
	"dr":   "drive",
	"ln":   "lane",
	"hwy":  "highway",
	"pkwy": "parkway",
	"expy": "expressway",
	"tpke": "turnpike",
	"ct":   "court",
	"pl":   "place",
	"sq":   "square",
	"ter":  "terrace",
	"cir":  "circle",
	"brg":  "bridge",

	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",

	"ny": "new york",
	"nj": "new jersey",
	"ca": "california",
	"tx": "texas",
	"fl": "florida",
	"pa": "pennsylvania",
	"ma": "massachusetts",
	"il": "illinois",
	"wa": "washington",
	"az": "arizona",
	"ga": "georgia",

	"mt":  "mount",
	"ft":  "fort",
	"apt": "apartment",
	"ste": "suite",
}

// droppedTokens are filler and country tokens that carry no location signal.
var droppedTokens = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "in": {}, "at": {}, "on": {},
	"of": {}, "by": {}, "near": {}, "to": {}, "and": {},
	"over": {}, "past": {}, "through": {}, "via": {}, "from": {},
	"toward": {}, "towards": {},
	"usa": {}, "us": {}, "united": {}, "states": {}, "america": {},
}

// NormalizeTokens lowercases, strips punctuation and postal codes, expands
// abbreviations, and drops filler words. Tokens shorter than two characters
// are discarded after expansion.
func NormalizeTokens(s string) []string {
	s = strings.ToLower(s)
	s = postalCodeRe.ReplaceAllString(s, " ")
	s = punctuationRe.ReplaceAllString(s, " ")

	for phrase, expansion := range phraseExpansions {
		s = strings.ReplaceAll(" "+s+" ", " "+phrase+" ", " "+expansion+" ")
	}

	var out []string
	for _, tok := range strings.Fields(s) {
		if expanded, ok := tokenExpansions[tok]; ok {
			tok = expanded
		}
		for _, word := range strings.Fields(tok) {
			if _, drop := droppedTokens[word]; drop {
				continue
			}
			if len(word) < 2 {
				continue
			}
			out = append(out, word)
		}
	}
	return out
}

// TokensMatch reports whether two normalized tokens are the same word,
// tolerating small misspellings proportionally to token length.
func TokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return false
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(dist)/float64(longest) < tokenEditThreshold
}

// MatchResult summarizes how well a candidate address covers the tokens of
// the original phrase.
type MatchResult struct {
	MatchRatio    float64
	MissingTokens []string
	Mismatch      bool
}

// CompareText checks every token of the original phrase against the
// candidate text. A token matches when any candidate token is within the
// edit distance threshold.
func CompareText(original, candidate string) MatchResult {
	origTokens := NormalizeTokens(original)
	candTokens := NormalizeTokens(candidate)

	if len(origTokens) == 0 {
		return MatchResult{MatchRatio: 1}
	}

	matched := 0
	var missing []string
	for _, tok := range origTokens {
		found := false
		for _, cand := range candTokens {
			if TokensMatch(tok, cand) {
				found = true
				break
			}
		}
		if found {
			matched++
		} else {
			missing = append(missing, tok)
		}
	}

	ratio := float64(matched) / float64(len(origTokens))
	return MatchResult{
		MatchRatio:    ratio,
		MissingTokens: missing,
		Mismatch:      ratio < matchRatioThreshold,
	}
}
