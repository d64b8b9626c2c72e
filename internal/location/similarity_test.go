package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTokens_ExpandsAbbreviations(t *testing.T) {
	// Act
	tokens := NormalizeTokens("123 Main St, Brooklyn NY 11237")

	// Assert
	assert.Equal(t, []string{"123", "main", "street", "brooklyn", "new", "york"}, tokens)
}

func TestNormalizeTokens_DropsFillerAndCountry(t *testing.T) {
	// Act
	tokens := NormalizeTokens("the diner near Newark, USA")

	// Assert
	assert.Equal(t, []string{"diner", "newark"}, tokens)
}

func TestNormalizeTokens_PhraseExpansion(t *testing.T) {
	// Act
	tokens := NormalizeTokens("over the GWB")

	// Assert
	assert.Equal(t, []string{"george", "washington", "bridge"}, tokens)
}

func TestTokensMatch_ExactAndFuzzy(t *testing.T) {
	assert.True(t, TokensMatch("wyckoff", "wyckoff"))
	// one edit in a seven letter word is within tolerance
	assert.True(t, TokensMatch("wyckoff", "wycoff"))
	assert.False(t, TokensMatch("wyckoff", "flatbush"))
	// short tokens get no fuzz budget
	assert.False(t, TokensMatch("st", "rd"))
}

func TestCompareText_FullMatchThroughAbbreviations(t *testing.T) {
	// Act
	result := CompareText("40 Wyckoff Ave", "40 Wyckoff Avenue, Brooklyn, NY 11237, USA")

	// Assert
	assert.Equal(t, 1.0, result.MatchRatio)
	assert.Empty(t, result.MissingTokens)
	assert.False(t, result.Mismatch)
}

func TestCompareText_ReportsMissingTokens(t *testing.T) {
	// Arrange: the candidate names a different road entirely
	result := CompareText("Springfield Ave Newark", "Main Street, Newark, NJ")

	// Assert
	assert.Contains(t, result.MissingTokens, "springfield")
	assert.NotContains(t, result.MissingTokens, "newark")
}

func TestCompareText_MismatchBelowHalf(t *testing.T) {
	// Act
	result := CompareText("Lincoln Tunnel approach", "742 Evergreen Terrace, Springfield")

	// Assert
	assert.True(t, result.Mismatch)
}

func TestCompareText_EmptyOriginalMatches(t *testing.T) {
	// Act
	result := CompareText("the a in", "anything at all")

	// Assert: nothing left after normalization means nothing to contradict
	assert.False(t, result.Mismatch)
	assert.Equal(t, 1.0, result.MatchRatio)
}
