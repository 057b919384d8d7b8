package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_SplitsOnWhitespaceAndPunctuation(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{"whitespace", "Maximum  daily\ttemperature\n", []string{"maximum", "daily", "temperature"}},
		{"underscore", "tx_max", []string{"tx", "max"}},
		{"dots and parentheses", "xclim.indicators(atmos)", []string{"xclim", "indicators", "atmos"}},
		{"hyphen", "day-of-year", []string{"day", "of", "year"}},
		{"no stop words removed", "the number of days", []string{"the", "number", "of", "days"}},
		{"unicode", "Température Élevée", []string{"température", "élevée"}},
		{"empty", "", []string{}},
		{"only separators", " ,.;_ ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Tokenize(tt.input))
		})
	}
}

func TestSplitSpans_ByteOffsets(t *testing.T) {
	// Given: text with multi-byte runes
	text := "é tx"

	// When: splitting
	spans := splitSpans(text)

	// Then: offsets are byte ranges
	assert.Equal(t, []span{{0, 2}, {3, 5}}, spans)
}

func TestQueryTerms_Deduplicates(t *testing.T) {
	assert.Equal(t, []string{"snow", "depth"}, QueryTerms("Snow depth SNOW"))
	assert.Empty(t, QueryTerms("   "))
}

func TestBleveTokenizer_Positions(t *testing.T) {
	tok := &bleveTokenizer{}

	stream := tok.Tokenize([]byte("Heat, wave"))

	if assert.Len(t, stream, 2) {
		assert.Equal(t, "Heat", string(stream[0].Term))
		assert.Equal(t, 1, stream[0].Position)
		assert.Equal(t, 6, stream[1].Start)
		assert.Equal(t, 10, stream[1].End)
		assert.Equal(t, 2, stream[1].Position)
	}
}

func TestMaxEdits(t *testing.T) {
	tests := []struct {
		term   string
		fuzzy  float64
		expect int
	}{
		{"tx", 0.1, 0},
		{"max", 0.1, 1},
		{"maxx", 0.1, 1},
		{"temperature", 0.1, 1},
		{"precipitation", 0.1, 1},
		{"evapotranspiration", 0.1, 2},
		{"maxx", 0, 0},
		{"maxx", 2, 2},
		{"maxx", 5, 2},
		{"température", 0.2, 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expect, MaxEdits(tt.term, tt.fuzzy), "%s @ %g", tt.term, tt.fuzzy)
	}
}
