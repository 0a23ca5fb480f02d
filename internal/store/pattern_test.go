package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		text string
		want Pattern
	}{
		{"USER.DATA", Pattern{Kind: PatternExact, Text: "USER.DATA", From: "USER.DATA"}},
		{"*", Pattern{Kind: PatternAll, Text: "*"}},
		{"*.DATA", Pattern{Kind: PatternAll, Text: "*.DATA"}},
		{"USER.*", Pattern{Kind: PatternRange, Text: "USER.*", From: "USER.", To: "USER/"}},
		{"USER*LOAD", Pattern{Kind: PatternRange, Text: "USER*LOAD", From: "USER", To: "USES"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePattern(tt.text))
		})
	}
}

func TestSuccessor(t *testing.T) {
	assert.Equal(t, "B", successor("A"))
	assert.Equal(t, "A\x01", successor("A\x00\xff"))
	assert.Equal(t, "B", successor("A\xff\xff"))
	assert.Equal(t, "", successor("\xff"))
}

func TestPatternMatch(t *testing.T) {
	p := ParsePattern("USER.*")
	for _, name := range []string{"USER.", "USER.DATA", "USER.ZZZZZZZZ", "USER.\x7f", "USER.ÿ"} {
		assert.True(t, p.Match(name), name)
	}
	for _, name := range []string{"USER", "USERX.DATA", "USES", "SYS1.LINKLIB"} {
		assert.False(t, p.Match(name), name)
	}

	assert.True(t, ParsePattern("*").Match("ANY"))
	assert.True(t, ParsePattern("A").Match("A"))
	assert.False(t, ParsePattern("A").Match("AB"))

	unbounded := ParsePattern("\xff*")
	assert.Equal(t, "", unbounded.To)
	assert.True(t, unbounded.Match("\xff\xff"))
	assert.Equal(t, "unknown", PatternKind(9).String())
	assert.Equal(t, "range", p.Kind.String())
}
