package telnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[31mdanger\033[0m", Colorize(Red, "danger"))
}

func TestColorf(t *testing.T) {
	assert.Equal(t, "\033[32mgold: 42\033[0m", Colorf(Green, "gold: %d", 42))
}

func TestStripANSI(t *testing.T) {
	input := "\033[31mred\033[0m normal \033[1m\033[32mbold green\033[0m"
	assert.Equal(t, "red normal bold green", StripANSI(input))
	assert.Equal(t, "plain text", StripANSI("plain text"))
	assert.Equal(t, "", StripANSI(""))
}

func TestHealthColor(t *testing.T) {
	assert.Equal(t, Green, HealthColor(30, 30))
	assert.Equal(t, Yellow, HealthColor(15, 30))
	assert.Equal(t, Red, HealthColor(6, 30))
	assert.Equal(t, Red, HealthColor(0, 0))
}

func TestHealthBar(t *testing.T) {
	assert.Equal(t, "[#####-----] 15/30", StripANSI(HealthBar(15, 30, 10)))
	assert.Equal(t, "[----------] 0/30", StripANSI(HealthBar(0, 30, 10)))
	assert.Equal(t, "[#---------] 1/30", StripANSI(HealthBar(1, 30, 10)))
	assert.Equal(t, "[##########] 30/30", StripANSI(HealthBar(30, 30, 10)))
}

func TestPropertyHealthBarWidth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		max := rapid.IntRange(1, 1000).Draw(t, "max")
		cur := rapid.IntRange(-10, max).Draw(t, "cur")
		width := rapid.IntRange(1, 40).Draw(t, "width")
		plain := StripANSI(HealthBar(cur, max, width))
		assert.Equal(t, byte('['), plain[0])
		assert.Equal(t, byte(']'), plain[width+1])
	})
}

func TestPropertyStripANSIInversesColorize(t *testing.T) {
	colors := []string{Red, Green, Blue, Yellow, Cyan, Magenta, White, Bold, Dim}
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,50}`).Draw(t, "text")
		colorIdx := rapid.IntRange(0, len(colors)-1).Draw(t, "color")
		assert.Equal(t, text, StripANSI(Colorize(colors[colorIdx], text)))
	})
}

func TestPropertyStripANSIOutputShorterOrEqual(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		assert.LessOrEqual(t, len(StripANSI(text)), len(text))
	})
}
