package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateTextKeepsValidUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// "ść" is 4 bytes; cutting at 3 would split the second rune
	out := tp.TruncateText("ść", 3)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "ś", out)
}

func TestTruncateTextNoLimit(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	assert.Equal(t, "hello", tp.TruncateText("hello", 0))
	assert.Equal(t, "hello", tp.TruncateText("hello", 100))
}

func TestSanitizeUTF8DropsInvalidBytes(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	out := tp.SanitizeUTF8("ok\xffbad")
	assert.Equal(t, "okbad", out)
}

func TestProcessTextNormalizesAndTrims(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// decomposed a + combining ogonek must collapse to precomposed "ą"
	out := tp.ProcessText("  ąkt  ", 100)
	assert.Equal(t, "ąkt", out)
}

func TestProcessTextCapsLongBody(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	long := strings.Repeat("x", 5000)
	assert.Len(t, tp.ProcessText(long, 3000), 3000)
}
