package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIntoChunks(t *testing.T) {
	assert.Empty(t, splitIntoChunks("", 10))
	assert.Equal(t, []string{"привіт"}, splitIntoChunks("привіт", 100))

	long := strings.Repeat("класна квартира у центрі ", 40)
	chunks := splitIntoChunks(long, 100)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 100+4, "bo'lak limitdan sezilarli oshmasligi kerak")
	}
	assert.Equal(t, long, strings.Join(chunks, ""))
}

func TestContactKeyboard(t *testing.T) {
	kb := contactKeyboard()
	require.Len(t, kb.Keyboard, 1)
	require.Len(t, kb.Keyboard[0], 1)
	assert.True(t, kb.Keyboard[0][0].RequestContact)
	assert.Equal(t, contactButtonText, kb.Keyboard[0][0].Text)
	assert.True(t, kb.OneTimeKeyboard)
	assert.True(t, kb.ResizeKeyboard)
}
