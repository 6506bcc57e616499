package utils_test

import (
	"strings"
	"testing"

	"github.com/emalab/pingflow/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateForwardingCode(t *testing.T) {
	code, err := utils.GenerateForwardingCode()
	require.NoError(t, err)

	// 16 random bytes render as 32 hex characters
	assert.Len(t, code, 2*utils.ForwardingCodeBytes)
	assert.Equal(t, strings.ToLower(code), code)
	for _, r := range code {
		assert.Contains(t, "0123456789abcdef", string(r))
	}

	// Codes authorize click-throughs, so collisions must stay improbable
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		code, err := utils.GenerateForwardingCode()
		require.NoError(t, err)
		assert.False(t, seen[code])
		seen[code] = true
	}
}

func TestGenerateNonConfusableCode(t *testing.T) {
	code, err := utils.GenerateNonConfusableCode(utils.StudySignupCodeLength)
	require.NoError(t, err)
	assert.Len(t, code, utils.StudySignupCodeLength)

	// Only characters a participant cannot misread are used
	for _, r := range code {
		assert.Contains(t, utils.NonConfusableAlphabet, string(r))
	}

	// The ambiguous glyphs are excluded from the alphabet itself
	for _, ambiguous := range []string{"l", "o", "I", "O", "0", "1"} {
		assert.NotContains(t, utils.NonConfusableAlphabet, ambiguous)
	}

	_, err = utils.GenerateNonConfusableCode(0)
	assert.Error(t, err)

	_, err = utils.GenerateNonConfusableCode(-3)
	assert.Error(t, err)

	// Link codes are short; verify they still spread across generations
	seen := make(map[string]bool, 1000)
	duplicates := 0
	for i := 0; i < 1000; i++ {
		code, err := utils.GenerateNonConfusableCode(utils.TelegramLinkCodeLength)
		require.NoError(t, err)
		assert.Len(t, code, utils.TelegramLinkCodeLength)
		if seen[code] {
			duplicates++
		}
		seen[code] = true
	}
	// 56^6 possibilities make even one collision in a thousand draws unlikely
	assert.LessOrEqual(t, duplicates, 1)
}
