package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslations(t *testing.T) {
	require.NoError(t, Initialize())

	assert.Equal(t, "Brand not found", T("en", KeyBrandNotFound))
	assert.Equal(t, "找不到品牌", T("zh_TW", KeyBrandNotFound))
	assert.Equal(t, "Invalid input", T("en", KeyValidationInvalid, "input"))

	// unknown language falls back to english, unknown key to itself
	assert.Equal(t, "Brand deleted", T("fr", KeyBrandDeleted))
	assert.Equal(t, "missing.key", T("en", "missing.key"))

	assert.ElementsMatch(t, []string{"en", "zh_TW"}, GetSupportedLanguages())
}
