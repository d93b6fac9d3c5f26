package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBundle_Catalogs(t *testing.T) {
	b, err := NewBundle("", nil)
	require.NoError(t, err)

	assert.Equal(t, "en", b.Default())
	assert.Equal(t, []string{"en", "de"}, b.Supported())

	en := b.Messages("en")
	for _, key := range []string{"signIn", "signOut", "signUp", "signInTitle", "signInDescription", "forgotPassword", "rememberMe", "alreadyHaveAccount", "dontHaveAccount"} {
		assert.NotEmpty(t, en[key], key)
	}

	de := b.Messages("de")
	assert.Equal(t, "Anmelden", de["signIn"])
	assert.Len(t, de, len(en), "every English key is present in German")
}

func TestBundle_Overrides(t *testing.T) {
	b, err := NewBundle("en", map[string]map[string]string{
		"en": {"signIn": "Custom Sign In"},
		"FR": {"signIn": "Se connecter"},
	})
	require.NoError(t, err)

	tr := b.Translator("en")
	assert.Equal(t, "Custom Sign In", tr.T("signIn"))
	assert.Equal(t, "Sign out", tr.T("signOut"))
	assert.Equal(t, "nonExistentKey", tr.T("nonExistentKey"))

	fr := b.Translator("fr")
	assert.Equal(t, "fr", fr.Locale())
	assert.Equal(t, "Se connecter", fr.T("signIn"))
	assert.Equal(t, "Profile", fr.T("profile"), "falls back to English")

	assert.Contains(t, b.Supported(), "fr")
}

func TestBundle_UnknownLocaleFallsBackToEnglish(t *testing.T) {
	b, err := NewBundle("en", nil)
	require.NoError(t, err)
	assert.Equal(t, "Sign in", b.Translator("xx").T("signIn"))
}

func TestBundle_Negotiate(t *testing.T) {
	b, err := NewBundle("en", nil)
	require.NoError(t, err)

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"de", "de"},
		{"de-CH,de;q=0.9,en;q=0.8", "de"},
		{"fr-FR,fr;q=0.9", "en"},
		{"en-GB,en;q=0.9,de;q=0.5", "en"},
		{"ja,de;q=0.5", "de"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Negotiate(tt.header))
		})
	}
}

func TestBundle_NegotiateCustomDefault(t *testing.T) {
	b, err := NewBundle("de", nil)
	require.NoError(t, err)
	assert.Equal(t, "de", b.Negotiate(""))
	assert.Equal(t, "de", b.Negotiate("fr"))
	assert.Equal(t, []string{"de", "en"}, b.Supported())
}
