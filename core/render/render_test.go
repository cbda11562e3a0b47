package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaceholders(t *testing.T) {
	tpl := "# ${policy_standard}\n${control_sections} costs $$5 and $ more ${policy_standard} ${bad-name} ${"
	require.Equal(t, []string{"control_sections", "policy_standard"}, Placeholders(tpl))
}

func TestRenderSubstitutes(t *testing.T) {
	out, err := Render("Hello ${name}, pay $$${amount}. ${name}!", Bundle{"name": "Ada", "amount": "10"})
	require.NoError(t, err)
	require.Equal(t, "Hello Ada, pay $10. Ada!", out)
}

func TestRenderValuesAreNotRescanned(t *testing.T) {
	out, err := Render("${a}", Bundle{"a": "${b} $$"})
	require.NoError(t, err)
	require.Equal(t, "${b} $$", out)
}

func TestRenderMissingListsAllNames(t *testing.T) {
	_, err := Render("${z} ${a} ${present} ${a}", Bundle{"present": "x"})
	var mp *MissingPlaceholderError
	require.True(t, errors.As(err, &mp))
	require.Equal(t, []string{"a", "z"}, mp.Names)
	require.Contains(t, err.Error(), "a, z")
}

func TestRenderLiteralDollars(t *testing.T) {
	out, err := Render("$ ${ $x $", Bundle{})
	require.NoError(t, err)
	require.Equal(t, "$ ${ $x $", out)
}

func TestEscapeRoundTrip(t *testing.T) {
	out, err := Render(Escape("cost: $5 ${x}"), Bundle{})
	require.NoError(t, err)
	require.Equal(t, "cost: $5 ${x}", out)
}
