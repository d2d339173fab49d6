package tmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSimpleSubstitution(t *testing.T) {
	r := New(nil)
	out, err := r.Render("os={{ .os }}", map[string]interface{}{"os": "linux"})
	require.NoError(t, err)
	assert.Equal(t, "os=linux", out)
}

func TestRenderListAndMapValues(t *testing.T) {
	r := New(nil)
	ctx := map[string]interface{}{
		"hosts": []interface{}{"a", "b"},
		"vars":  map[string]interface{}{"key": "value"},
	}
	out, err := r.Render("{{ index .hosts 0 }}-{{ .vars.key }}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "a-value", out)
}

func TestRenderFalseBoolTakesElseBranch(t *testing.T) {
	r := New(nil)
	out, err := r.Render("{{ if .enabled }}on{{ else }}off{{ end }}", map[string]interface{}{"enabled": false})
	require.NoError(t, err)
	assert.Equal(t, "off", out)
}

func TestRenderCachesCompiledTemplate(t *testing.T) {
	r := New(nil)
	text := "h={{ .hostname }}"
	_, err := r.Render(text, map[string]interface{}{"hostname": "m1"})
	require.NoError(t, err)
	_, ok := r.cache[text]
	assert.True(t, ok)
	_, err = r.Render(text, map[string]interface{}{"hostname": "m2"})
	require.NoError(t, err)
}

func TestRenderParseErrorSurfaces(t *testing.T) {
	r := New(nil)
	_, err := r.Render("{{ .unterminated", nil)
	assert.Error(t, err)
}

func TestRenderUndefinedFieldErrorsWithMissingKey(t *testing.T) {
	r := New(nil)
	_, err := r.Render(`{{ .nope }}`, map[string]interface{}{"present": "x"})
	assert.Error(t, err)
}
