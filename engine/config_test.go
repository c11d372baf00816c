package engine

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toldi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("decodes all fields", func(t *testing.T) {
		path := writeConfig(t, `
debug: true
search_mode: static
error_texts:
  not_found: "nothing here"
  internal_error: "something broke"
`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.NotNil(t, cfg.Debug)
		assert.True(t, *cfg.Debug)
		assert.Equal(t, "static", cfg.SearchMode)
		assert.Equal(t, "nothing here", cfg.ErrorTexts["not_found"])
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml errors", func(t *testing.T) {
		path := writeConfig(t, "debug: [unterminated")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestApplyConfig(t *testing.T) {
	t.Run("applies debug mode and error texts", func(t *testing.T) {
		e := New(WithDebug(false))
		debug := true
		require.NoError(t, e.ApplyConfig(&Config{
			Debug:      &debug,
			ErrorTexts: map[string]string{"not_found": "nope"},
		}))

		assert.True(t, e.Debug())
		assert.Equal(t, "nope", e.ErrorText(CodeNotFound))
	})

	t.Run("switches search mode preserving routes", func(t *testing.T) {
		e := New(WithDebug(false))
		e.GET("/ping", echoBody("pong"))

		require.NoError(t, e.ApplyConfig(&Config{SearchMode: "static"}))
		assert.Equal(t, SearchStatic, e.SearchModeActive())
		assert.Equal(t, "pong", serve(e, http.MethodGet, "/ping").Body.String())
	})

	t.Run("rejects unknown search mode before applying anything", func(t *testing.T) {
		e := New(WithDebug(false))
		debug := true
		err := e.ApplyConfig(&Config{Debug: &debug, SearchMode: "quantum"})
		require.Error(t, err)
		assert.False(t, e.Debug())
	})

	t.Run("rejects unknown error code names", func(t *testing.T) {
		e := New(WithDebug(false))
		err := e.ApplyConfig(&Config{ErrorTexts: map[string]string{"teapot": "short and stout"}})
		assert.Error(t, err)
	})

	t.Run("empty config changes nothing", func(t *testing.T) {
		e := New(WithDebug(false))
		require.NoError(t, e.ApplyConfig(&Config{}))
		assert.Equal(t, SearchDynamic, e.SearchModeActive())
		assert.False(t, e.Debug())
	})
}

func TestDebugEnvDefault(t *testing.T) {
	t.Run("debug defaults on when the variable is present", func(t *testing.T) {
		t.Setenv(DebugEnv, "")
		assert.True(t, New().Debug())
	})

	t.Run("WithDebug overrides the environment", func(t *testing.T) {
		t.Setenv(DebugEnv, "1")
		assert.False(t, New(WithDebug(false)).Debug())
	})
}
