package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearConfigEnvVars() {
	for _, v := range []string{
		"LVC_BASE_COMPONENT",
		"LVC_BASE_COMPONENT_IMPORT_URI",
		"LVC_ALLOW_UNRESOLVED",
		"LVC_OUTPUT_COMPONENT_META",
	} {
		os.Unsetenv(v)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	opts := Load("")

	assert.Equal(t, "Element", opts.BaseComponent)
	assert.Equal(t, "", opts.BaseComponentImportUri)
	assert.False(t, opts.AllowUnresolved)
	assert.False(t, opts.OutputComponentMeta)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv("LVC_BASE_COMPONENT", "Widget")
	os.Setenv("LVC_BASE_COMPONENT_IMPORT_URI", "@lvc/runtime")
	os.Setenv("LVC_ALLOW_UNRESOLVED", "true")
	os.Setenv("LVC_OUTPUT_COMPONENT_META", "1")

	opts := Load("")

	assert.Equal(t, "Widget", opts.BaseComponent)
	assert.Equal(t, "@lvc/runtime", opts.BaseComponentImportUri)
	assert.True(t, opts.AllowUnresolved)
	assert.True(t, opts.OutputComponentMeta)
}

func TestLoadInvalidBoolFallsBackToDefault(t *testing.T) {
	clearConfigEnvVars()
	defer clearConfigEnvVars()

	os.Setenv("LVC_ALLOW_UNRESOLVED", "not-a-bool")

	opts := Load("")
	assert.False(t, opts.AllowUnresolved)
}
