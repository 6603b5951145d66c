package debug

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saveAndRestoreState saves the debug package state and returns a cleanup function
func saveAndRestoreState() func() {
	originalDebug := EnableDebug
	originalQuiet := QuietMode
	originalOutput, originalFile := out.w, out.file
	return func() {
		EnableDebug = originalDebug
		QuietMode = originalQuiet
		out.set(originalOutput, originalFile)
	}
}

func TestSetQuietMode(t *testing.T) {
	defer saveAndRestoreState()()

	SetQuietMode(true)
	assert.True(t, QuietMode)

	SetQuietMode(false)
	assert.False(t, QuietMode)
}

func TestIsDebugEnabled(t *testing.T) {
	defer saveAndRestoreState()()
	t.Setenv("DEBUG", "")

	EnableDebug = "false"
	QuietMode = false
	assert.False(t, IsDebugEnabled())

	EnableDebug = "true"
	assert.True(t, IsDebugEnabled())

	// Quiet mode wins over the build flag
	QuietMode = true
	assert.False(t, IsDebugEnabled())

	QuietMode = false
	EnableDebug = "invalid"
	assert.False(t, IsDebugEnabled())

	t.Setenv("DEBUG", "1")
	assert.True(t, IsDebugEnabled())
}

func TestLogComponents(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	EnableDebug = "true"
	QuietMode = false

	LogAlloc("tier %d\n", 16)
	LogSymbol("built %q\n", "abc")
	LogTable("shards=%d\n", 8)

	output := buf.String()
	assert.Contains(t, output, "[DEBUG:ALLOC] tier 16")
	assert.Contains(t, output, `[DEBUG:SYMBOL] built "abc"`)
	assert.Contains(t, output, "[DEBUG:TABLE] shards=8")
}

func TestLog_QuietMode(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	EnableDebug = "true"
	QuietMode = true
	Log("TEST", "Should not appear")
	Printf("nor this")

	assert.Empty(t, buf.String())
}

func TestLog_NoWriter(t *testing.T) {
	defer saveAndRestoreState()()

	EnableDebug = "true"
	QuietMode = false
	SetDebugOutput(nil)

	assert.NotPanics(t, func() {
		Printf("nothing configured")
		Log("TEST", "nothing configured")
	})
}

func TestFatal(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	QuietMode = false
	err := Fatal("test error: %s", "details")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fatal error: test error: details")
	assert.Contains(t, buf.String(), "[FATAL]")

	buf.Reset()
	QuietMode = true
	err = Fatal("quiet")
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestInitDebugLogFile(t *testing.T) {
	defer saveAndRestoreState()()

	path, err := InitDebugLogFile()
	require.NoError(t, err)
	defer os.Remove(path)

	EnableDebug = "true"
	QuietMode = false
	Log("TEST", "to file\n")

	require.NoError(t, CloseDebugLog())
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[DEBUG:TEST] to file")

	// Closing twice is harmless
	assert.NoError(t, CloseDebugLog())
}
