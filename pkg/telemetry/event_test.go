package telemetry

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, `\"quoted\"`, Escape(`"quoted"`))
	assert.Equal(t, `a\\b`, Escape(`a\b`))
	assert.Equal(t, `line1\nline2`, Escape("line1\nline2"))
	assert.Equal(t, `a\rb`, Escape("a\rb"))
	assert.Equal(t, "/etc/passwd", Escape("/etc/passwd"))

	// Bytes outside printable ASCII are dropped, not substituted.
	assert.Equal(t, "ab", Escape("a\x01\x02b"))
	assert.Equal(t, "ab", Escape("a\x7fb"))
	assert.Equal(t, "ab", Escape("a\xffb"))
	assert.Equal(t, "", Escape("\x00\x1f"))
}

func TestEscapeBudget(t *testing.T) {
	out := EscapeMax(strings.Repeat("a", 500), 256)
	assert.Len(t, out, 254)

	// A two-byte escape that no longer fits is skipped; a shorter byte
	// after it can still land.
	out = EscapeMax(strings.Repeat("a", 253)+`"z`, 256)
	assert.Equal(t, strings.Repeat("a", 253)+"z", out)
}

func TestEncodeFieldOrder(t *testing.T) {
	line, ok := Event{Type: TypeFile, Function: "open", Cmd: "/etc/passwd"}.Encode()
	require.True(t, ok)
	assert.Equal(t,
		`{"type":"file","module":"libc","function":"open","cmd":"/etc/passwd","filename":"","lineno":0}`+"\n",
		string(line))
}

func TestEncodeOversizedDropped(t *testing.T) {
	_, ok := Event{Type: TypeExec, Function: "system", Cmd: strings.Repeat("a", 1000)}.Encode()
	assert.False(t, ok)
}

func TestEscapeRoundTrip(t *testing.T) {
	raw := "/tmp/\"evil\\path\n\r\x02name"
	line, ok := Event{Type: TypeFile, Function: "unlink", Cmd: Escape(raw)}.Encode()
	require.True(t, ok)
	require.Less(t, len(line), MaxRecord)

	var rec Record
	require.NoError(t, json.Unmarshal(line, &rec))
	assert.Equal(t, "file", rec.Type)
	assert.Equal(t, "libc", rec.Module)
	assert.Equal(t, "unlink", rec.Function)
	assert.Equal(t, "/tmp/\"evil\\path\n\rname", rec.Cmd)
	assert.Empty(t, rec.Filename)
	assert.Zero(t, rec.Lineno)
}
