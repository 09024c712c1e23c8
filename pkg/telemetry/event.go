package telemetry

import "fmt"

// Type classifies an intercepted operation.
type Type string

const (
	TypeExec      Type = "exec"
	TypeNetwork   Type = "network"
	TypeFile      Type = "file"
	TypeInjection Type = "injection"
	TypePrivilege Type = "privilege"
	TypeProcess   Type = "process"
)

// Module identifies the intercepted layer on the wire. The wrappers keep
// libc entry-point names, so the constant matches.
const Module = "libc"

const (
	// MaxRecord bounds a full encoded record including the newline.
	// Anything longer is dropped whole, never sent truncated.
	MaxRecord = 1024

	// MaxCmd is the default escaping budget for the cmd field.
	MaxCmd = 256
)

// Event is one security-relevant operation observed by the interception
// table. Filename and lineno are reserved on the wire and always rendered
// empty/zero; no call-site attribution is captured.
type Event struct {
	Type     Type
	Function string
	Cmd      string // already escaped, see Escape
}

// Encode renders the event as a single newline-terminated JSON record.
// Returns ok=false when the record would exceed MaxRecord.
func (e Event) Encode() ([]byte, bool) {
	line := fmt.Sprintf(
		"{\"type\":\"%s\",\"module\":\"%s\",\"function\":\"%s\",\"cmd\":\"%s\",\"filename\":\"\",\"lineno\":0}\n",
		e.Type, Module, e.Function, e.Cmd)
	if len(line) >= MaxRecord {
		return nil, false
	}
	return []byte(line), true
}

// Escape sanitizes s for the cmd field with the default budget.
func Escape(s string) string {
	return EscapeMax(s, MaxCmd)
}

// EscapeMax sanitizes s byte by byte: quote and backslash are
// backslash-prefixed, newline and carriage return become their two-byte
// escapes, and everything outside printable ASCII is dropped. The output
// is bounded by max; a two-byte escape that no longer fits is skipped,
// shorter bytes after it may still land.
func EscapeMax(s string, max int) string {
	out := make([]byte, 0, max)
	for i := 0; i < len(s) && len(out) < max-2; i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			if len(out) < max-3 {
				out = append(out, '\\', c)
			}
		case c == '\n':
			if len(out) < max-3 {
				out = append(out, '\\', 'n')
			}
		case c == '\r':
			if len(out) < max-3 {
				out = append(out, '\\', 'r')
			}
		case c >= 32 && c < 127:
			out = append(out, c)
		}
	}
	return string(out)
}

// Record is the wire shape of an event line, as a monitor decodes it.
type Record struct {
	Type     string `json:"type"`
	Module   string `json:"module"`
	Function string `json:"function"`
	Cmd      string `json:"cmd"`
	Filename string `json:"filename"`
	Lineno   int    `json:"lineno"`
}
