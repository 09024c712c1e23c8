package sentinel

import (
	"os"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

// originals maps entry-point names to their pass-through implementations,
// the ones that would run absent interception. Populated once here; a hole
// in the table is a build defect, not a recoverable error, because a
// wrapper without its original cannot fulfill the forwarding contract.
var originals = map[string]any{
	"execve":  unix.Exec,
	"system":  runShell,
	"popen":   openPipe,
	"socket":  unix.Socket,
	"connect": unix.Connect,
	"bind":    unix.Bind,
	"open":    unix.Open,
	"fopen":   openStream,
	"unlink":  unix.Unlink,
	"remove":  os.Remove,
	"ptrace":  ptraceRaw,
	"chmod":   unix.Chmod,
	"chown":   unix.Chown,
	"setuid":  unix.Setuid,
	"setgid":  unix.Setgid,
	"fork":    syscall.ForkExec,
}

// binding lazily resolves and caches the original implementation for one
// entry point. Concurrent first calls may resolve redundantly; the lookup
// is idempotent so the race is harmless, and the cached value is immutable
// for the life of the process.
type binding[T any] struct {
	name string
	fn   atomic.Pointer[T]
}

func (b *binding[T]) original() T {
	if fn := b.fn.Load(); fn != nil {
		return *fn
	}
	impl, ok := originals[b.name]
	if !ok {
		panic("sentinel: no original implementation registered for " + b.name)
	}
	fn, ok := impl.(T)
	if !ok {
		panic("sentinel: mistyped original implementation for " + b.name)
	}
	b.fn.Store(&fn)
	return fn
}

var (
	bindExec    = &binding[func(string, []string, []string) error]{name: "execve"}
	bindSystem  = &binding[func(string) (int, error)]{name: "system"}
	bindPopen   = &binding[func(string, string) (*Pipe, error)]{name: "popen"}
	bindSocket  = &binding[func(int, int, int) (int, error)]{name: "socket"}
	bindConnect = &binding[func(int, unix.Sockaddr) error]{name: "connect"}
	bindBind    = &binding[func(int, unix.Sockaddr) error]{name: "bind"}
	bindOpen    = &binding[func(string, int, uint32) (int, error)]{name: "open"}
	bindFopen   = &binding[func(string, string) (*os.File, error)]{name: "fopen"}
	bindUnlink  = &binding[func(string) error]{name: "unlink"}
	bindRemove  = &binding[func(string) error]{name: "remove"}
	bindPtrace  = &binding[func(int, int, uintptr, uintptr) (uintptr, error)]{name: "ptrace"}
	bindChmod   = &binding[func(string, uint32) error]{name: "chmod"}
	bindChown   = &binding[func(string, int, int) error]{name: "chown"}
	bindSetuid  = &binding[func(int) error]{name: "setuid"}
	bindSetgid  = &binding[func(int) error]{name: "setgid"}
	bindFork    = &binding[func(string, []string, *syscall.ProcAttr) (int, error)]{name: "fork"}
)
