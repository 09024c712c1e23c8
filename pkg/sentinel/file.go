package sentinel

import (
	"fmt"
	"os"
	"strings"

	"github.com/sandboxkit/sentinel/pkg/telemetry"
	"golang.org/x/sys/unix"
)

// Substrings that mark a path as sensitive for write-intent opens. The
// fopen list is narrower, matching the historical rule set.
var (
	openSensitive  = []string{"/etc/", "/.ssh/", "/bin/", "/sbin/", "cron", ".bashrc", ".profile"}
	fopenSensitive = []string{"/etc/", "/.ssh/", "/bin/", "cron", ".bashrc"}
)

const writeIntent = unix.O_WRONLY | unix.O_RDWR | unix.O_CREAT | unix.O_TRUNC

// pathBudget leaves room in the cmd field for the numeric suffix on
// chmod/chown records.
const pathBudget = 200

func sensitive(path string, list []string) bool {
	for _, s := range list {
		if strings.Contains(path, s) {
			return true
		}
	}
	return false
}

// Open overrides the two-argument form of open. Reported only for opens
// with write, create, or truncate intent on a sensitive path.
func Open(path string, flags int) (int, error) {
	return openCommon(path, flags, 0)
}

// OpenFile overrides the three-argument form of open, for callers that
// pass a creation mode. Same filter as Open; both report as "open".
func OpenFile(path string, flags int, mode uint32) (int, error) {
	return openCommon(path, flags, mode)
}

func openCommon(path string, flags int, mode uint32) (int, error) {
	if flags&writeIntent != 0 && sensitive(path, openSensitive) {
		telemetry.Emit(telemetry.TypeFile, "open", telemetry.Escape(path))
	}
	return bindOpen.original()(path, flags, mode)
}

// Fopen overrides fopen. Reported for write or append mode strings on a
// sensitive path.
func Fopen(path, mode string) (*os.File, error) {
	if strings.ContainsAny(mode, "wa") && sensitive(path, fopenSensitive) {
		telemetry.Emit(telemetry.TypeFile, "fopen", telemetry.Escape(path))
	}
	return bindFopen.original()(path, mode)
}

// Unlink overrides unlink. Always reported.
func Unlink(path string) error {
	telemetry.Emit(telemetry.TypeFile, "unlink", telemetry.Escape(path))
	return bindUnlink.original()(path)
}

// Remove overrides remove. Always reported.
func Remove(path string) error {
	telemetry.Emit(telemetry.TypeFile, "remove", telemetry.Escape(path))
	return bindRemove.original()(path)
}

// Chmod overrides chmod. Always reported, with the octal mode.
func Chmod(path string, mode uint32) error {
	telemetry.Emit(telemetry.TypeFile, "chmod",
		fmt.Sprintf("%s mode=%o", telemetry.EscapeMax(path, pathBudget), mode))
	return bindChmod.original()(path, mode)
}

// Chown overrides chown. Always reported, with the numeric owner and
// group.
func Chown(path string, uid, gid int) error {
	telemetry.Emit(telemetry.TypeFile, "chown",
		fmt.Sprintf("%s uid=%d gid=%d", telemetry.EscapeMax(path, pathBudget), uid, gid))
	return bindChown.original()(path, uid, gid)
}

// openStream is the pass-through for fopen: translate the stdio mode
// string and open through the standard library.
func openStream(path, mode string) (*os.File, error) {
	flags, err := streamFlags(mode)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(path, flags, 0666)
}

func streamFlags(mode string) (int, error) {
	if mode == "" {
		return 0, unix.EINVAL
	}
	plus := strings.Contains(mode, "+")
	switch mode[0] {
	case 'r':
		if plus {
			return os.O_RDWR, nil
		}
		return os.O_RDONLY, nil
	case 'w':
		if plus {
			return os.O_RDWR | os.O_CREATE | os.O_TRUNC, nil
		}
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC, nil
	case 'a':
		if plus {
			return os.O_RDWR | os.O_CREATE | os.O_APPEND, nil
		}
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND, nil
	}
	return 0, unix.EINVAL
}
