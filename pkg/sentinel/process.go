package sentinel

import (
	"fmt"
	"syscall"

	"github.com/sandboxkit/sentinel/pkg/telemetry"
	"golang.org/x/sys/unix"
)

// Ptrace overrides ptrace. Every request code is reported, including
// self-inspection requests from debugging helpers that may themselves be
// routed through this layer; no attempt is made to tell them apart.
func Ptrace(request, pid int, addr, data uintptr) (uintptr, error) {
	telemetry.Emit(telemetry.TypeInjection, "ptrace", fmt.Sprintf("request=%d", request))
	return bindPtrace.original()(request, pid, addr, data)
}

// Setuid overrides setuid. Always reported.
func Setuid(uid int) error {
	telemetry.Emit(telemetry.TypePrivilege, "setuid", fmt.Sprintf("uid=%d", uid))
	return bindSetuid.original()(uid)
}

// Setgid overrides setgid. Always reported.
func Setgid(gid int) error {
	telemetry.Emit(telemetry.TypePrivilege, "setgid", fmt.Sprintf("gid=%d", gid))
	return bindSetgid.original()(gid)
}

// ForkExec overrides process duplication. The event goes out before the
// call so the parent's record is on the wire no matter what the new
// process does with the inherited descriptors. A child that forks without
// exec must call ResetAfterFork before emitting anything.
func ForkExec(argv0 string, argv []string, attr *syscall.ProcAttr) (int, error) {
	telemetry.Emit(telemetry.TypeProcess, "fork", "")
	return bindFork.original()(argv0, argv, attr)
}

func ptraceRaw(request, pid int, addr, data uintptr) (uintptr, error) {
	r1, _, errno := unix.Syscall6(unix.SYS_PTRACE,
		uintptr(request), uintptr(pid), addr, data, 0, 0)
	if errno != 0 {
		return 0, errno
	}
	return r1, nil
}
