package sentinel

import (
	"fmt"

	"github.com/sandboxkit/sentinel/pkg/telemetry"
	"golang.org/x/sys/unix"
)

// Socket overrides socket. Reported only for non-local domains: unix
// domain sockets are how local plumbing (including this layer's own
// channel) talks, and are not security-relevant.
func Socket(domain, typ, proto int) (int, error) {
	if domain != unix.AF_UNIX {
		telemetry.Emit(telemetry.TypeNetwork, "socket",
			fmt.Sprintf("domain=%d type=%d", domain, typ))
	}
	return bindSocket.original()(domain, typ, proto)
}

// Connect overrides connect. Reported only when the target address is not
// in the unix domain.
func Connect(fd int, sa unix.Sockaddr) error {
	if remoteFamily(sa) {
		telemetry.Emit(telemetry.TypeNetwork, "connect", "")
	}
	return bindConnect.original()(fd, sa)
}

// Bind overrides bind, with the same filter as Connect.
func Bind(fd int, sa unix.Sockaddr) error {
	if remoteFamily(sa) {
		telemetry.Emit(telemetry.TypeNetwork, "bind", "")
	}
	return bindBind.original()(fd, sa)
}

// remoteFamily reports whether sa targets anything other than the local
// unix domain. A nil sockaddr stays quiet.
func remoteFamily(sa unix.Sockaddr) bool {
	if sa == nil {
		return false
	}
	_, local := sa.(*unix.SockaddrUnix)
	return !local
}
