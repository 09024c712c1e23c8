package sentinel

import (
	"errors"
	"os"
	"os/exec"

	"github.com/sandboxkit/sentinel/pkg/telemetry"
	"golang.org/x/sys/unix"
)

// Exec overrides execve. Always reported.
func Exec(path string, argv, envp []string) error {
	telemetry.Emit(telemetry.TypeExec, "execve", telemetry.Escape(path))
	return bindExec.original()(path, argv, envp)
}

// System overrides system: run command through the shell and return its
// exit status. A status is returned even for non-zero exits; err is only
// set when the shell could not be run at all.
func System(command string) (int, error) {
	telemetry.Emit(telemetry.TypeExec, "system", telemetry.Escape(command))
	return bindSystem.original()(command)
}

// Popen overrides popen: start command through the shell with one end of
// a pipe attached. typ is "r" (read the command's stdout) or "w" (write
// its stdin).
func Popen(command, typ string) (*Pipe, error) {
	telemetry.Emit(telemetry.TypeExec, "popen", telemetry.Escape(command))
	return bindPopen.original()(command, typ)
}

// Pipe is one end of a shell pipeline started by Popen. Closing it also
// waits for the shell to exit, mirroring pclose.
type Pipe struct {
	*os.File
	cmd *exec.Cmd
}

func (p *Pipe) Close() error {
	err := p.File.Close()
	if werr := p.cmd.Wait(); err == nil {
		err = werr
	}
	return err
}

func runShell(command string) (int, error) {
	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

func openPipe(command, typ string) (*Pipe, error) {
	if typ != "r" && typ != "w" {
		return nil, unix.EINVAL
	}

	cmd := exec.Command("/bin/sh", "-c", command)
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	if typ == "r" {
		cmd.Stdout = w
	} else {
		cmd.Stdin = r
	}
	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if typ == "r" {
		w.Close()
		return &Pipe{File: r, cmd: cmd}, nil
	}
	r.Close()
	return &Pipe{File: w, cmd: cmd}, nil
}
