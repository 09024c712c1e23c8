package sentinel

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sandboxkit/sentinel/pkg/telemetry"
)

type monitor struct {
	path    string
	records chan telemetry.Record
	conns   atomic.Int32
}

func startMonitor(t *testing.T) *monitor {
	t.Helper()

	m := &monitor{
		path:    filepath.Join(t.TempDir(), "monitor.sock"),
		records: make(chan telemetry.Record, 16),
	}

	ln, err := net.Listen("unix", m.path)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			m.conns.Add(1)
			go func(c net.Conn) {
				defer c.Close()
				sc := bufio.NewScanner(c)
				for sc.Scan() {
					var rec telemetry.Record
					if json.Unmarshal(sc.Bytes(), &rec) == nil {
						m.records <- rec
					}
				}
			}(conn)
		}
	}()

	return m
}

func (m *monitor) waitRecord(t *testing.T) telemetry.Record {
	t.Helper()
	select {
	case rec := <-m.records:
		return rec
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a record")
		return telemetry.Record{}
	}
}

func (m *monitor) assertNoRecord(t *testing.T) {
	t.Helper()
	select {
	case rec := <-m.records:
		t.Fatalf("unexpected record: %+v", rec)
	case <-time.After(100 * time.Millisecond):
	}
}

// arm points the process channel at the monitor. The load hook settles the
// channel before tests can set the environment, so re-arm explicitly.
func arm(t *testing.T, m *monitor) {
	t.Helper()
	t.Setenv(telemetry.EnvSocket, m.path)
	telemetry.Reset()
	t.Cleanup(telemetry.Reset)
}

// disarm runs a test with telemetry disabled.
func disarm(t *testing.T) {
	t.Helper()
	t.Setenv(telemetry.EnvSocket, "")
	telemetry.Reset()
	t.Cleanup(telemetry.Reset)
}
