// Sentinel-listen is a development stand-in for the sandbox monitor: it
// binds the telemetry socket, accepts connections from instrumented
// processes, and displays decoded event records. It makes no policy
// decisions.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sandboxkit/sentinel/pkg/display"
	"github.com/sandboxkit/sentinel/pkg/telemetry"
)

var socketPath string

var rootCmd = &cobra.Command{
	Use:   "sentinel-listen",
	Short: "Display sentinel telemetry from a sandboxed process",
	Long: `sentinel-listen binds the unix socket that instrumented processes
report to and renders their event records as they arrive. Use it in place
of the real sandbox monitor during development.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&socketPath, "socket", "",
		"unix socket path to listen on (defaults to $"+telemetry.EnvSocket+")")
	viper.BindPFlag("socket", rootCmd.Flags().Lookup("socket"))
	viper.BindEnv("socket", telemetry.EnvSocket)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	path := viper.GetString("socket")
	if path == "" {
		return errors.New("no socket path: pass --socket or set " + telemetry.EnvSocket)
	}

	// A previous run may have left its socket file behind.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return err
	}

	events := make(chan telemetry.Record, 100)
	go acceptLoop(ln, events)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	term := display.NewTerminal()
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	// Initial clear
	term.Display()

	for {
		select {
		case rec := <-events:
			term.AddEvent(rec)

		case <-ticker.C:
			term.Display()

		case <-sigChan:
			log.Println("Shutting down...")
			return teardown(ln, path)
		}
	}
}

func acceptLoop(ln net.Listener, events chan<- telemetry.Record) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go serve(conn, events)
	}
}

func serve(conn net.Conn, events chan<- telemetry.Record) {
	defer conn.Close()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		var rec telemetry.Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			continue
		}
		select {
		case events <- rec:
		default:
			// Senders never block on us; neither do we on the display.
		}
	}
}

func teardown(ln net.Listener, path string) error {
	var result *multierror.Error

	if err := ln.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}
