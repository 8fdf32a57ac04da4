package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sravya/xtrack/internal/config"
	"github.com/sravya/xtrack/internal/server"
)

var (
	flagServeAddr         string
	flagServeInterval     time.Duration
	flagServeDetach       bool
	flagServeRunFile      string
	flagServeLogFile      string
	flagServeEventsBuffer int
	flagServeChild        bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the expense HTTP API with live budget events",
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server process and API status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running server",
	RunE:  runServeStop,
}

func init() {
	defaultRun := filepath.Join(config.DataDir(), "xtrackd.json")
	defaultLog := filepath.Join(config.DataDir(), "xtrackd.log")

	pf := serveCmd.PersistentFlags()
	pf.StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	pf.DurationVar(&flagServeInterval, "interval", 0, "Store refresh interval (default from config)")
	pf.StringVar(&flagServeRunFile, "run-file", defaultRun, "File recording the running server's pid and address")
	pf.StringVar(&flagServeLogFile, "log-file", defaultLog, "Log file path for detached mode")
	pf.IntVar(&flagServeEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the server as a background process")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd, serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

// serveAddr returns the listen address: flag, then config and environment.
func serveAddr() string {
	if flagServeAddr != "" {
		return flagServeAddr
	}
	return appConfig.Server.Addr
}

func serveInterval() time.Duration {
	if flagServeInterval > 0 {
		return flagServeInterval
	}
	if s := appConfig.Server.RefreshIntervalSec; s > 0 {
		return time.Duration(s) * time.Second
	}
	return 15 * time.Second
}

func runServe(_ *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid server launch mode")
	}
	if flagServeDetach {
		return startServerDetached()
	}
	return runServerForeground()
}

func startServerDetached() error {
	if err := runFile(flagServeRunFile).claim(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating the xtrack binary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagServeLogFile), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	//nolint:gosec // log path is configured by the local user
	logf, err := os.OpenFile(flagServeLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening server log: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, childArgs(os.Args[1:])...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()

	if err := child.Start(); err != nil {
		return fmt.Errorf("launching background server: %w", err)
	}

	fmt.Printf("  Serving in the background (pid %d)\n", child.Process.Pid)
	fmt.Printf("  Run file: %s\n", flagServeRunFile)
	fmt.Printf("  API: http://%s/api/expenses\n", serveAddr())
	fmt.Printf("  Log: %s\n", flagServeLogFile)
	return nil
}

func runServerForeground() error {
	rf := runFile(flagServeRunFile)
	if err := rf.claim(); err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	addr := serveAddr()
	if err := rf.write(serverRuntimeState{
		PID:       os.Getpid(),
		Addr:      addr,
		StartedAt: time.Now(),
		DBPath:    appConfig.DBPath(),
	}); err != nil {
		return err
	}
	defer rf.remove()

	svc := server.New(server.Config{
		Addr:         addr,
		Interval:     serveInterval(),
		EventsBuffer: flagServeEventsBuffer,
		Categories:   appConfig.CategoryList(),
		Limits:       appConfig.BudgetLimits(),
	}, db)

	fmt.Printf("  xtrack server listening on http://%s\n", addr)
	fmt.Printf("  Refreshing every %s from %s\n", serveInterval(), appConfig.DBPath())
	fmt.Printf("  Stop with: xtrack serve stop --run-file %s\n", flagServeRunFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServeStatus(_ *cobra.Command, _ []string) error {
	run, err := runFile(flagServeRunFile).read()
	if err != nil {
		fmt.Printf("  Server: not running\n")
		return nil
	}
	if !pidRunning(run.PID) {
		fmt.Printf("  Server: exited without cleanup (pid %d)\n", run.PID)
		return nil
	}
	addr := run.Addr
	if addr == "" {
		addr = serveAddr()
	}

	fmt.Printf("  Server PID: %d (up since %s)\n", run.PID, run.StartedAt.Local().Format(time.DateTime))
	fmt.Printf("  Address: http://%s\n", addr)
	fmt.Printf("  Database: %s\n", run.DBPath)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // local status request
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st server.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	if st.LastRefreshAt.IsZero() {
		fmt.Printf("  Last refresh: pending\n")
	} else {
		fmt.Printf("  Last refresh: %s\n", st.LastRefreshAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Refresh count: %d\n", st.RefreshCount)
	fmt.Printf("  Expenses: %d\n", st.Summary.Count)
	fmt.Printf("  Total spent: %s\n", money(st.Summary.TotalSpent))
	fmt.Printf("  Top category: %s\n", st.Summary.TopCategory)
	fmt.Printf("  Over budget: %d categories\n", len(st.Summary.Alerts))
	fmt.Printf("  Stream subscribers: %d\n", st.SubscriberCount)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	rf := runFile(flagServeRunFile)
	run, err := rf.read()
	if err != nil {
		return errors.New("no xtrack server is running")
	}
	proc, err := os.FindProcess(run.PID)
	if err == nil {
		err = proc.Signal(syscall.SIGTERM)
	}
	if err != nil {
		return fmt.Errorf("asking pid %d to stop: %w", run.PID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	tick := time.NewTicker(150 * time.Millisecond)
	defer tick.Stop()
	for pidRunning(run.PID) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("pid %d is still serving after SIGTERM", run.PID)
		case <-tick.C:
		}
	}
	rf.remove()
	fmt.Printf("  Server on %s stopped (pid %d)\n", run.Addr, run.PID)
	return nil
}
