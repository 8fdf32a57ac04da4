package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"
)

// serverRuntimeState is what a running server records about itself.
type serverRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path"`
}

// runFile is the JSON record of the server owning the local database.
// Only one server may hold it at a time.
type runFile string

func (f runFile) read() (serverRuntimeState, error) {
	var st serverRuntimeState
	//nolint:gosec // run file path is configured by the local user
	data, err := os.ReadFile(string(f))
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("run file %s is corrupt: %w", f, err)
	}
	if st.PID <= 0 {
		return st, fmt.Errorf("run file %s names no process", f)
	}
	return st, nil
}

func (f runFile) write(st serverRuntimeState) error {
	if err := os.MkdirAll(filepath.Dir(string(f)), 0o750); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(string(f), append(data, '\n'), 0o600)
}

func (f runFile) remove() { _ = os.Remove(string(f)) }

// claim fails while another live server owns the file. A leftover record
// from a dead or unreadable one is cleared.
func (f runFile) claim() error {
	st, err := f.read()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err == nil && pidRunning(st.PID):
		return fmt.Errorf("xtrack is already serving on %s (pid %d)", st.Addr, st.PID)
	}
	f.remove()
	return nil
}

// pidRunning reports whether pid names a live process, including one owned
// by another user.
func pidRunning(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// childArgs rewrites the current invocation for the background process.
func childArgs(args []string) []string {
	out := slices.DeleteFunc(slices.Clone(args), func(a string) bool {
		return a == "--detach" || strings.HasPrefix(a, "--detach=")
	})
	return append(out, "--child")
}
