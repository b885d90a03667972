// Package history records relnotes command runs in a JSON Lines log under
// the state directory. One line per run keeps appends cheap and lets other
// tooling tail the file without parsing the whole log.
package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// historyFileName is the log file name inside the state directory.
const historyFileName = "history.jsonl"

// HistoryEntry is one recorded command run.
type HistoryEntry struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`
	// Timestamp is when the command finished.
	Timestamp time.Time `json:"timestamp"`
	// Command is the subcommand name, e.g. "lint" or "release".
	Command string `json:"command"`
	// Target is what the command operated on: a fragment path for lint
	// and sync, a version for release. Empty when not applicable.
	Target string `json:"target,omitempty"`
	// ExitCode is the process exit code the run ended with.
	ExitCode int `json:"exit_code"`
	// Duration is the wall-clock run time, formatted by time.Duration.String.
	Duration string `json:"duration"`
	// Findings is the number of lint findings, for lint and check runs.
	Findings int `json:"findings,omitempty"`
}

// HistoryFile is the decoded run log.
type HistoryFile struct {
	Entries []HistoryEntry
}

// HistoryFilePath returns the log path for a state directory.
func HistoryFilePath(stateDir string) string {
	return filepath.Join(stateDir, historyFileName)
}

// LoadHistory reads the run log from the state directory.
// A missing file yields an empty history. Malformed lines are dropped so
// a truncated write cannot wedge every later command.
func LoadHistory(stateDir string) (*HistoryFile, error) {
	path := HistoryFilePath(stateDir)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &HistoryFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	history := &HistoryFile{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry HistoryEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		history.Entries = append(history.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return history, nil
}

// SaveHistory writes the run log back to the state directory, creating it
// if needed.
func SaveHistory(stateDir string, history *HistoryFile) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, entry := range history.Entries {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("encoding history entry: %w", err)
		}
	}

	if err := os.WriteFile(HistoryFilePath(stateDir), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// ClearHistory removes the run log. Missing files are not an error.
func ClearHistory(stateDir string) error {
	err := os.Remove(HistoryFilePath(stateDir))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing history: %w", err)
	}
	return nil
}
