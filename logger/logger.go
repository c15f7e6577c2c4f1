// This file is part of dsdecomp.
//
// dsdecomp is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// dsdecomp is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with dsdecomp.  If not, see <https://www.gnu.org/licenses/>.

// Package logger is a small process-wide logger used to record the
// "informational" and "warning" events the analysis pipeline produces
// (symbol renames, ambiguous relocations, heuristic recoveries). It keeps a
// bounded in-memory tail so a CLI command can print "what just happened"
// without re-running the analysis.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// entry is a single recorded log line.
type entry struct {
	tag string
	msg string
}

func (e entry) String() string {
	return fmt.Sprintf("%s: %s", e.tag, e.msg)
}

const defaultCapacity = 500

var central = struct {
	mu       sync.Mutex
	entries  []entry
	capacity int
}{capacity: defaultCapacity}

// SetCapacity changes how many recent entries are retained by Tail. Existing
// entries beyond the new capacity are discarded immediately.
func SetCapacity(n int) {
	central.mu.Lock()
	defer central.mu.Unlock()
	central.capacity = n
	if len(central.entries) > n {
		central.entries = central.entries[len(central.entries)-n:]
	}
}

// Log records a single log entry under tag. value is formatted with %v
// unless it is already a string.
func Log(tag string, value any) {
	msg, ok := value.(string)
	if !ok {
		msg = fmt.Sprintf("%v", value)
	}
	record(tag, msg)
}

// Logf is the formatted equivalent of Log.
func Logf(tag string, format string, args ...any) {
	record(tag, fmt.Sprintf(format, args...))
}

func record(tag, msg string) {
	central.mu.Lock()
	defer central.mu.Unlock()
	central.entries = append(central.entries, entry{tag: tag, msg: msg})
	if central.capacity > 0 && len(central.entries) > central.capacity {
		central.entries = central.entries[len(central.entries)-central.capacity:]
	}
}

// Write dumps every retained entry to w, oldest first.
func Write(w io.Writer) {
	central.mu.Lock()
	defer central.mu.Unlock()
	for _, e := range central.entries {
		fmt.Fprintln(w, e.String())
	}
}

// Tail writes the n most recently recorded entries to w, oldest first.
func Tail(w io.Writer, n int) {
	central.mu.Lock()
	entries := central.entries
	if n < len(entries) {
		entries = entries[len(entries)-n:]
	}
	// copy out from under the lock before writing
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	central.mu.Unlock()

	fmt.Fprint(w, strings.Join(lines, "\n"))
	if len(lines) > 0 {
		fmt.Fprintln(w)
	}
}

// Clear discards every retained entry. Useful between test cases.
func Clear() {
	central.mu.Lock()
	defer central.mu.Unlock()
	central.entries = nil
}
