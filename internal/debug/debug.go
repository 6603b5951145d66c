// Package debug is the gated diagnostic log. Nothing is written unless
// debugging is enabled (build flag or DEBUG env) and an output is set.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/fiosym/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// QuietMode silences all logging, including Fatal, e.g. while stdout is piped
// into another tool and stderr belongs to it too
var QuietMode = false

// Components tagged on each line
const (
	componentAlloc  = "ALLOC"
	componentSymbol = "SYMBOL"
	componentTable  = "TABLE"
)

// sink is where log lines go; file is set when the sink owns a log file
type sink struct {
	mu   sync.Mutex
	w    io.Writer
	file *os.File
}

var out sink

func (s *sink) writer() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w
}

func (s *sink) set(w io.Writer, file *os.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w, s.file = w, file
}

// SetQuietMode enables or disables quiet mode
func SetQuietMode(enabled bool) {
	QuietMode = enabled
}

// SetDebugOutput directs log lines to w; nil disables output
func SetDebugOutput(w io.Writer) {
	out.set(w, nil)
}

// InitDebugLogFile opens a timestamped log file under the temp dir and
// directs output to it. Close it with CloseDebugLog.
func InitDebugLogFile() (string, error) {
	logDir := filepath.Join(os.TempDir(), "fiosym-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "debug-"+time.Now().Format("2006-01-02T150405")+".log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	out.set(file, file)
	return logPath, nil
}

// CloseDebugLog closes the log file opened by InitDebugLogFile, if any
func CloseDebugLog() error {
	out.mu.Lock()
	defer out.mu.Unlock()

	if out.file == nil {
		return nil
	}
	err := out.file.Close()
	out.w, out.file = nil, nil
	return err
}

// IsDebugEnabled returns true if debug mode is enabled and we're not in quiet mode
func IsDebugEnabled() bool {
	if QuietMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

func emit(prefix, format string, args []any) {
	if !IsDebugEnabled() {
		return
	}
	if w := out.writer(); w != nil {
		fmt.Fprintf(w, prefix+format, args...)
	}
}

// Printf writes an untagged debug line
func Printf(format string, args ...any) {
	emit("[DEBUG] ", format, args)
}

// Log writes a debug line tagged with component
func Log(component, format string, args ...any) {
	emit("[DEBUG:"+component+"] ", format, args)
}

// LogAlloc logs allocator decisions
func LogAlloc(format string, args ...any) {
	Log(componentAlloc, format, args...)
}

// LogSymbol logs symbol construction
func LogSymbol(format string, args ...any) {
	Log(componentSymbol, format, args...)
}

// LogTable logs interning table activity
func LogTable(format string, args ...any) {
	Log(componentTable, format, args...)
}

// Fatal records msg even when debugging is off and returns it as an error.
// Callers decide whether to exit.
func Fatal(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if !QuietMode {
		if w := out.writer(); w != nil {
			fmt.Fprintf(w, "[FATAL] %s", msg)
		}
	}
	return fmt.Errorf("fatal error: %s", msg)
}
