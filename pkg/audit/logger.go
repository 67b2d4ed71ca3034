package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/newtron-network/cfgnet/pkg/util"
)

// Logger defines the interface for audit logging backends
type Logger interface {
	Log(event *Event) error
	Close() error
}

// FileLogger appends audit events to a JSON-lines file
type FileLogger struct {
	path     string
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	rotation RotationConfig
}

// RotationConfig configures log file rotation
type RotationConfig struct {
	MaxSize    int64 // Max file size in bytes before rotation
	MaxBackups int   // Max number of old files to retain
}

// DefaultRotation keeps ten 10MB files.
var DefaultRotation = RotationConfig{
	MaxSize:    10 * 1024 * 1024,
	MaxBackups: 10,
}

// NewFileLogger opens path for appending, creating it if needed
func NewFileLogger(path string, rotation RotationConfig) (*FileLogger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}

	return &FileLogger{
		path:     path,
		file:     file,
		encoder:  json.NewEncoder(file),
		rotation: rotation,
	}, nil
}

// Path returns the file being written.
func (l *FileLogger) Path() string {
	return l.path
}

// Log writes an audit event to the log file
func (l *FileLogger) Log(event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rotation.MaxSize > 0 {
		if info, err := l.file.Stat(); err == nil && info.Size() >= l.rotation.MaxSize {
			if err := l.rotate(); err != nil {
				return fmt.Errorf("rotating audit log: %w", err)
			}
		}
	}

	return l.encoder.Encode(event)
}

// Close closes the log file
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Query reads the events in path that match filter, oldest first. Offset
// and Limit count back from the newest event, so Limit: 20 returns the
// last twenty. A missing file yields no events.
func Query(path string, filter Filter) ([]*Event, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Event{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var events []*Event
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			util.Warnf("audit: skipping malformed log entry at line %d: %v", lineNum, err)
			continue
		}
		if filter.matches(&event) {
			events = append(events, &event)
		}
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(events) {
			events = nil
		} else {
			events = events[:len(events)-filter.Offset]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(events) {
		events = events[len(events)-filter.Limit:]
	}

	return events, scanner.Err()
}

func (f Filter) matches(event *Event) bool {
	if f.Host != "" && event.Host != f.Host {
		return false
	}
	if f.User != "" && event.User != f.User {
		return false
	}
	if f.Operation != "" && event.Operation != f.Operation {
		return false
	}
	if !f.StartTime.IsZero() && event.Timestamp.Before(f.StartTime) {
		return false
	}
	if !f.EndTime.IsZero() && event.Timestamp.After(f.EndTime) {
		return false
	}
	if f.SuccessOnly && !event.Success {
		return false
	}
	if f.FailureOnly && event.Success {
		return false
	}
	return true
}

func (l *FileLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}

	// Rename current file with timestamp
	timestamp := time.Now().Format("20060102-150405.000000")
	if err := os.Rename(l.path, l.path+"."+timestamp); err != nil {
		return err
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file = file
	l.encoder = json.NewEncoder(file)

	if l.rotation.MaxBackups > 0 {
		l.cleanupOldFiles()
	}
	return nil
}

// cleanupOldFiles removes the oldest rotated files beyond MaxBackups.
func (l *FileLogger) cleanupOldFiles() {
	matches, err := filepath.Glob(l.path + ".*")
	if err != nil || len(matches) <= l.rotation.MaxBackups {
		return
	}

	// Rotated names embed the timestamp, so lexical order is age order.
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-l.rotation.MaxBackups] {
		os.Remove(path)
	}
}
