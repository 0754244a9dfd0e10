// Package testutil provides shared test helpers: a recording logger and a
// seeded sampler that draws points uniformly from simple polygons.
package testutil

import (
	"sync"

	"github.com/turtacn/positivity/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger and records every entry. Children
// returned by With and Named share the parent's record.
type MockLogger struct {
	rec    *record
	fields []logging.Field
	name   string
}

type record struct {
	mu       sync.Mutex
	messages []LogMessage
}

// LogMessage represents a single log entry captured by MockLogger.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the named field and whether it was present.
func (m LogMessage) Field(key string) (interface{}, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// NewMockLogger creates a new MockLogger instance.
func NewMockLogger() *MockLogger {
	return &MockLogger{rec: &record{}}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	m.rec.messages = append(m.rec.messages, LogMessage{Level: level, Logger: m.name, Message: msg, Fields: all})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log(logging.LevelDebug, msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log(logging.LevelInfo, msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log(logging.LevelWarn, msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log(logging.LevelError, msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	child := &MockLogger{rec: m.rec, name: m.name}
	child.fields = append(append(child.fields, m.fields...), fields...)
	return child
}

func (m *MockLogger) Named(name string) logging.Logger {
	full := name
	if m.name != "" {
		full = m.name + "." + name
	}
	return &MockLogger{rec: m.rec, fields: m.fields, name: full}
}

func (m *MockLogger) Sync() error { return nil }

// GetMessages returns a copy of all logged messages.
func (m *MockLogger) GetMessages() []LogMessage {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	result := make([]LogMessage, len(m.rec.messages))
	copy(result, m.rec.messages)
	return result
}

// Clear removes all logged messages.
func (m *MockLogger) Clear() {
	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	m.rec.messages = m.rec.messages[:0]
}

// HasMessage checks if a message with the given level and content was logged.
func (m *MockLogger) HasMessage(level, msg string) bool {
	for _, logged := range m.GetMessages() {
		if logged.Level == level && logged.Message == msg {
			return true
		}
	}
	return false
}

// CountLevel returns how many entries were logged at level.
func (m *MockLogger) CountLevel(level string) int {
	n := 0
	for _, logged := range m.GetMessages() {
		if logged.Level == level {
			n++
		}
	}
	return n
}

//Personal.AI order the ending
