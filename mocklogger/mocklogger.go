// mocklogger/mocklogger.go
package mocklogger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockLogger wraps a zap sugared logger whose output is captured in memory,
// letting tests assert on emitted log entries instead of scraping stdout.
type MockLogger struct {
	Sugar *zap.SugaredLogger
	Logs  *observer.ObservedLogs
}

// NewMockLogger returns a MockLogger capturing every entry at debug level and above.
func NewMockLogger() *MockLogger {
	core, logs := observer.New(zapcore.DebugLevel)
	return &MockLogger{
		Sugar: zap.New(core).Sugar(),
		Logs:  logs,
	}
}

// AllMessages returns the message of every captured entry, oldest first.
func (m *MockLogger) AllMessages() []string {
	entries := m.Logs.All()
	messages := make([]string, 0, len(entries))
	for _, entry := range entries {
		messages = append(messages, entry.Message)
	}
	return messages
}

// LastEntry returns the most recently captured entry, or nil if nothing was logged.
func (m *MockLogger) LastEntry() *observer.LoggedEntry {
	entries := m.Logs.All()
	if len(entries) == 0 {
		return nil
	}
	return &entries[len(entries)-1]
}
