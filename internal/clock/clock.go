// Package clock abstracts the device clock so the live board can be driven by
// real time, a pinned demo time, or a test-controlled time.
package clock

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Clock provides the current local time.
type Clock interface {
	Now() time.Time
	NowUnixMilli() int64
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) NowUnixMilli() int64 {
	return time.Now().UnixMilli()
}

// MockClock is a thread-safe, manually driven clock for tests.
type MockClock struct {
	currentTime time.Time
	mu          sync.Mutex
}

// NewMockClock creates a MockClock set to t.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime
}

func (m *MockClock) NowUnixMilli() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime.UnixMilli()
}

// Set changes the current time.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}

// Advance moves the clock by d, which may be negative.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

// EnvironmentClock pins the time from an environment variable or a file, which
// is how a kiosk display is put into a fixed demo minute. The source is re-read
// on every call so the pinned time can be changed while the board is running.
// Priority: environment variable > file > system time.
type EnvironmentClock struct {
	envVar   string
	filePath string
	location *time.Location
	now      func() time.Time
}

// NewEnvironmentClock creates an EnvironmentClock. A nil location means time.Local.
func NewEnvironmentClock(envVar string, filePath string, location *time.Location) *EnvironmentClock {
	if location == nil {
		location = time.Local
	}
	return &EnvironmentClock{
		envVar:   envVar,
		filePath: filePath,
		location: location,
		now:      time.Now,
	}
}

// New returns an EnvironmentClock when a pin source is configured and a RealClock otherwise.
func New(envVar, filePath string, location *time.Location) Clock {
	if envVar == "" && filePath == "" {
		return RealClock{}
	}
	return NewEnvironmentClock(envVar, filePath, location)
}

func (e *EnvironmentClock) Now() time.Time {
	if t, err := e.syncFromEnvVar(); err == nil {
		return t
	}
	if t, err := e.syncFromFile(); err == nil {
		return t
	}
	slog.Debug("environment clock has no usable pin, using system time",
		slog.String("envVar", e.envVar), slog.String("filePath", e.filePath))
	return e.now()
}

func (e *EnvironmentClock) NowUnixMilli() int64 {
	return e.Now().UnixMilli()
}

func (e *EnvironmentClock) syncFromEnvVar() (time.Time, error) {
	if e.envVar == "" {
		return time.Time{}, errors.New("environment variable name not configured")
	}
	value := os.Getenv(e.envVar)
	if value == "" {
		return time.Time{}, errors.New("environment variable is empty: " + e.envVar)
	}
	return e.parseTime(value)
}

func (e *EnvironmentClock) syncFromFile() (time.Time, error) {
	if e.filePath == "" {
		return time.Time{}, errors.New("file path not configured")
	}
	data, err := os.ReadFile(e.filePath)
	if err != nil {
		return time.Time{}, err
	}
	return e.parseTime(string(data))
}

// parseTime accepts RFC3339, local date-times, a bare date, or a bare
// HH:MM which pins the time of day on the current system date.
func (e *EnvironmentClock) parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(e.location), nil
	}

	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, s, e.location); err == nil {
			return t, nil
		}
	}

	if tod, err := time.ParseInLocation("15:04", s, e.location); err == nil {
		y, m, d := e.now().In(e.location).Date()
		return time.Date(y, m, d, tod.Hour(), tod.Minute(), 0, 0, e.location), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse time %q: expected RFC3339, YYYY-MM-DD HH:MM[:SS], YYYY-MM-DD or HH:MM", s)
}
