// Package testutil holds helpers shared by the test suites.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/user"
)

func CreateUser(t *testing.T, repo user.Repository, email, pwd string, isActive bool, createdAt ...time.Time) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Email:     email,
		IsActive:  isActive,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// Logger is a core.Logger that records entries; it writes to the test log when verbose.
type Logger struct {
	t       *testing.T
	mu      sync.Mutex
	entries []string
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(t *testing.T) *Logger {
	return &Logger{t: t}
}

// Entries returns "LEVEL: msg" lines logged so far.
func (l *Logger) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]string, len(l.entries))
	copy(entries, l.entries)
	return entries
}

func (l *Logger) log(level, msg string) {
	l.mu.Lock()
	l.entries = append(l.entries, level+": "+msg)
	l.mu.Unlock()
	if testing.Verbose() {
		fmt.Printf("%s: %s\n", level, msg)
	}
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log("DEBUG", msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log("INFO", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log("WARN", msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log("ERROR", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) {
	l.log("FATAL", msg)
	l.t.Errorf("fatal: %s", msg)
}
