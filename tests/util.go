// Package testutil holds fixtures shared by the tests of several packages.
package testutil

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/user"
)

// Logger records every entry; it satisfies core.Logger.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
}

type Entry struct {
	Level string
	Msg   string
	Args  []interface{}
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: args})
	l.mu.Unlock()
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

func (l *Logger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entry
	for _, e := range l.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Contains tells whether an entry of the given level has msg as substring.
func (l *Logger) Contains(level, msg string) bool {
	for _, e := range l.Entries(level) {
		if strings.Contains(e.Msg, msg) {
			return true
		}
	}
	return false
}

// NewValidate returns a validator with every portal validator registered.
func NewValidate() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	school.InitValidators(validate, translator)
	return validate
}

// NewUser returns a user with a hashed secret.
func NewUser(t *testing.T, id, name, email, pwd string, role user.Role, class string) user.User {
	usr := user.User{
		ID:         id,
		Name:       name,
		Email:      email,
		Role:       role,
		ClassGroup: class,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("NewUser() failed: %v", err)
		}
	}
	return usr
}

// SequentialIDs returns an id generator yielding prefix-1, prefix-2, ...
func SequentialIDs(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
