// Package inmemdb is an in-memory remote store, used by tests and for local demos.
package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/classpoll/core/gateway"
	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/user"
)

type DB struct {
	Users         *Table[user.User]
	ClassGroups   *Table[school.ClassGroup]
	Announcements *Table[school.Announcement]
	Exams         *Table[school.Exam]
	Polls         *Table[school.Poll]
	Resources     *Table[school.Resource]
	Settings      *SettingsTable
}

func Open() *DB {
	return &DB{
		Users:         NewTable[user.User](),
		ClassGroups:   NewTable[school.ClassGroup](),
		Announcements: NewTable[school.Announcement](),
		Exams:         NewTable[school.Exam](),
		Polls:         NewTable[school.Poll](),
		Resources:     NewTable[school.Resource](),
		Settings:      &SettingsTable{failures: make(map[Op]error)},
	}
}

// Gateway exposes db as a gateway.Gateway.
func (db *DB) Gateway() gateway.Gateway {
	return gateway.Gateway{
		Users:         db.Users,
		ClassGroups:   db.ClassGroups,
		Announcements: db.Announcements,
		Exams:         db.Exams,
		Polls:         db.Polls,
		Resources:     db.Resources,
		Settings:      db.Settings,
	}
}

// SettingsTable holds the settings singleton.
type SettingsTable struct {
	mutex    sync.RWMutex
	row      *school.Settings
	calls    []Call
	failures map[Op]error
}

var _ gateway.SettingsStore = (*SettingsTable)(nil)

func (t *SettingsTable) FailOn(op Op, err error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err == nil {
		delete(t.failures, op)
		return
	}
	t.failures[op] = err
}

func (t *SettingsTable) Calls() []Call {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return append([]Call(nil), t.calls...)
}

// Row returns the stored settings, bypassing call recording.
func (t *SettingsTable) Row() (school.Settings, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	if t.row == nil {
		return school.Settings{}, false
	}
	return *t.row, true
}

func (t *SettingsTable) Load(_ context.Context) (school.Settings, bool, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.calls = append(t.calls, Call{Op: OpLoadAll, ID: school.SettingsID})
	if err := t.failures[OpLoadAll]; err != nil {
		return school.Settings{}, false, err
	}
	if t.row == nil {
		return school.Settings{}, false, nil
	}
	return *t.row, true, nil
}

func (t *SettingsTable) Upsert(_ context.Context, settings school.Settings) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.calls = append(t.calls, Call{Op: OpUpsert, ID: school.SettingsID})
	if err := t.failures[OpUpsert]; err != nil {
		return err
	}
	t.row = &settings
	return nil
}
