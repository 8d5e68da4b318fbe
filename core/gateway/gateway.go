// Package gateway defines the boundary between the portal and the remote store.
//
// Every backend translates between its wire schema and the domain types of
// core/user and core/school; callers never see wire field names.
package gateway

import (
	"context"
	"errors"

	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/user"
)

// ErrTableMissing is returned by LoadAll when the underlying table was never provisioned.
var ErrTableMissing = errors.New("remote table does not exist")

// Fields holds a partial update keyed by domain field name (e.g. "Name", "ClassGroup").
type Fields map[string]interface{}

// Collection is the per-entity CRUD boundary of the remote store.
type Collection[T any] interface {
	LoadAll(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, item T) error
	Update(ctx context.Context, id string, fields Fields) error
	Upsert(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
}

// SettingsStore is the boundary of the settings singleton.
type SettingsStore interface {
	// Load returns ok == false when the settings row does not exist yet.
	Load(ctx context.Context) (settings school.Settings, ok bool, err error)
	Upsert(ctx context.Context, settings school.Settings) error
}

// Gateway groups the collections of a backend.
type Gateway struct {
	Users         Collection[user.User]
	ClassGroups   Collection[school.ClassGroup]
	Announcements Collection[school.Announcement]
	Exams         Collection[school.Exam]
	Polls         Collection[school.Poll]
	Resources     Collection[school.Resource]
	Settings      SettingsStore
}
