// Package state holds the in-memory snapshot of every portal collection.
package state

import (
	"errors"
	"sort"
	"sync"

	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/user"
)

var ErrNotFound = errors.New("entity not found in cache")

// Snapshot is a full load of the remote store.
type Snapshot struct {
	Users         []user.User
	ClassGroups   []school.ClassGroup
	Announcements []school.Announcement
	Exams         []school.Exam
	Polls         []school.Poll
	Resources     []school.Resource
	Settings      school.Settings
}

// Cache is the single owned store the portal reads from and mutates.
// Announcements, polls and resources list the newest first; users, class groups
// and exams list in insertion order.
type Cache struct {
	Users         *Collection[user.User]
	ClassGroups   *Collection[school.ClassGroup]
	Announcements *Collection[school.Announcement]
	Exams         *Collection[school.Exam]
	Polls         *Collection[school.Poll]
	Resources     *Collection[school.Resource]

	mu       sync.RWMutex
	settings school.Settings
}

func NewCache() *Cache {
	return &Cache{
		Users:         NewCollection[user.User](false),
		ClassGroups:   NewCollection[school.ClassGroup](false),
		Announcements: NewCollection[school.Announcement](true),
		Exams:         NewCollection[school.Exam](false),
		Polls:         NewCollection[school.Poll](true),
		Resources:     NewCollection[school.Resource](true),
		settings:      school.DefaultSettings(),
	}
}

// Replace assigns every collection from snap. Each collection is swapped atomically.
// Class groups are ordered by name.
func (c *Cache) Replace(snap Snapshot) {
	classes := append([]school.ClassGroup(nil), snap.ClassGroups...)
	sort.SliceStable(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })

	c.Users.Set(snap.Users)
	c.ClassGroups.Set(classes)
	c.Announcements.Set(snap.Announcements)
	c.Exams.Set(snap.Exams)
	c.Polls.Set(snap.Polls)
	c.Resources.Set(snap.Resources)
	c.SetSettings(snap.Settings)
}

func (c *Cache) Settings() school.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

func (c *Cache) SetSettings(settings school.Settings) {
	c.mu.Lock()
	c.settings = settings
	c.mu.Unlock()
}

// UserByEmail finds a user by email, ignoring case.
func (c *Cache) UserByEmail(email string) (user.User, bool) {
	return c.Users.FindFunc(func(u user.User) bool { return u.HasEmail(email) })
}

// ClassGroupByName finds a class group by its exact name.
func (c *Cache) ClassGroupByName(name string) (school.ClassGroup, bool) {
	return c.ClassGroups.FindFunc(func(cg school.ClassGroup) bool { return cg.Name == name })
}
