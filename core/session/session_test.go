package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classpoll/core/user"
	"github.com/trezcool/classpoll/tests"
)

func lookupIn(users ...user.User) LookupFunc {
	return func(id string) (user.User, bool) {
		for _, u := range users {
			if u.ID == id {
				return u, true
			}
		}
		return user.User{}, false
	}
}

func TestManager_Restore(t *testing.T) {
	awa := user.User{ID: "u1", Name: "Awa", Email: "awa@school.sn", Role: user.RoleStudent, ClassGroup: "6eA"}
	promoted := awa
	promoted.Role = user.RoleResponsible

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	tests := []struct {
		name      string
		stored    func(m *Manager, slot *MemorySlot)
		lookup    LookupFunc
		wantUser  *user.User
		wantEmpty bool
	}{
		{
			name:      "nothing stored",
			stored:    func(*Manager, *MemorySlot) {},
			lookup:    lookupIn(awa),
			wantEmpty: true,
		},
		{
			name:     "existing user",
			stored:   func(m *Manager, _ *MemorySlot) { require.NoError(t, m.Persist(awa)) },
			lookup:   lookupIn(awa),
			wantUser: &awa,
		},
		{
			name:     "returns the freshly loaded record",
			stored:   func(m *Manager, _ *MemorySlot) { require.NoError(t, m.Persist(awa)) },
			lookup:   lookupIn(promoted),
			wantUser: &promoted,
		},
		{
			name:      "deleted user",
			stored:    func(m *Manager, _ *MemorySlot) { require.NoError(t, m.Persist(awa)) },
			lookup:    lookupIn(),
			wantEmpty: true,
		},
		{
			name:      "corrupted record",
			stored:    func(_ *Manager, s *MemorySlot) { _ = s.Store([]byte("{not a token")) },
			lookup:    lookupIn(awa),
			wantEmpty: true,
		},
		{
			name:      "bad signature",
			stored:    func(_ *Manager, s *MemorySlot) { _ = s.Store([]byte(forged)) },
			lookup:    lookupIn(awa),
			wantEmpty: true,
		},
		{
			name: "expired",
			stored: func(m *Manager, _ *MemorySlot) {
				NowFunc = func() time.Time { return time.Now().Add(-48 * time.Hour) }
				defer func() { NowFunc = time.Now }()
				require.NoError(t, m.Persist(awa))
			},
			lookup:    lookupIn(awa),
			wantEmpty: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := NewMemorySlot()
			logger := new(testutil.Logger)
			m := NewManager(slot, "secret", 24*time.Hour, logger)
			tt.stored(m, slot)

			got, ok := m.Restore(tt.lookup)
			if tt.wantUser != nil {
				assert.True(t, ok)
				assert.Equal(t, *tt.wantUser, got)
				data, _ := slot.Load()
				assert.NotEmpty(t, data, "valid session must be kept")
			} else {
				assert.False(t, ok)
				assert.Equal(t, user.User{}, got)
			}
			if tt.wantEmpty {
				data, _ := slot.Load()
				assert.Nil(t, data, "invalid session must be cleared")
				assert.Empty(t, logger.Entries("error"))
			}
		})
	}
}

func TestManager_Restore_noTTL(t *testing.T) {
	slot := NewMemorySlot()
	m := NewManager(slot, "secret", 0, new(testutil.Logger))
	usr := user.User{ID: "u1", Role: user.RoleStudent, ClassGroup: "6eA"}

	NowFunc = func() time.Time { return time.Now().AddDate(-2, 0, 0) }
	t.Cleanup(func() { NowFunc = time.Now })
	require.NoError(t, m.Persist(usr))
	NowFunc = time.Now

	got, ok := m.Restore(lookupIn(usr))
	assert.True(t, ok, "without a ttl only the user's existence matters")
	assert.Equal(t, usr, got)
}

func TestManager_PersistClear(t *testing.T) {
	slot := NewMemorySlot()
	m := NewManager(slot, "secret", 0, new(testutil.Logger))
	usr := user.User{ID: "u1", Role: user.RoleAdmin}

	require.NoError(t, m.Persist(usr))
	_, ok := m.Restore(lookupIn(usr))
	assert.True(t, ok)

	require.NoError(t, m.Clear())
	_, ok = m.Restore(lookupIn(usr))
	assert.False(t, ok)
}
