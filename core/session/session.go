// Package session persists the identity of the signed-in viewer across restarts.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/user"
)

// Slot is a single key-value slot holding the serialized identity.
type Slot interface {
	// Load returns nil data when the slot is empty.
	Load() ([]byte, error)
	Store(data []byte) error
	Clear() error
}

// LookupFunc finds a user in the freshly loaded users.
type LookupFunc func(id string) (user.User, bool)

var (
	errCorrupted = errors.New("corrupted session record")

	NowFunc = time.Now // mockable
)

// Claims is the identity stored in the slot.
type Claims struct {
	jwt.RegisteredClaims
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       user.Role `json:"role"`
	ClassGroup string    `json:"class_group,omitempty"`
}

type Manager struct {
	slot   Slot
	secret []byte
	ttl    time.Duration
	logger core.Logger
}

// NewManager returns a Manager; a zero ttl keeps stored identities valid until the user is gone.
func NewManager(slot Slot, secretKey string, ttl time.Duration, logger core.Logger) *Manager {
	return &Manager{
		slot:   slot,
		secret: []byte(secretKey),
		ttl:    ttl,
		logger: logger,
	}
}

// Persist stores usr as the current identity.
// It is called on login and on every self-update so the stored identity stays fresh.
func (m *Manager) Persist(usr user.User) error {
	now := NowFunc()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  usr.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Name:       usr.Name,
		Email:      usr.Email,
		Role:       usr.Role,
		ClassGroup: usr.ClassGroup,
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return errors.Wrap(err, "signing session")
	}
	return errors.Wrap(m.slot.Store([]byte(token)), "storing session")
}

// Restore returns the stored viewer if it still exists among the loaded users.
// Unreadable, expired or dangling identities are cleared silently.
func (m *Manager) Restore(lookup LookupFunc) (user.User, bool) {
	data, err := m.slot.Load()
	if err != nil {
		m.logger.Error("session: load failed", err)
		return user.User{}, false
	}
	if len(data) == 0 {
		return user.User{}, false
	}

	claims, err := m.decode(data)
	if err != nil {
		m.logger.Debug("session: discarding stored identity", err)
		m.clear()
		return user.User{}, false
	}
	usr, ok := lookup(claims.Subject)
	if !ok {
		m.logger.Info("session: stored user no longer exists", claims.Subject)
		m.clear()
		return user.User{}, false
	}
	return usr, true
}

func (m *Manager) Clear() error {
	return errors.Wrap(m.slot.Clear(), "clearing session")
}

func (m *Manager) clear() {
	if err := m.Clear(); err != nil {
		m.logger.Error("session: clear failed", err)
	}
}

func (m *Manager) decode(data []byte) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		string(data),
		claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(NowFunc),
	)
	if err != nil {
		return nil, errors.Wrap(errCorrupted, err.Error())
	}
	if claims.Subject == "" {
		return nil, errCorrupted
	}
	return claims, nil
}
