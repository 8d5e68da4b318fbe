// Package portal is the state synchronization layer of the school portal.
//
// The Service loads every collection from the remote store into a state.Cache,
// restores the viewer's session, serves role-filtered views and applies every
// mutation optimistically: the cache changes first, then the remote write runs
// in the background and its failure is only logged.
package portal

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/gateway"
	"github.com/trezcool/classpoll/core/quiz"
	"github.com/trezcool/classpoll/core/session"
	"github.com/trezcool/classpoll/core/state"
	"github.com/trezcool/classpoll/core/user"
)

type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "loading"
	}
}

var (
	NowFunc = time.Now // mockable
	newID   = func() string { return uuid.NewString() }
)

type Service struct {
	gw           gateway.Gateway
	cache        *state.Cache
	sessions     *session.Manager
	quiz         quiz.Generator
	validate     *validator.Validate
	logger       core.Logger
	writeTimeout time.Duration

	mu      sync.RWMutex
	viewer  *user.User
	status  Status
	loadErr error

	writes sync.WaitGroup
	cron   *cron.Cron // guarded by mu
}

func NewService(
	conf *core.Config,
	gw gateway.Gateway,
	cache *state.Cache,
	sessions *session.Manager,
	gen quiz.Generator,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	if gen == nil {
		gen = quiz.Disabled{}
	}
	return &Service{
		gw:           gw,
		cache:        cache,
		sessions:     sessions,
		quiz:         gen,
		validate:     validate,
		logger:       logger,
		writeTimeout: conf.Remote.WriteTimeout,
		status:       StatusLoading,
	}
}

// Status returns the load status and, when unavailable, the error that caused it.
func (svc *Service) Status() (Status, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.status, svc.loadErr
}

// ready returns a core.UnavailableError unless the data is loaded.
func (svc *Service) ready() error {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	switch svc.status {
	case StatusReady:
		return nil
	case StatusUnavailable:
		return core.NewUnavailableError(svc.loadErr)
	default:
		return core.NewUnavailableError(ErrLoading)
	}
}

// Viewer returns the signed-in user.
func (svc *Service) Viewer() (user.User, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	if svc.viewer == nil {
		return user.User{}, false
	}
	return *svc.viewer, true
}

func (svc *Service) viewerRef() *user.User {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	if svc.viewer == nil {
		return nil
	}
	usr := *svc.viewer
	return &usr
}

func (svc *Service) setViewer(usr *user.User) {
	svc.mu.Lock()
	svc.viewer = usr
	svc.mu.Unlock()
}

// logArgs appends the viewer to args so the logger can attach it.
func (svc *Service) logArgs(args ...interface{}) []interface{} {
	if viewer := svc.viewerRef(); viewer != nil {
		return append(args, *viewer)
	}
	return args
}

// requireViewer returns the signed-in user once the data is loaded.
func (svc *Service) requireViewer() (user.User, error) {
	if err := svc.ready(); err != nil {
		return user.User{}, err
	}
	viewer, ok := svc.Viewer()
	if !ok {
		return user.User{}, ErrNotAuthenticated
	}
	return viewer, nil
}

// Login signs in the user matching email and secret and persists the session.
func (svc *Service) Login(email, secret string) (user.User, error) {
	if err := svc.ready(); err != nil {
		return user.User{}, err
	}
	usr, ok := svc.cache.UserByEmail(email)
	if !ok || usr.CheckPassword(secret) != nil {
		return user.User{}, user.ErrAuthenticationFailed
	}
	svc.setViewer(&usr)
	if err := svc.sessions.Persist(usr); err != nil {
		svc.logger.Error("portal: persisting session failed", err, usr)
	}
	return usr, nil
}

// Logout forgets the viewer and clears the stored session.
func (svc *Service) Logout() {
	svc.setViewer(nil)
	if err := svc.sessions.Clear(); err != nil {
		svc.logger.Error("portal: clearing session failed", err)
	}
}

// AppTitle is the application title shown everywhere: the school name.
func (svc *Service) AppTitle() string {
	return svc.cache.Settings().SchoolName
}

// Wait blocks until every background remote write has completed.
func (svc *Service) Wait() {
	svc.writes.Wait()
}

// Close stops the background refresh and waits for pending writes.
func (svc *Service) Close() {
	svc.mu.Lock()
	c := svc.cron
	svc.cron = nil
	svc.mu.Unlock()

	// a running refresh takes svc.mu, so wait for it outside the lock
	if c != nil {
		<-c.Stop().Done()
	}
	svc.Wait()
}
