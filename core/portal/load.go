package portal

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/gateway"
	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/state"
	"github.com/trezcool/classpoll/core/user"
)

// Load reads every collection from the remote store into the cache and restores
// the session. A failure to load users, announcements, exams or polls makes the
// portal unavailable and is returned as a core.UnavailableError.
//
// Load may run concurrently with a previous call: each call is an independent
// full read, and every collection is swapped atomically into the cache.
func (svc *Service) Load(ctx context.Context) error {
	snap, err := svc.fetch(ctx)
	if err != nil {
		svc.mu.Lock()
		svc.status = StatusUnavailable
		svc.loadErr = err
		svc.mu.Unlock()
		svc.logger.Error("portal: loading data failed", err)
		return core.NewUnavailableError(err)
	}

	svc.cache.Replace(snap)
	svc.restoreSession()

	svc.mu.Lock()
	svc.status = StatusReady
	svc.loadErr = nil
	svc.mu.Unlock()
	return nil
}

// Refresh reloads everything and re-validates the viewer against the fresh users.
func (svc *Service) Refresh(ctx context.Context) error {
	return svc.Load(ctx)
}

// ScheduleRefresh reloads in the background following the cron spec (eg. "@every 5m").
// An empty spec disables background reloads. A new schedule replaces the previous one.
func (svc *Service) ScheduleRefresh(spec string) error {
	if spec == "" {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := svc.Refresh(context.Background()); err != nil {
			svc.logger.Warn("portal: scheduled refresh failed", err)
		}
	}); err != nil {
		return errors.Wrapf(err, "invalid refresh spec %q", spec)
	}
	svc.mu.Lock()
	prev := svc.cron
	svc.cron = c
	c.Start()
	svc.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
	return nil
}

func (svc *Service) fetch(ctx context.Context) (state.Snapshot, error) {
	var snap state.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Users, err = svc.gw.Users.LoadAll(gctx)
		return errors.Wrap(err, "loading users")
	})
	g.Go(func() (err error) {
		snap.Announcements, err = svc.gw.Announcements.LoadAll(gctx)
		return errors.Wrap(err, "loading announcements")
	})
	g.Go(func() (err error) {
		snap.Exams, err = svc.gw.Exams.LoadAll(gctx)
		return errors.Wrap(err, "loading exams")
	})
	g.Go(func() (err error) {
		snap.Polls, err = svc.gw.Polls.LoadAll(gctx)
		return errors.Wrap(err, "loading polls")
	})
	g.Go(func() error {
		resources, err := svc.gw.Resources.LoadAll(gctx)
		if errors.Cause(err) == gateway.ErrTableMissing {
			svc.logger.Warn("portal: resources table is missing, no resources loaded", err)
			snap.Resources = nil
			return nil
		}
		snap.Resources = resources
		return errors.Wrap(err, "loading resources")
	})

	// class groups and settings are optional: keep what we have on failure
	g.Go(func() error {
		classes, err := svc.gw.ClassGroups.LoadAll(gctx)
		if err != nil {
			svc.logger.Warn("portal: loading class groups failed", err)
			classes = svc.cache.ClassGroups.All()
		}
		snap.ClassGroups = classes
		return nil
	})
	g.Go(func() error {
		snap.Settings = svc.loadSettings(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return state.Snapshot{}, err
	}

	if len(snap.Users) == 0 {
		snap.Users = []user.User{svc.seedAdmin(ctx)}
	}
	return snap, nil
}

func (svc *Service) loadSettings(ctx context.Context) school.Settings {
	settings, ok, err := svc.gw.Settings.Load(ctx)
	switch {
	case err != nil:
		svc.logger.Warn("portal: loading settings failed", err)
		return svc.cache.Settings()
	case !ok:
		return school.DefaultSettings()
	}
	if settings.SchoolName == "" {
		settings.SchoolName = school.DefaultSchoolName
	}
	if settings.ThemeColor == "" {
		settings.ThemeColor = school.DefaultThemeColor
	}
	return settings
}

// seedAdmin creates the default administrator on first boot.
// It belongs to the loaded snapshot even if the remote insert fails.
func (svc *Service) seedAdmin(ctx context.Context) user.User {
	admin, err := user.SeedAdmin()
	if err != nil {
		// hashing failed: keep the default secret as a legacy plaintext credential
		svc.logger.Error("portal: hashing seed admin secret failed", err)
		admin = user.User{
			ID:     user.SeedAdminID,
			Name:   user.SeedAdminName,
			Email:  user.SeedAdminEmail,
			Role:   user.RoleAdmin,
			Secret: user.DefaultSecret,
		}
	}
	if err := svc.gw.Users.Insert(ctx, admin); err != nil {
		svc.logger.Error("portal: inserting seed admin failed", errors.Wrap(err, "insert user"))
	} else {
		svc.logger.Info("portal: seed admin created", admin.Email)
	}
	return admin
}

// restoreSession re-validates the viewer against the cache, or restores it from
// the stored session when nobody is signed in yet.
func (svc *Service) restoreSession() {
	if viewer := svc.viewerRef(); viewer != nil {
		if fresh, ok := svc.cache.Users.Find(viewer.ID); ok {
			svc.setViewer(&fresh)
			return
		}
		svc.logger.Info("portal: viewer no longer exists, signing out", viewer.ID)
		svc.Logout()
		return
	}

	if usr, ok := svc.sessions.Restore(svc.cache.Users.Find); ok {
		svc.setViewer(&usr)
	}
}
