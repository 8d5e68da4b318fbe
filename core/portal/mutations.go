package portal

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/gateway"
	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/state"
	"github.com/trezcool/classpoll/core/user"
)

// Announcements

func (svc *Service) CreateAnnouncement(na school.NewAnnouncement) (school.Announcement, error) {
	viewer, err := svc.requireViewer()
	if err != nil {
		return school.Announcement{}, err
	}
	if !canPublish(viewer) {
		return school.Announcement{}, ErrForbidden
	}
	if err := na.Validate(svc.validate); err != nil {
		return school.Announcement{}, err
	}
	if err := checkTarget(viewer, na.TargetClass); err != nil {
		return school.Announcement{}, err
	}

	ann := na.Build(newID(), viewer)
	svc.cache.Announcements.Put(ann)
	svc.persist("insert announcement", func(ctx context.Context) error {
		return svc.gw.Announcements.Insert(ctx, ann)
	})
	return ann, nil
}

func (svc *Service) DeleteAnnouncement(id string) error {
	viewer, err := svc.requireViewer()
	if err != nil {
		return err
	}
	ann, ok := svc.cache.Announcements.Find(id)
	if !ok || !school.CanSee(&viewer, ann) {
		return school.ErrNotFound
	}
	if !canDelete(viewer, ann.TargetClass, ann.AuthorID) {
		return ErrForbidden
	}

	svc.cache.Announcements.Remove(id)
	svc.persist("delete announcement", func(ctx context.Context) error {
		return svc.gw.Announcements.Delete(ctx, id)
	})
	return nil
}

// Exams

func (svc *Service) CreateExam(ne school.NewExam) (school.Exam, error) {
	viewer, err := svc.requireViewer()
	if err != nil {
		return school.Exam{}, err
	}
	if !canPublish(viewer) {
		return school.Exam{}, ErrForbidden
	}
	if err := ne.Validate(svc.validate); err != nil {
		return school.Exam{}, err
	}
	if err := checkTarget(viewer, ne.TargetClass); err != nil {
		return school.Exam{}, err
	}

	exam := ne.Build(newID(), viewer)
	svc.cache.Exams.Put(exam)
	svc.persist("insert exam", func(ctx context.Context) error {
		return svc.gw.Exams.Insert(ctx, exam)
	})
	return exam, nil
}

func (svc *Service) DeleteExam(id string) error {
	viewer, err := svc.requireViewer()
	if err != nil {
		return err
	}
	exam, ok := svc.cache.Exams.Find(id)
	if !ok || !school.CanSee(&viewer, exam) {
		return school.ErrNotFound
	}
	if !canDelete(viewer, exam.TargetClass, exam.CreatedByID) {
		return ErrForbidden
	}

	svc.cache.Exams.Remove(id)
	svc.persist("delete exam", func(ctx context.Context) error {
		return svc.gw.Exams.Delete(ctx, id)
	})
	return nil
}

// Polls

func (svc *Service) CreatePoll(np school.NewPoll) (school.Poll, error) {
	viewer, err := svc.requireViewer()
	if err != nil {
		return school.Poll{}, err
	}
	if !canPublish(viewer) {
		return school.Poll{}, ErrForbidden
	}
	if err := np.Validate(svc.validate); err != nil {
		return school.Poll{}, err
	}
	if err := checkTarget(viewer, np.TargetClass); err != nil {
		return school.Poll{}, err
	}

	poll := np.Build(newID(), viewer, NowFunc(), newID)
	svc.cache.Polls.Put(poll)
	svc.persist("insert poll", func(ctx context.Context) error {
		return svc.gw.Polls.Insert(ctx, poll)
	})
	return poll, nil
}

// VotePoll records the viewer's vote for optionID.
// Voting again on the same poll is a silent no-op: use ChangeVote to change a vote.
func (svc *Service) VotePoll(pollID, optionID string) error {
	viewer, err := svc.requireViewer()
	if err != nil {
		return err
	}
	if !canVote(viewer) {
		return ErrForbidden
	}
	if poll, ok := svc.cache.Polls.Find(pollID); !ok || !school.CanSee(&viewer, poll) {
		return school.ErrPollNotFound
	}

	voted, err := svc.cache.Polls.Update(pollID, func(p school.Poll) (school.Poll, error) {
		return p.CastVote(viewer.ID, optionID)
	})
	switch errors.Cause(err) {
	case nil:
	case school.ErrAlreadyVoted:
		return nil
	default:
		return err
	}

	svc.persistVotes("vote poll", voted)
	return nil
}

// ChangeVote moves the viewer's existing vote to optionID.
func (svc *Service) ChangeVote(pollID, optionID string) error {
	viewer, err := svc.requireViewer()
	if err != nil {
		return err
	}
	if !canVote(viewer) {
		return ErrForbidden
	}
	if poll, ok := svc.cache.Polls.Find(pollID); !ok || !school.CanSee(&viewer, poll) {
		return school.ErrPollNotFound
	}

	changed, err := svc.cache.Polls.Update(pollID, func(p school.Poll) (school.Poll, error) {
		return p.ChangeVote(viewer.ID, optionID)
	})
	if err != nil {
		return err
	}
	svc.persistVotes("change vote", changed)
	return nil
}

// persistVotes writes the options, the voters and the ballots of poll in a single update.
func (svc *Service) persistVotes(op string, poll school.Poll) {
	fields := gateway.Fields{
		"Options":      poll.Options,
		"VotedUserIDs": poll.VotedUserIDs,
		"Ballots":      poll.Ballots,
	}
	svc.persist(op, func(ctx context.Context) error {
		return svc.gw.Polls.Update(ctx, poll.ID, fields)
	})
}

func (svc *Service) DeletePoll(id string) error {
	viewer, err := svc.requireViewer()
	if err != nil {
		return err
	}
	poll, ok := svc.cache.Polls.Find(id)
	if !ok || !school.CanSee(&viewer, poll) {
		return school.ErrPollNotFound
	}
	if !canDelete(viewer, poll.TargetClass, poll.CreatedByID) {
		return ErrForbidden
	}

	svc.cache.Polls.Remove(id)
	svc.persist("delete poll", func(ctx context.Context) error {
		return svc.gw.Polls.Delete(ctx, id)
	})
	return nil
}

// Resources

func (svc *Service) CreateResource(nr school.NewResource) (school.Resource, error) {
	viewer, err := svc.requireViewer()
	if err != nil {
		return school.Resource{}, err
	}
	if !canPublish(viewer) {
		return school.Resource{}, ErrForbidden
	}
	if err := nr.Validate(svc.validate); err != nil {
		return school.Resource{}, err
	}
	if err := checkTarget(viewer, nr.TargetClass); err != nil {
		return school.Resource{}, err
	}

	res := nr.Build(newID(), NowFunc())
	svc.cache.Resources.Put(res)
	svc.persist("insert resource", func(ctx context.Context) error {
		return svc.gw.Resources.Insert(ctx, res)
	})
	return res, nil
}

func (svc *Service) DeleteResource(id string) error {
	viewer, err := svc.requireViewer()
	if err != nil {
		return err
	}
	res, ok := svc.cache.Resources.Find(id)
	if !ok || !school.CanSee(&viewer, res) {
		return school.ErrNotFound
	}
	if !canDelete(viewer, res.TargetClass, "") {
		return ErrForbidden
	}

	svc.cache.Resources.Remove(id)
	svc.persist("delete resource", func(ctx context.Context) error {
		return svc.gw.Resources.Delete(ctx, id)
	})
	return nil
}

// Users

func (svc *Service) requireAdmin() (user.User, error) {
	viewer, err := svc.requireViewer()
	if err != nil {
		return user.User{}, err
	}
	if !viewer.IsAdmin() {
		return user.User{}, ErrForbidden
	}
	return viewer, nil
}

func (svc *Service) checkEmailAvailable(email, exceptID string) error {
	if other, ok := svc.cache.UserByEmail(email); ok && other.ID != exceptID {
		return core.NewValidationError(user.ErrEmailExists, core.FieldError{Field: "email", Error: user.ErrEmailExists.Error()})
	}
	return nil
}

func (svc *Service) CreateUser(nu user.NewUser) (user.User, error) {
	if _, err := svc.requireAdmin(); err != nil {
		return user.User{}, err
	}
	if err := nu.Validate(svc.validate); err != nil {
		return user.User{}, err
	}
	if err := svc.checkEmailAvailable(nu.Email, ""); err != nil {
		return user.User{}, err
	}

	usr := user.User{
		ID:         newID(),
		Name:       nu.Name,
		Email:      nu.Email,
		Role:       nu.Role,
		ClassGroup: nu.ClassGroup,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return user.User{}, errors.Wrap(err, "hashing password")
	}

	svc.cache.Users.Put(usr)
	svc.persist("insert user", func(ctx context.Context) error {
		return svc.gw.Users.Insert(ctx, usr)
	})
	return usr, nil
}

// UpdateUser edits a user. Admins edit anyone; other users only their own name,
// email and password. Updating oneself refreshes the stored session.
func (svc *Service) UpdateUser(id string, uu user.UpdateUser) (user.User, error) {
	viewer, err := svc.requireViewer()
	if err != nil {
		return user.User{}, err
	}
	current, ok := svc.cache.Users.Find(id)
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	self := id == viewer.ID
	if !viewer.IsAdmin() && !self {
		return user.User{}, ErrForbidden
	}
	if err := uu.Validate(svc.validate); err != nil {
		return user.User{}, err
	}
	if !viewer.IsAdmin() && (uu.Role != current.Role || uu.ClassGroup != current.ClassGroup) {
		return user.User{}, ErrForbidden
	}
	if current.IsProtected() && !current.HasEmail(uu.Email) {
		return user.User{}, core.NewValidationError(user.ErrProtectedEmail, core.FieldError{Field: "email", Error: user.ErrProtectedEmail.Error()})
	}
	if err := svc.checkEmailAvailable(uu.Email, id); err != nil {
		return user.User{}, err
	}

	updated, err := svc.cache.Users.Update(id, uu.Apply)
	if err != nil {
		return user.User{}, err
	}
	if self {
		svc.setViewer(&updated)
		if err := svc.sessions.Persist(updated); err != nil {
			svc.logger.Error("portal: refreshing session failed", err, updated)
		}
	}

	fields := gateway.Fields{
		"Name":       updated.Name,
		"Email":      updated.Email,
		"Role":       updated.Role,
		"Secret":     updated.Secret,
		"ClassGroup": updated.ClassGroup,
	}
	svc.persist("update user", func(ctx context.Context) error {
		return svc.gw.Users.Update(ctx, id, fields)
	})
	return updated, nil
}

// DeleteUser removes a user. The seed administrator can never be removed.
func (svc *Service) DeleteUser(id string) error {
	viewer, err := svc.requireAdmin()
	if err != nil {
		return err
	}
	usr, ok := svc.cache.Users.Find(id)
	if !ok {
		return user.ErrNotFound
	}
	if usr.IsProtected() {
		return user.ErrProtectedUser
	}
	if id == viewer.ID {
		return ErrSelfDelete
	}

	svc.cache.Users.Remove(id)
	svc.persist("delete user", func(ctx context.Context) error {
		return svc.gw.Users.Delete(ctx, id)
	})
	return nil
}

// ResetPassword sets the user's credential back to user.DefaultSecret.
func (svc *Service) ResetPassword(id string) error {
	if _, err := svc.requireAdmin(); err != nil {
		return err
	}
	updated, err := svc.cache.Users.Update(id, func(u user.User) (user.User, error) {
		err := u.SetPassword(user.DefaultSecret)
		return u, err
	})
	if err != nil {
		if errors.Cause(err) == state.ErrNotFound {
			return user.ErrNotFound
		}
		return errors.Wrap(err, "hashing password")
	}

	fields := gateway.Fields{"Secret": updated.Secret}
	svc.persist("reset password", func(ctx context.Context) error {
		return svc.gw.Users.Update(ctx, id, fields)
	})
	return nil
}

// Class groups

func (svc *Service) AddClassGroup(name string) (school.ClassGroup, error) {
	if _, err := svc.requireAdmin(); err != nil {
		return school.ClassGroup{}, err
	}
	name = core.CleanString(name)
	if name == "" {
		return school.ClassGroup{}, core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
	}
	if _, exists := svc.cache.ClassGroupByName(name); exists {
		return school.ClassGroup{}, core.NewValidationError(school.ErrClassGroupExists, core.FieldError{Field: "name", Error: school.ErrClassGroupExists.Error()})
	}

	class := school.ClassGroup{ID: newID(), Name: name}
	svc.cache.ClassGroups.Put(class)
	svc.persist("insert class group", func(ctx context.Context) error {
		return svc.gw.ClassGroups.Insert(ctx, class)
	})
	return class, nil
}

// DeleteClassGroup removes a class group. Users and items keep referencing its name.
func (svc *Service) DeleteClassGroup(id string) error {
	if _, err := svc.requireAdmin(); err != nil {
		return err
	}
	if !svc.cache.ClassGroups.Remove(id) {
		return school.ErrNotFound
	}
	svc.persist("delete class group", func(ctx context.Context) error {
		return svc.gw.ClassGroups.Delete(ctx, id)
	})
	return nil
}

// Settings

// UpdateSettings replaces the settings singleton; the application title follows immediately.
func (svc *Service) UpdateSettings(settings school.Settings) (school.Settings, error) {
	if _, err := svc.requireAdmin(); err != nil {
		return school.Settings{}, err
	}
	if err := settings.Validate(svc.validate); err != nil {
		return school.Settings{}, err
	}

	svc.cache.SetSettings(settings)
	svc.persist("upsert settings", func(ctx context.Context) error {
		return svc.gw.Settings.Upsert(ctx, settings)
	})
	return settings, nil
}
