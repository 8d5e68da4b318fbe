package portal

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/trezcool/classpoll/core/notification"
	"github.com/trezcool/classpoll/core/quiz"
	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/user"
)

// The views below are narrowed to what the viewer may see.

func (svc *Service) Announcements() ([]school.Announcement, error) {
	if err := svc.ready(); err != nil {
		return nil, err
	}
	return school.Visible(svc.viewerRef(), svc.cache.Announcements.All()), nil
}

func (svc *Service) Exams() ([]school.Exam, error) {
	if err := svc.ready(); err != nil {
		return nil, err
	}
	return school.Visible(svc.viewerRef(), svc.cache.Exams.All()), nil
}

func (svc *Service) Polls() ([]school.Poll, error) {
	if err := svc.ready(); err != nil {
		return nil, err
	}
	return school.Visible(svc.viewerRef(), svc.cache.Polls.All()), nil
}

func (svc *Service) Resources() ([]school.Resource, error) {
	if err := svc.ready(); err != nil {
		return nil, err
	}
	return school.Visible(svc.viewerRef(), svc.cache.Resources.All()), nil
}

// Users lists every user; admins only.
func (svc *Service) Users() ([]user.User, error) {
	if _, err := svc.requireAdmin(); err != nil {
		return nil, err
	}
	return svc.cache.Users.All(), nil
}

func (svc *Service) ClassGroups() ([]school.ClassGroup, error) {
	if err := svc.ready(); err != nil {
		return nil, err
	}
	return svc.cache.ClassGroups.All(), nil
}

func (svc *Service) Settings() (school.Settings, error) {
	if err := svc.ready(); err != nil {
		return school.Settings{}, err
	}
	return svc.cache.Settings(), nil
}

// Notifications derives the viewer's feed at now.
func (svc *Service) Notifications(now time.Time) ([]notification.Notification, error) {
	if err := svc.ready(); err != nil {
		return nil, err
	}
	return notification.Derive(now, svc.notificationInput()), nil
}

func (svc *Service) notificationInput() notification.Input {
	viewer := svc.viewerRef()
	return notification.Input{
		Viewer:        viewer,
		Announcements: school.Visible(viewer, svc.cache.Announcements.All()),
		Exams:         school.Visible(viewer, svc.cache.Exams.All()),
		Polls:         school.Visible(viewer, svc.cache.Polls.All()),
		Resources:     school.Visible(viewer, svc.cache.Resources.All()),
	}
}

type Stats struct {
	Students  int `json:"students"`
	Polls     int `json:"polls"`
	Exams     int `json:"exams"`
	Resources int `json:"resources"`
}

type Dashboard struct {
	SchoolName         string                      `json:"school_name"`
	Stats              Stats                       `json:"stats"`
	UpcomingExam       *school.Exam                `json:"upcoming_exam"`
	ActivePoll         *school.Poll                `json:"active_poll"`
	LatestAnnouncement *school.Announcement        `json:"latest_announcement"`
	Notifications      []notification.Notification `json:"notifications"`
}

// Dashboard summarizes what the viewer sees at now.
func (svc *Service) Dashboard(now time.Time) (Dashboard, error) {
	if err := svc.ready(); err != nil {
		return Dashboard{}, err
	}
	in := svc.notificationInput()

	var students int
	for _, u := range svc.cache.Users.All() {
		if u.IsStudent() {
			students++
		}
	}
	dash := Dashboard{
		SchoolName: svc.cache.Settings().SchoolName,
		Stats: Stats{
			Students:  students,
			Polls:     len(in.Polls),
			Exams:     len(in.Exams),
			Resources: len(in.Resources),
		},
		Notifications: notification.Derive(now, in),
	}

	exams := append([]school.Exam(nil), in.Exams...)
	sort.SliceStable(exams, func(i, j int) bool { return exams[i].Date.Before(exams[j].Date) })
	for i := range exams {
		if exams[i].Date.After(now) {
			dash.UpcomingExam = &exams[i]
			break
		}
	}

	for i := range in.Polls {
		if in.Polls[i].IsActive(now) {
			dash.ActivePoll = &in.Polls[i]
			break
		}
	}

	for i := range in.Announcements {
		if dash.LatestAnnouncement == nil || in.Announcements[i].Date.After(dash.LatestAnnouncement.Date) {
			dash.LatestAnnouncement = &in.Announcements[i]
		}
	}
	return dash, nil
}

// ProposePoll asks the question generator for a draft. Any failure yields ok == false;
// poll creation never depends on it.
func (svc *Service) ProposePoll(ctx context.Context, topic, difficulty string) (quiz.Proposal, bool) {
	viewer, err := svc.requireViewer()
	if err != nil || !canPublish(viewer) {
		return quiz.Proposal{}, false
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return quiz.Proposal{}, false
	}
	if difficulty = strings.TrimSpace(difficulty); difficulty == "" {
		difficulty = quiz.DefaultDifficulty
	}

	proposal, err := svc.quiz.Generate(ctx, topic, difficulty)
	if err == nil {
		proposal, err = proposal.Check()
	}
	if err != nil {
		svc.logger.Warn("portal: no poll proposal", err, viewer)
		return quiz.Proposal{}, false
	}
	return proposal, true
}
