package portal

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classpoll/core/notification"
	"github.com/trezcool/classpoll/core/quiz"
	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/session"
	"github.com/trezcool/classpoll/core/user"
)

var now = time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)

func seedContent(t *testing.T) fixture {
	db := seedSchool(t)
	db.Announcements.Seed(
		school.Announcement{ID: "a-all", Title: "Rentrée", Date: now.Add(-2 * time.Hour)},
		school.Announcement{ID: "a-6", Title: "Sortie 6eA", Date: now.Add(-time.Hour), TargetClass: "6eA", IsUrgent: true},
		school.Announcement{ID: "a-5", Title: "Sortie 5eB", Date: now.Add(-time.Hour), TargetClass: "5eB"},
	)
	db.Exams.Seed(
		school.Exam{ID: "e-6", Subject: "Maths", Date: now.Add(3 * 24 * time.Hour), TargetClass: "6eA"},
		school.Exam{ID: "e-5", Subject: "SVT", Date: now.Add(24 * time.Hour), TargetClass: "5eB"},
		school.Exam{ID: "e-far", Subject: "Histoire", Date: now.Add(10 * 24 * time.Hour)},
		school.Exam{ID: "e-past", Subject: "Anglais", Date: now.Add(-10 * 24 * time.Hour)},
	)
	db.Polls.Seed(
		school.Poll{ID: "p-expired", CreatedAt: now.Add(-30 * 24 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
		school.Poll{ID: "p-6", Title: "Voyage", CreatedAt: now.Add(-3 * time.Hour), ExpiresAt: now.Add(time.Hour), TargetClass: "6eA"},
	)
	db.Resources.Seed(school.Resource{ID: "r-all", Title: "Annales", Subject: "Maths", CreatedAt: now.Add(-5 * time.Hour)})
	return newFixture(t, db, session.NewMemorySlot(), nil)
}

func TestService_visibility(t *testing.T) {
	f := seedContent(t)
	require.NoError(t, f.svc.Load(context.Background()))

	ids := func(anns []school.Announcement) []string {
		out := make([]string, 0, len(anns))
		for _, a := range anns {
			out = append(out, a.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		viewer *user.User
		want   []string
	}{
		{name: "anonymous", want: []string{"a-all", "a-6", "a-5"}},
		{name: "admin", viewer: &admin, want: []string{"a-all", "a-6", "a-5"}},
		{name: "responsible", viewer: &responsible, want: []string{"a-all", "a-6", "a-5"}},
		{name: "student 6eA", viewer: &student6eA, want: []string{"a-all", "a-6"}},
		{name: "student 5eB", viewer: &student5eB, want: []string{"a-all", "a-5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.svc.Logout()
			if tt.viewer != nil {
				_, err := f.svc.Login(tt.viewer.Email, pwd)
				require.NoError(t, err)
			}
			anns, err := f.svc.Announcements()
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, ids(anns))
		})
	}
}

func TestService_Notifications(t *testing.T) {
	f := seedContent(t)
	loadAs(t, f, &student6eA)

	first, err := f.svc.Notifications(now)
	require.NoError(t, err)
	second, err := f.svc.Notifications(now)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var got []string
	for _, n := range first {
		got = append(got, n.ID)
	}
	assert.Equal(t, []string{"exam-e-6", "ann-a-6", "ann-a-all", "poll-p-6", "res-r-all"}, got)
	assert.Equal(t, notification.Alert, first[1].Category)
}

func TestService_Notifications_votedPollDisappears(t *testing.T) {
	db := seedSchool(t)
	db.Polls.Seed(school.Poll{ID: "p", Options: []school.PollOption{{ID: "o"}}, CreatedAt: now.Add(-time.Hour)})
	f := newFixture(t, db, session.NewMemorySlot(), nil)
	loadAs(t, f, &student6eA)

	before, _ := f.svc.Notifications(now)
	require.Len(t, before, 1)
	require.NoError(t, f.svc.VotePoll("p", "o"))
	after, _ := f.svc.Notifications(now)
	assert.Empty(t, after)
}

func TestService_Dashboard(t *testing.T) {
	f := seedContent(t)
	loadAs(t, f, &student6eA)

	dash, err := f.svc.Dashboard(now)
	require.NoError(t, err)
	assert.Equal(t, Stats{Students: 2, Polls: 2, Exams: 3, Resources: 1}, dash.Stats)
	require.NotNil(t, dash.UpcomingExam)
	assert.Equal(t, "e-6", dash.UpcomingExam.ID)
	require.NotNil(t, dash.ActivePoll)
	assert.Equal(t, "p-6", dash.ActivePoll.ID)
	require.NotNil(t, dash.LatestAnnouncement)
	assert.Equal(t, "a-6", dash.LatestAnnouncement.ID)
	assert.Equal(t, school.DefaultSchoolName, dash.SchoolName)
	assert.NotEmpty(t, dash.Notifications)
}

type fakeGenerator struct {
	proposal quiz.Proposal
	err      error
}

func (g fakeGenerator) Generate(context.Context, string, string) (quiz.Proposal, error) {
	return g.proposal, g.err
}

func TestService_ProposePoll(t *testing.T) {
	four := quiz.Proposal{Question: "Capitale du Sénégal ?", Options: []string{"Dakar", "Thiès", "Kaolack", "Louga"}}

	tests := []struct {
		name   string
		gen    quiz.Generator
		viewer user.User
		topic  string
		wantOK bool
	}{
		{name: "ok", gen: fakeGenerator{proposal: four}, viewer: responsible, topic: "géographie", wantOK: true},
		{name: "disabled", gen: quiz.Disabled{}, viewer: responsible, topic: "géographie"},
		{name: "generator error", gen: fakeGenerator{err: errors.New("quota")}, viewer: responsible, topic: "géographie"},
		{name: "three options", gen: fakeGenerator{proposal: quiz.Proposal{Question: "Q", Options: []string{"a", "b", "c"}}}, viewer: admin, topic: "x"},
		{name: "blank topic", gen: fakeGenerator{proposal: four}, viewer: admin, topic: "  "},
		{name: "student", gen: fakeGenerator{proposal: four}, viewer: student6eA, topic: "géographie"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, seedSchool(t), session.NewMemorySlot(), tt.gen)
			loadAs(t, f, &tt.viewer)

			got, ok := f.svc.ProposePoll(context.Background(), tt.topic, "")
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, four, got)
			} else {
				assert.Equal(t, quiz.Proposal{}, got)
			}
		})
	}
}
