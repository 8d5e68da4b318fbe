// Package notification derives the viewer's notice feed from the visible collections.
//
// Nothing is stored: the feed is recomputed from the collections and a clock
// reading each time it is needed, and the ids are stable across recomputations.
package notification

import (
	"fmt"
	"sort"
	"time"

	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/user"
)

type Category string

const (
	Alert   Category = "alert"
	Info    Category = "info"
	Success Category = "success"
)

// View is a navigation target of the presentation layer.
type View string

const (
	ViewDashboard     View = "dashboard"
	ViewAnnouncements View = "announcements"
	ViewExams         View = "exams"
	ViewPolls         View = "polls"
	ViewResources     View = "resources"
	ViewUsers         View = "users"
	ViewSettings      View = "settings"
)

// id prefixes, one per source kind
const (
	examPrefix     = "exam"
	meetingPrefix  = "meet"
	announcePrefix = "ann"
	pollPrefix     = "poll"
	resourcePrefix = "res"
)

// windows
const (
	examHorizonDays    = 7
	meetingWindow      = 24 // hours
	announcementWindow = 48 // hours
	pollWindow         = 48 // hours
	resourceWindow     = 24 // hours
)

type Notification struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	LinkTo    View      `json:"link_to"`
	Timestamp time.Time `json:"timestamp"`
}

// Input is what the feed is derived from. The collections must already be
// narrowed to what Viewer may see.
type Input struct {
	Viewer        *user.User
	Announcements []school.Announcement
	Exams         []school.Exam
	Polls         []school.Poll
	Resources     []school.Resource
}

// Derive returns the feed at now, newest first.
func Derive(now time.Time, in Input) []Notification {
	notifs := make([]Notification, 0)

	for _, exam := range in.Exams {
		if n, ok := fromExam(now, exam); ok {
			notifs = append(notifs, n)
		}
	}
	for _, ann := range in.Announcements {
		if n, ok := fromAnnouncement(now, ann); ok {
			notifs = append(notifs, n)
		}
	}
	var viewerID string
	if in.Viewer != nil {
		viewerID = in.Viewer.ID
	}
	for _, poll := range in.Polls {
		if n, ok := fromPoll(now, poll, viewerID); ok {
			notifs = append(notifs, n)
		}
	}
	for _, res := range in.Resources {
		if n, ok := fromResource(now, res); ok {
			notifs = append(notifs, n)
		}
	}

	sort.SliceStable(notifs, func(i, j int) bool {
		ti, tj := notifs[i].Timestamp, notifs[j].Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return notifs[i].ID < notifs[j].ID
	})
	return notifs
}

// wholeDays and wholeHours truncate toward zero, so -23h is 0 days.
func wholeDays(d time.Duration) int  { return int(d / (24 * time.Hour)) }
func wholeHours(d time.Duration) int { return int(d / time.Hour) }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func id(prefix, entityID string) string {
	return prefix + "-" + entityID
}

func fromExam(now time.Time, exam school.Exam) (Notification, bool) {
	days := wholeDays(exam.Date.Sub(now))
	if days < 0 || days > examHorizonDays {
		return Notification{}, false
	}

	var when string
	switch days {
	case 0:
		when = "today"
	case 1:
		when = "in 1 day"
	default:
		when = fmt.Sprintf("in %d days", days)
	}
	return Notification{
		ID:        id(examPrefix, exam.ID),
		Category:  Alert,
		Title:     "Upcoming exam",
		Message:   fmt.Sprintf("%s exam %s.", exam.Subject, when),
		LinkTo:    ViewExams,
		Timestamp: exam.Date,
	}, true
}

func fromAnnouncement(now time.Time, ann school.Announcement) (Notification, bool) {
	hoursUntil := wholeHours(ann.Date.Sub(now))
	if ann.MeetLink != "" && hoursUntil > 0 && hoursUntil < meetingWindow {
		return Notification{
			ID:        id(meetingPrefix, ann.ID),
			Category:  Info,
			Title:     "Meeting soon",
			Message:   fmt.Sprintf("The class %q starts soon.", ann.Title),
			LinkTo:    ViewAnnouncements,
			Timestamp: ann.Date,
		}, true
	}

	hoursSince := wholeHours(now.Sub(ann.Date))
	if abs(hoursSince) >= announcementWindow {
		return Notification{}, false
	}
	n := Notification{
		ID:        id(announcePrefix, ann.ID),
		Category:  Info,
		Title:     "New announcement",
		Message:   ann.Title,
		LinkTo:    ViewAnnouncements,
		Timestamp: ann.Date,
	}
	if ann.IsUrgent {
		n.Category = Alert
		n.Title = "Urgent announcement"
	}
	return n, true
}

func fromPoll(now time.Time, poll school.Poll, viewerID string) (Notification, bool) {
	if wholeHours(now.Sub(poll.CreatedAt)) >= pollWindow || poll.HasVoted(viewerID) {
		return Notification{}, false
	}
	return Notification{
		ID:        id(pollPrefix, poll.ID),
		Category:  Success,
		Title:     "New poll",
		Message:   poll.Title,
		LinkTo:    ViewPolls,
		Timestamp: poll.CreatedAt,
	}, true
}

func fromResource(now time.Time, res school.Resource) (Notification, bool) {
	if wholeHours(now.Sub(res.CreatedAt)) >= resourceWindow {
		return Notification{}, false
	}
	return Notification{
		ID:        id(resourcePrefix, res.ID),
		Category:  Info,
		Title:     "New resource",
		Message:   fmt.Sprintf("Added in %s: %s", res.Subject, res.Title),
		LinkTo:    ViewResources,
		Timestamp: res.CreatedAt,
	}, true
}
