package pgrepos

import (
	"time"

	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/user"
)

type userRow struct {
	ID         string      `db:"id"`
	Name       string      `db:"name"`
	Email      string      `db:"email"`
	Password   string      `db:"password"`
	Role       string      `db:"role"`
	ClassGroup null.String `db:"class_group"`
}

func userToRow(usr user.User) (userRow, error) {
	return userRow{
		ID:         usr.ID,
		Name:       usr.Name,
		Email:      usr.Email,
		Password:   usr.Secret,
		Role:       string(usr.Role),
		ClassGroup: nullString(usr.ClassGroup),
	}, nil
}

func userFromRow(row userRow) (user.User, error) {
	return user.User{
		ID:         row.ID,
		Name:       row.Name,
		Email:      row.Email,
		Secret:     row.Password,
		Role:       user.Role(row.Role),
		ClassGroup: row.ClassGroup.String,
	}, nil
}

type classGroupRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

func classGroupToRow(class school.ClassGroup) (classGroupRow, error) {
	return classGroupRow(class), nil
}

func classGroupFromRow(row classGroupRow) (school.ClassGroup, error) {
	return school.ClassGroup(row), nil
}

type announcementRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Subject     string      `db:"subject"`
	MeetLink    null.String `db:"meet_link"`
	Date        time.Time   `db:"date"`
	IsUrgent    bool        `db:"is_urgent"`
	AuthorID    string      `db:"author_id"`
	AuthorName  string      `db:"author_name"`
	TargetClass null.String `db:"target_class"`
}

func announcementToRow(ann school.Announcement) (announcementRow, error) {
	return announcementRow{
		ID:          ann.ID,
		Title:       ann.Title,
		Subject:     ann.Subject,
		MeetLink:    nullString(ann.MeetLink),
		Date:        ann.Date,
		IsUrgent:    ann.IsUrgent,
		AuthorID:    ann.AuthorID,
		AuthorName:  ann.AuthorName,
		TargetClass: nullString(ann.TargetClass),
	}, nil
}

func announcementFromRow(row announcementRow) (school.Announcement, error) {
	return school.Announcement{
		ID:          row.ID,
		Title:       row.Title,
		Subject:     row.Subject,
		MeetLink:    row.MeetLink.String,
		Date:        row.Date,
		IsUrgent:    row.IsUrgent,
		AuthorID:    row.AuthorID,
		AuthorName:  row.AuthorName,
		TargetClass: row.TargetClass.String,
	}, nil
}

type examRow struct {
	ID              string      `db:"id"`
	Subject         string      `db:"subject"`
	Date            time.Time   `db:"date"`
	StartTime       string      `db:"start_time"`
	DurationMinutes int         `db:"duration_minutes"`
	Room            string      `db:"room"`
	Notes           null.String `db:"notes"`
	CreatedByID     string      `db:"created_by_id"`
	TargetClass     null.String `db:"target_class"`
}

func examToRow(exam school.Exam) (examRow, error) {
	return examRow{
		ID:              exam.ID,
		Subject:         exam.Subject,
		Date:            exam.Date,
		StartTime:       exam.StartTime,
		DurationMinutes: exam.DurationMinutes,
		Room:            exam.Room,
		Notes:           nullString(exam.Notes),
		CreatedByID:     exam.CreatedByID,
		TargetClass:     nullString(exam.TargetClass),
	}, nil
}

func examFromRow(row examRow) (school.Exam, error) {
	return school.Exam{
		ID:              row.ID,
		Subject:         row.Subject,
		Date:            row.Date,
		StartTime:       row.StartTime,
		DurationMinutes: row.DurationMinutes,
		Room:            row.Room,
		Notes:           row.Notes.String,
		CreatedByID:     row.CreatedByID,
		TargetClass:     row.TargetClass.String,
	}, nil
}

type pollRow struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Description  null.String    `db:"description"`
	Options      null.JSON      `db:"options"`
	IsAnonymous  bool           `db:"is_anonymous"`
	CreatedAt    time.Time      `db:"created_at"`
	ExpiresAt    time.Time      `db:"expires_at"`
	CreatedByID  string         `db:"created_by_id"`
	VotedUserIDs pq.StringArray `db:"voted_user_ids"`
	Ballots      null.JSON      `db:"ballots"`
	TargetClass  null.String    `db:"target_class"`
}

func pollToRow(poll school.Poll) (pollRow, error) {
	opts, err := encodeOptions(poll.Options)
	if err != nil {
		return pollRow{}, err
	}
	ballots, err := jsonValue(poll.Ballots)
	if err != nil {
		return pollRow{}, err
	}
	return pollRow{
		ID:           poll.ID,
		Title:        poll.Title,
		Description:  nullString(poll.Description),
		Options:      opts,
		IsAnonymous:  poll.IsAnonymous,
		CreatedAt:    poll.CreatedAt,
		ExpiresAt:    poll.ExpiresAt,
		CreatedByID:  poll.CreatedByID,
		VotedUserIDs: voters(poll.VotedUserIDs),
		Ballots:      ballots,
		TargetClass:  nullString(poll.TargetClass),
	}, nil
}

// pollFromRow always returns non-nil options and voters; ballots stay nil for legacy rows.
func pollFromRow(row pollRow) (school.Poll, error) {
	poll := school.Poll{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description.String,
		Options:      []school.PollOption{},
		IsAnonymous:  row.IsAnonymous,
		CreatedAt:    row.CreatedAt,
		ExpiresAt:    row.ExpiresAt,
		CreatedByID:  row.CreatedByID,
		VotedUserIDs: []string(row.VotedUserIDs),
		TargetClass:  row.TargetClass.String,
	}
	if poll.VotedUserIDs == nil {
		poll.VotedUserIDs = []string{}
	}
	if row.Options.Valid {
		if err := row.Options.Unmarshal(&poll.Options); err != nil {
			return school.Poll{}, err
		}
	}
	if row.Ballots.Valid {
		if err := row.Ballots.Unmarshal(&poll.Ballots); err != nil {
			return school.Poll{}, err
		}
	}
	return poll, nil
}

type resourceRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Type        string      `db:"type"`
	Content     string      `db:"content"`
	Description null.String `db:"description"`
	Subject     string      `db:"subject"`
	TargetClass null.String `db:"target_class"`
	CreatedAt   time.Time   `db:"created_at"`
}

func resourceToRow(res school.Resource) (resourceRow, error) {
	return resourceRow{
		ID:          res.ID,
		Title:       res.Title,
		Type:        string(res.Type),
		Content:     res.Content,
		Description: nullString(res.Description),
		Subject:     res.Subject,
		TargetClass: nullString(res.TargetClass),
		CreatedAt:   res.CreatedAt,
	}, nil
}

func resourceFromRow(row resourceRow) (school.Resource, error) {
	return school.Resource{
		ID:          row.ID,
		Title:       row.Title,
		Type:        school.ResourceType(row.Type),
		Content:     row.Content,
		Description: row.Description.String,
		Subject:     row.Subject,
		TargetClass: row.TargetClass.String,
		CreatedAt:   row.CreatedAt,
	}, nil
}

type settingsRow struct {
	ID         string `db:"id"`
	SchoolName string `db:"school_name"`
	ThemeColor string `db:"theme_color"`
}
