package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/user"
)

// NewAnnouncement contains information needed to publish an Announcement.
type NewAnnouncement struct {
	Title       string    `json:"title" validate:"required,notblank"`
	Subject     string    `json:"subject" validate:"required,notblank"`
	MeetLink    string    `json:"meet_link" validate:"omitempty,url"`
	Date        time.Time `json:"date" validate:"notzero"`
	IsUrgent    bool      `json:"is_urgent"`
	TargetClass string    `json:"target_class"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Subject = core.CleanString(na.Subject)
	na.MeetLink = core.CleanString(na.MeetLink)
	na.TargetClass = core.CleanString(na.TargetClass)
	return validate.Struct(na)
}

// Build returns the Announcement authored by author; the author's name is denormalized.
func (na NewAnnouncement) Build(id string, author user.User) Announcement {
	return Announcement{
		ID:          id,
		Title:       na.Title,
		Subject:     na.Subject,
		MeetLink:    na.MeetLink,
		Date:        na.Date.UTC(),
		IsUrgent:    na.IsUrgent,
		AuthorID:    author.ID,
		AuthorName:  author.Name,
		TargetClass: na.TargetClass,
	}
}

// NewExam contains information needed to schedule an Exam.
type NewExam struct {
	Subject         string    `json:"subject" validate:"required,notblank"`
	Date            time.Time `json:"date" validate:"notzero"`
	StartTime       string    `json:"start_time" validate:"required,hhmm"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=1"`
	Room            string    `json:"room" validate:"required,notblank"`
	Notes           string    `json:"notes"`
	TargetClass     string    `json:"target_class"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.Subject = core.CleanString(ne.Subject)
	ne.StartTime = core.CleanString(ne.StartTime)
	ne.Room = core.CleanString(ne.Room)
	ne.Notes = core.CleanString(ne.Notes)
	ne.TargetClass = core.CleanString(ne.TargetClass)
	return validate.Struct(ne)
}

func (ne NewExam) Build(id string, creator user.User) Exam {
	return Exam{
		ID:              id,
		Subject:         ne.Subject,
		Date:            ne.Date.UTC(),
		StartTime:       ne.StartTime,
		DurationMinutes: ne.DurationMinutes,
		Room:            ne.Room,
		Notes:           ne.Notes,
		CreatedByID:     creator.ID,
		TargetClass:     ne.TargetClass,
	}
}

// NewPoll contains information needed to open a Poll.
// Blank options are dropped; a zero ExpiresAt means DefaultPollLifetime after creation.
type NewPoll struct {
	Title       string    `json:"title" validate:"required,notblank"`
	Description string    `json:"description"`
	Options     []string  `json:"options" validate:"min=2,dive,notblank"`
	IsAnonymous bool      `json:"is_anonymous"`
	ExpiresAt   time.Time `json:"expires_at"`
	TargetClass string    `json:"target_class"`
}

func (np *NewPoll) Validate(validate *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	np.Description = core.CleanString(np.Description)
	np.TargetClass = core.CleanString(np.TargetClass)
	options := make([]string, 0, len(np.Options))
	for _, opt := range np.Options {
		if opt = core.CleanString(opt); opt != "" {
			options = append(options, opt)
		}
	}
	np.Options = options
	return validate.Struct(np)
}

// Build returns the Poll created by creator at now; newID generates the option ids.
func (np NewPoll) Build(id string, creator user.User, now time.Time, newID func() string) Poll {
	options := make([]PollOption, 0, len(np.Options))
	for _, text := range np.Options {
		options = append(options, PollOption{ID: newID(), Text: text})
	}
	expiresAt := np.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(DefaultPollLifetime)
	}
	return Poll{
		ID:           id,
		Title:        np.Title,
		Description:  np.Description,
		Options:      options,
		IsAnonymous:  np.IsAnonymous,
		CreatedAt:    now.UTC(),
		ExpiresAt:    expiresAt.UTC(),
		CreatedByID:  creator.ID,
		VotedUserIDs: []string{},
		Ballots:      map[string]string{},
		TargetClass:  np.TargetClass,
	}
}

// NewResource contains information needed to share a Resource.
type NewResource struct {
	Title       string       `json:"title" validate:"required,notblank"`
	Type        ResourceType `json:"type" validate:"required,restype"`
	Content     string       `json:"content" validate:"required,notblank"`
	Description string       `json:"description"`
	Subject     string       `json:"subject" validate:"required,notblank"`
	TargetClass string       `json:"target_class"`
}

func (nr *NewResource) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.Content = core.CleanString(nr.Content)
	nr.Description = core.CleanString(nr.Description)
	nr.Subject = core.CleanString(nr.Subject)
	nr.TargetClass = core.CleanString(nr.TargetClass)
	return validate.Struct(nr)
}

func (nr NewResource) Build(id string, now time.Time) Resource {
	return Resource{
		ID:          id,
		Title:       nr.Title,
		Type:        nr.Type,
		Content:     nr.Content,
		Description: nr.Description,
		Subject:     nr.Subject,
		TargetClass: nr.TargetClass,
		CreatedAt:   now.UTC(),
	}
}
