package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classpoll/core"
)

// DefaultPollLifetime is used when a new poll comes without an expiry.
const DefaultPollLifetime = 7 * 24 * time.Hour

// settings defaults, kept when the settings row is missing
const (
	SettingsID        = "config"
	DefaultSchoolName = "ClassPoll+"
	DefaultThemeColor = "indigo"
)

type ResourceType string

const (
	ResourceLink ResourceType = "LINK"
	ResourceBook ResourceType = "BOOK"
	ResourceFile ResourceType = "FILE"
)

func (rt ResourceType) IsValid() bool {
	switch rt {
	case ResourceLink, ResourceBook, ResourceFile:
		return true
	}
	return false
}

type ClassGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subject     string    `json:"subject"`
	MeetLink    string    `json:"meet_link,omitempty"`
	Date        time.Time `json:"date"`
	IsUrgent    bool      `json:"is_urgent"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	TargetClass string    `json:"target_class,omitempty"`
}

type Exam struct {
	ID              string    `json:"id"`
	Subject         string    `json:"subject"`
	Date            time.Time `json:"date"`
	StartTime       string    `json:"start_time"` // HH:MM
	DurationMinutes int       `json:"duration_minutes"`
	Room            string    `json:"room"`
	Notes           string    `json:"notes,omitempty"`
	CreatedByID     string    `json:"created_by_id"`
	TargetClass     string    `json:"target_class,omitempty"`
}

type PollOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Poll struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Options      []PollOption `json:"options"`
	IsAnonymous  bool         `json:"is_anonymous"`
	CreatedAt    time.Time    `json:"created_at"`
	ExpiresAt    time.Time    `json:"expires_at"`
	CreatedByID  string       `json:"created_by_id"`
	VotedUserIDs []string     `json:"voted_user_ids"`
	TargetClass  string       `json:"target_class,omitempty"`

	// Ballots maps a voter id to the option it voted for.
	Ballots map[string]string `json:"-"`
}

type Resource struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        ResourceType `json:"type"`
	Content     string       `json:"content"` // URL for LINK and FILE, author or reference for BOOK
	Description string       `json:"description,omitempty"`
	Subject     string       `json:"subject"`
	TargetClass string       `json:"target_class,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

type Settings struct {
	SchoolName string `json:"school_name" validate:"required,notblank"`
	ThemeColor string `json:"theme_color" validate:"required,notblank"`
}

func DefaultSettings() Settings {
	return Settings{SchoolName: DefaultSchoolName, ThemeColor: DefaultThemeColor}
}

func (s *Settings) Validate(validate *validator.Validate) error {
	s.SchoolName = core.CleanString(s.SchoolName)
	s.ThemeColor = core.CleanString(s.ThemeColor)
	return validate.Struct(s)
}

func (c ClassGroup) EntityID() string   { return c.ID }
func (a Announcement) EntityID() string { return a.ID }
func (e Exam) EntityID() string         { return e.ID }
func (p Poll) EntityID() string         { return p.ID }
func (r Resource) EntityID() string     { return r.ID }

func (a Announcement) Target() string { return a.TargetClass }
func (e Exam) Target() string         { return e.TargetClass }
func (p Poll) Target() string         { return p.TargetClass }
func (r Resource) Target() string     { return r.TargetClass }
