package pgrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/core/gateway"
	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/user"
)

// NewGateway returns the postgres-backed gateway.
func NewGateway(db *sqlx.DB) gateway.Gateway {
	return gateway.Gateway{
		Users:         newUserTable(db),
		ClassGroups:   newClassGroupTable(db),
		Announcements: newAnnouncementTable(db),
		Exams:         newExamTable(db),
		Polls:         newPollTable(db),
		Resources:     newResourceTable(db),
		Settings:      &settingsStore{db: db},
	}
}

func newUserTable(db *sqlx.DB) *table[user.User, userRow] {
	return &table[user.User, userRow]{
		db:      db,
		name:    "users",
		columns: []string{"id", "name", "email", "password", "role", "class_group"},
		toRow:   userToRow,
		fromRow: userFromRow,
		fields: map[string]column{
			"Name":       textColumn("name"),
			"Email":      textColumn("email"),
			"Secret":     textColumn("password"),
			"Role":       textColumn("role"),
			"ClassGroup": nullTextColumn("class_group"),
		},
	}
}

func newClassGroupTable(db *sqlx.DB) *table[school.ClassGroup, classGroupRow] {
	return &table[school.ClassGroup, classGroupRow]{
		db:      db,
		name:    "class_groups",
		columns: []string{"id", "name"},
		orderBy: "name",
		toRow:   classGroupToRow,
		fromRow: classGroupFromRow,
		fields:  map[string]column{"Name": textColumn("name")},
	}
}

func newAnnouncementTable(db *sqlx.DB) *table[school.Announcement, announcementRow] {
	return &table[school.Announcement, announcementRow]{
		db:   db,
		name: "announcements",
		columns: []string{
			"id", "title", "subject", "meet_link", "date", "is_urgent", "author_id", "author_name", "target_class",
		},
		toRow:   announcementToRow,
		fromRow: announcementFromRow,
		fields: map[string]column{
			"Title":       textColumn("title"),
			"Subject":     textColumn("subject"),
			"MeetLink":    nullTextColumn("meet_link"),
			"Date":        plainColumn("date"),
			"IsUrgent":    plainColumn("is_urgent"),
			"TargetClass": nullTextColumn("target_class"),
		},
	}
}

func newExamTable(db *sqlx.DB) *table[school.Exam, examRow] {
	return &table[school.Exam, examRow]{
		db:   db,
		name: "exams",
		columns: []string{
			"id", "subject", "date", "start_time", "duration_minutes", "room", "notes", "created_by_id", "target_class",
		},
		toRow:   examToRow,
		fromRow: examFromRow,
		fields: map[string]column{
			"Subject":         textColumn("subject"),
			"Date":            plainColumn("date"),
			"StartTime":       textColumn("start_time"),
			"DurationMinutes": plainColumn("duration_minutes"),
			"Room":            textColumn("room"),
			"Notes":           nullTextColumn("notes"),
			"TargetClass":     nullTextColumn("target_class"),
		},
	}
}

func newPollTable(db *sqlx.DB) *table[school.Poll, pollRow] {
	return &table[school.Poll, pollRow]{
		db:   db,
		name: "polls",
		columns: []string{
			"id", "title", "description", "options", "is_anonymous", "created_at", "expires_at",
			"created_by_id", "voted_user_ids", "ballots", "target_class",
		},
		toRow:   pollToRow,
		fromRow: pollFromRow,
		fields: map[string]column{
			"Title":        textColumn("title"),
			"Description":  nullTextColumn("description"),
			"Options":      optionsColumn,
			"ExpiresAt":    plainColumn("expires_at"),
			"VotedUserIDs": votersColumn,
			"Ballots":      jsonColumn("ballots"),
			"TargetClass":  nullTextColumn("target_class"),
		},
	}
}

func newResourceTable(db *sqlx.DB) *table[school.Resource, resourceRow] {
	return &table[school.Resource, resourceRow]{
		db:   db,
		name: "resources",
		columns: []string{
			"id", "title", "type", "content", "description", "subject", "target_class", "created_at",
		},
		toRow:   resourceToRow,
		fromRow: resourceFromRow,
		fields: map[string]column{
			"Title":       textColumn("title"),
			"Type":        textColumn("type"),
			"Content":     textColumn("content"),
			"Description": nullTextColumn("description"),
			"Subject":     textColumn("subject"),
			"TargetClass": nullTextColumn("target_class"),
		},
	}
}

type settingsStore struct {
	db *sqlx.DB
}

var _ gateway.SettingsStore = (*settingsStore)(nil)

func (s *settingsStore) Load(ctx context.Context) (school.Settings, bool, error) {
	var row settingsRow
	err := s.db.GetContext(ctx, &row, "SELECT id, school_name, theme_color FROM school_settings WHERE id = $1", school.SettingsID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return school.Settings{}, false, nil
	case err != nil:
		return school.Settings{}, false, wrap(err, "loading settings")
	}
	return school.Settings{SchoolName: row.SchoolName, ThemeColor: row.ThemeColor}, true, nil
}

func (s *settingsStore) Upsert(ctx context.Context, settings school.Settings) error {
	row := settingsRow{ID: school.SettingsID, SchoolName: settings.SchoolName, ThemeColor: settings.ThemeColor}
	query := `INSERT INTO school_settings (id, school_name, theme_color) VALUES (:id, :school_name, :theme_color)
		ON CONFLICT (id) DO UPDATE SET school_name = EXCLUDED.school_name, theme_color = EXCLUDED.theme_color`
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return wrap(err, "saving settings")
	}
	return nil
}
