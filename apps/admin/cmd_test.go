package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/user"
	"github.com/trezcool/classpoll/storage/database/inmem"
	"github.com/trezcool/classpoll/tests"
)

type fakeUploader struct {
	names []string
	data  []string
	err   error
}

func (u *fakeUploader) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.names = append(u.names, filename)
	u.data = append(u.data, string(b))
	return "https://files.example.com/" + filename, nil
}

func setup(t *testing.T) (*commandLine, *inmemdb.DB, *fakeUploader) {
	db := inmemdb.Open()
	db.Users.Seed(
		testutil.NewUser(t, user.SeedAdminID, user.SeedAdminName, user.SeedAdminEmail, "", user.RoleAdmin, ""),
		testutil.NewUser(t, "u1", "Awa Diop", "awa@school.sn", "", user.RoleStudent, "6eA"),
	)
	up := new(fakeUploader)
	origNewID := newID
	newID = testutil.SequentialIDs("id")
	t.Cleanup(func() { newID = origNewID })

	cli := &commandLine{
		gw:       db.Gateway(),
		validate: testutil.NewValidate(),
		openUploader: func(context.Context) (uploader, error) {
			return up, nil
		},
	}
	return cli, db, up
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, err error, tt cliTest) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		if errors.Cause(err) != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err == nil || !strings.Contains(err.Error(), tt.wantErrStr) {
			t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
		}
	case err != nil:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	var ran []string
	gooseRunFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		ran = append(ran, strings.Join(append([]string{command}, args...), " "))
		return nil
	}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, cli.run(args), tt)
		})
	}
	assert.Equal(t, []string{"up", "up-to 1", "down", "status"}, ran)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, db, _ := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "awa@school.sn"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@school.sn"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", "AWA@school.sn"}, extra: extra{pwd: "mango-77x"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, cli.run(args), tt)
		})
	}

	usr, ok := db.Users.Get("u1")
	require.True(t, ok)
	assert.NoError(t, usr.CheckPassword("mango-77x"))
}

func Test_commandLine_addUser(t *testing.T) {
	cli, db, _ := setup(t)
	readPasswordFunc = func(int) ([]byte, error) { return []byte("mango-77x"), nil }

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "invalid role", args: []string{"adduser", "-email", "modou@school.sn", "-name", "Modou", "-role", "BOSS", "-class", "6eA"}, wantErrStr: "role"},
		{name: "missing class", args: []string{"adduser", "-email", "modou@school.sn", "-name", "Modou"}, wantErrStr: "class_group"},
		{name: "email taken", args: []string{"adduser", "-email", "awa@school.sn", "-name", "Awa", "-class", "6eA"}, wantErr: user.ErrEmailExists},
		{name: "created", args: []string{"adduser", "-email", " Modou@School.sn ", "-name", "Modou Fall", "-class", "6eA"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, cli.run(args), tt)
		})
	}

	usr, ok := db.Users.Get("id-1")
	require.True(t, ok)
	assert.Equal(t, "modou@school.sn", usr.Email)
	assert.Equal(t, user.RoleStudent, usr.Role)
	assert.NoError(t, usr.CheckPassword("mango-77x"))
}

func writeTimetable(t *testing.T, rows ...[]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "examens.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func Test_commandLine_importExams(t *testing.T) {
	cli, db, _ := setup(t)

	header := []interface{}{"Matière", "Date", "Heure", "Durée", "Salle", "Classe"}
	good := writeTimetable(t, header,
		[]interface{}{"Maths", "02/06/2025", "8:30", 120, "B12", "6eA"},
		[]interface{}{"SVT", "2025-06-03", "14h", 90, "Labo", ""},
	)
	bad := writeTimetable(t, header,
		[]interface{}{"Maths", "02/06/2025", "8:30", 120, "B12", "6eA"},
		[]interface{}{"SVT", "2025-06-03", "14h", 0, "Labo", ""},
	)

	tests := []cliTest{
		{name: "no args", args: []string{"importexams"}, wantErr: errHelp},
		{name: "missing file", args: []string{"importexams", "-file", filepath.Join(t.TempDir(), "nope.xlsx")}, wantErrStr: "no such file"},
		{name: "unknown creator", args: []string{"importexams", "-file", good, "-by", "lol@school.sn"}, wantErr: user.ErrNotFound},
		{name: "invalid row", args: []string{"importexams", "-file", bad}, wantErrStr: "exam 2 (SVT)"},
		{name: "imported", args: []string{"importexams", "-file", good}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, cli.run(args), tt)
		})
	}

	exams, err := db.Exams.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, exams, 2)
	assert.Equal(t, school.Exam{
		ID:              "id-1",
		Subject:         "Maths",
		Date:            time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime:       "08:30",
		DurationMinutes: 120,
		Room:            "B12",
		CreatedByID:     user.SeedAdminID,
		TargetClass:     "6eA",
	}, exams[0])
	assert.Equal(t, "", exams[1].TargetClass)
}

func Test_commandLine_addFile(t *testing.T) {
	cli, db, up := setup(t)

	path := filepath.Join(t.TempDir(), "cours de maths.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	tests := []cliTest{
		{name: "no args", args: []string{"addfile"}, wantErr: errHelp},
		{name: "no subject", args: []string{"addfile", "-path", path, "-title", "Cours"}, wantErr: errHelp},
		{name: "blank title", args: []string{"addfile", "-path", path, "-title", " ", "-subject", "Maths"}, wantErrStr: "title"},
		{name: "missing file", args: []string{"addfile", "-path", path + ".bak", "-title", "Cours", "-subject", "Maths"}, wantErrStr: "no such file"},
		{name: "shared", args: []string{"addfile", "-path", path, "-title", "Cours", "-subject", "Maths", "-class", "6eA"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, cli.run(args), tt)
		})
	}

	assert.Equal(t, []string{"cours de maths.pdf"}, up.names)
	assert.Equal(t, []string{"%PDF"}, up.data)
	res, ok := db.Resources.Get("id-1")
	require.True(t, ok)
	assert.Equal(t, school.ResourceFile, res.Type)
	assert.Equal(t, "https://files.example.com/cours de maths.pdf", res.Content)
	assert.Equal(t, "6eA", res.TargetClass)

	t.Run("upload fails", func(t *testing.T) {
		up.err = errors.New("bucket unreachable")
		err := cli.run([]string{"admin", "addfile", "-path", path, "-title", "Cours", "-subject", "Maths"})
		assert.EqualError(t, err, "bucket unreachable")
		assert.Equal(t, 1, db.Resources.Len())
	})
}
