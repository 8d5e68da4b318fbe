package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/classpoll/core/gateway"
	"github.com/trezcool/classpoll/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// uploader stores a file and returns its public URL.
type uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type commandLine struct {
	db           *sql.DB
	gw           gateway.Gateway
	validate     *validator.Validate
	openUploader func(ctx context.Context) (uploader, error)
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  adduser -email EMAIL -name NAME -role ROLE [-class CLASS] - create a user; the password is prompted")
	fmt.Println("  resetpassword -email EMAIL - reset user's password; the new one is prompted")
	fmt.Println("  importexams -file PATH [-sheet SHEET] [-by EMAIL] - import the exams of a timetable workbook")
	fmt.Println("  addfile -path PATH -title TITLE -subject SUBJECT [-class CLASS] - upload a file and share it as a resource")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserRole := addUserCmd.String("role", string(user.RoleStudent), "ADMIN, RESPONSABLE or ELEVE.")
	addUserClass := addUserCmd.String("class", "", "The user's class group; required unless ADMIN.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	importExamsCmd := flag.NewFlagSet("importexams", flag.ContinueOnError)
	importExamsFile := importExamsCmd.String("file", "", "The .xlsx timetable.")
	importExamsSheet := importExamsCmd.String("sheet", "", "The sheet to read; the first one by default.")
	importExamsBy := importExamsCmd.String("by", user.SeedAdminEmail, "The email of the user recorded as creator.")

	addFileCmd := flag.NewFlagSet("addfile", flag.ContinueOnError)
	addFilePath := addFileCmd.String("path", "", "The file to upload.")
	addFileTitle := addFileCmd.String("title", "", "The resource title.")
	addFileSubject := addFileCmd.String("subject", "", "The resource subject.")
	addFileClass := addFileCmd.String("class", "", "The target class group; the whole school by default.")
	addFileDesc := addFileCmd.String("description", "", "An optional description.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		nu := user.NewUser{
			Name:       *addUserName,
			Email:      *addUserEmail,
			Password:   pwd,
			Role:       user.Role(*addUserRole),
			ClassGroup: *addUserClass,
		}
		return cli.addUser(ctx, nu)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordEmail, pwd)
	case "importexams":
		if err := importExamsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importExamsFile == "" {
			importExamsCmd.Usage()
			return errHelp
		}
		return cli.importExams(ctx, *importExamsFile, *importExamsSheet, *importExamsBy)
	case "addfile":
		if err := addFileCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addFilePath == "" || *addFileTitle == "" || *addFileSubject == "" {
			addFileCmd.Usage()
			return errHelp
		}
		return cli.addFile(ctx, fileInput{
			path:        *addFilePath,
			title:       *addFileTitle,
			subject:     *addFileSubject,
			class:       *addFileClass,
			description: *addFileDesc,
		})
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// findUser looks the user up by email, ignoring case.
func (cli *commandLine) findUser(ctx context.Context, email string) (user.User, error) {
	users, err := cli.gw.Users.LoadAll(ctx)
	if err != nil {
		return user.User{}, err
	}
	for _, usr := range users {
		if usr.HasEmail(email) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}
