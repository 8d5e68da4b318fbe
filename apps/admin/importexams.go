package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/services/timetable"
)

// importExams inserts every exam of the timetable workbook at path.
// Nothing is inserted unless every row is valid.
func (cli *commandLine) importExams(ctx context.Context, path, sheet, creatorEmail string) error {
	creator, err := cli.findUser(ctx, creatorEmail)
	if err != nil {
		return errors.Wrapf(err, "creator %q", creatorEmail)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := timetable.Parse(f, sheet)
	if err != nil {
		return err
	}
	for i := range rows {
		if err := rows[i].Validate(cli.validate); err != nil {
			return errors.Wrapf(err, "exam %d (%s)", i+1, rows[i].Subject)
		}
	}

	for i, ne := range rows {
		if err := cli.gw.Exams.Insert(ctx, ne.Build(newID(), creator)); err != nil {
			return errors.Wrapf(err, "inserting exam %d; %d were imported", i+1, i)
		}
	}
	fmt.Printf("imported %d exams\n", len(rows))
	return nil
}
