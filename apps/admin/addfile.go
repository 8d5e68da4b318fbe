package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/core/school"
)

type fileInput struct {
	path        string
	title       string
	subject     string
	class       string
	description string
}

// addFile uploads a file and shares it as a FILE resource pointing at the uploaded copy.
func (cli *commandLine) addFile(ctx context.Context, in fileInput) error {
	nr := school.NewResource{
		Title:       in.title,
		Type:        school.ResourceFile,
		Content:     in.path, // replaced by the URL once uploaded
		Description: in.description,
		Subject:     in.subject,
		TargetClass: in.class,
	}
	if err := nr.Validate(cli.validate); err != nil {
		return err
	}

	f, err := os.Open(in.path)
	if err != nil {
		return err
	}
	defer f.Close()

	up, err := cli.openUploader(ctx)
	if err != nil {
		return errors.Wrap(err, "opening file storage")
	}
	url, err := up.Upload(ctx, filepath.Base(in.path), f)
	if err != nil {
		return err
	}

	nr.Content = url
	res := nr.Build(newID(), time.Now())
	if err := cli.gw.Resources.Insert(ctx, res); err != nil {
		return errors.Wrapf(err, "file uploaded to %s but not shared", url)
	}
	fmt.Printf("shared %q: %s\n", res.Title, url)
	return nil
}
