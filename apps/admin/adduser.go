package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/core/user"
)

var newID = uuid.NewString // mockable

// addUser creates a user; the email must not be taken.
func (cli *commandLine) addUser(ctx context.Context, nu user.NewUser) error {
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}
	if _, err := cli.findUser(ctx, nu.Email); err == nil {
		return user.ErrEmailExists
	} else if err != user.ErrNotFound {
		return err
	}

	usr := user.User{
		ID:         newID(),
		Name:       nu.Name,
		Email:      nu.Email,
		Role:       nu.Role,
		ClassGroup: nu.ClassGroup,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	if err := cli.gw.Users.Insert(ctx, usr); err != nil {
		return err
	}
	fmt.Printf("created %s (%s)\n", usr.Email, usr.ID)
	return nil
}
