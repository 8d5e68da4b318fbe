package main

import (
	"context"

	"github.com/trezcool/classpoll/core/gateway"
)

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	usr, err := cli.findUser(ctx, email)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	return cli.gw.Users.Update(ctx, usr.ID, gateway.Fields{"Secret": usr.Secret})
}
