package main

import (
	"context"

	"github.com/semsync/semsync/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	if err := user.NewSetUserPassword(usr, pwd).Validate(cli.validate); err != nil {
		return cli.translate(err)
	}
	_, err = cli.usrSvc.SetPassword(ctx, usr, pwd)
	return err
}

func (cli *commandLine) setActive(uname string, active bool) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	_, err = cli.usrSvc.SetActive(ctx, usr, active)
	return err
}
