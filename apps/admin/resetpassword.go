package main

import (
	"context"

	"github.com/trezcool/gradebook/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	return cli.usrSvc.ResetPassword(context.Background(), user.ResetUserPassword{
		Username:        uname,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
}
