package main

import (
	"context"
	"strings"

	"github.com/trezcool/gradebook/core/user"
)

// addUser creates an active account; `roles` is a comma separated list of roles.
func (cli *commandLine) addUser(name, uname, email, roles, pwd string) (user.User, error) {
	rls := make([]string, 0)
	for _, role := range strings.Split(roles, ",") {
		if role = strings.TrimSpace(role); role != "" {
			rls = append(rls, role)
		}
	}
	return cli.usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Roles:           rls,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
}
