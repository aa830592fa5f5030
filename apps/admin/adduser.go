package main

import (
	"github.com/edumedsolutions/edumed/core/user"
)

// addUser creates an active local account, or resets the password of an existing one.
func (cli *commandLine) addUser(email, pwd string) error {
	if _, err := cli.usrSvc.GetByEmail(email); err == nil {
		_, err = cli.usrSvc.SetPassword(email, pwd)
		return err
	} else if err != user.ErrNotFound {
		return err
	}

	nu := user.NewUser{Email: email, Password: pwd}
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}
	_, err := cli.usrSvc.Create(nu)
	return err
}
