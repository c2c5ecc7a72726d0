package main

import (
	"context"
	"fmt"
	"time"

	"github.com/youwenshao/staffroom/core"
	"github.com/youwenshao/staffroom/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, role, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	role = core.CleanString(role, true /* lower */)

	switch role {
	case user.RoleStudentTeacher, user.RoleProfessor, user.RoleAdmin: // pass
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	usr, err := cli.usrRepo.GetUserByUsername(ctx, uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username:  uname,
			Role:      role,
			CreatedAt: time.Now().UTC(),
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.Role = role
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
