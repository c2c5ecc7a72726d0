package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/youwenshao/staffroom/core/user"
	dummydb "github.com/youwenshao/staffroom/storage/database/dummy"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte("s3cretpwd!"), nil }
	t.Cleanup(func() { readPasswordFunc = orig })

	return &commandLine{
		usrRepo: dummydb.NewUserRepository(dummydb.Open()),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func checkCLIErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	if err != nil {
		if tt.wantErr != nil {
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		} else if tt.wantErrStr != "" {
			if err.Error() != tt.wantErrStr {
				t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
			}
		} else {
			t.Errorf("cli.run() unexpected error = %v", err)
		}
	} else if tt.wantErr != nil || tt.wantErrStr != "" {
		t.Errorf("cli.run() expected an error")
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no subcommand", args: []string{}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"lol"}, wantErr: errHelp},
		{name: "adduser: no username", args: []string{"adduser"}, wantErr: errHelp},
		{name: "adduser: bad role", args: []string{"adduser", "-username", "kwame", "-role", "principal"}, wantErrStr: `unknown role "principal"`},
		{name: "adduser", args: []string{"adduser", "-username", "kwame", "-role", "professor"}},
		{name: "resetpassword: no username", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "resetpassword: unknown user", args: []string{"resetpassword", "-username", "nobody"}, wantErr: user.ErrNotFound},
		{name: "resetpassword", args: []string{"resetpassword", "-username", "kwame"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkCLIErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	if err := cli.addUser("Kwame", "professor", "s3cretpwd!"); err != nil {
		t.Fatalf("addUser(): %v", err)
	}
	usr, err := cli.usrRepo.GetUserByUsername(ctx, "kwame")
	if err != nil {
		t.Fatalf("GetUserByUsername(): %v", err)
	}
	if usr.Role != user.RoleProfessor {
		t.Errorf("role = %s; want %s", usr.Role, user.RoleProfessor)
	}
	if err = usr.CheckPassword("s3cretpwd!"); err != nil {
		t.Errorf("CheckPassword(): %v", err)
	}

	// adding an existing user updates role and password
	if err = cli.addUser("kwame", "admin", "newpwd123"); err != nil {
		t.Fatalf("addUser() update: %v", err)
	}
	usr, err = cli.usrRepo.GetUserByUsername(ctx, "kwame")
	if err != nil {
		t.Fatalf("GetUserByUsername(): %v", err)
	}
	if usr.Role != user.RoleAdmin {
		t.Errorf("role = %s; want %s", usr.Role, user.RoleAdmin)
	}
	if err = usr.CheckPassword("newpwd123"); err != nil {
		t.Errorf("CheckPassword() after update: %v", err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var gotCommand string
	var gotArgs []string
	origMigrate := migrateRunFunc
	migrateRunFunc = func(_ *sqlx.DB, command string, args ...string) error {
		gotCommand, gotArgs = command, args
		switch command {
		case "up", "down", "status", "version", "up-to", "down-to", "redo", "reset", "create", "fix":
			return nil
		default:
			return fmt.Errorf("%q: no such command", command)
		}
	}
	t.Cleanup(func() { migrateRunFunc = origMigrate })

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkCLIErr(t, tt, cli.run(args))
		})
	}

	if gotCommand != "up-to" {
		t.Errorf("command = %s; want up-to", gotCommand)
	}
	if len(gotArgs) != 1 || gotArgs[0] != "2" {
		t.Errorf("args = %v; want [2]", gotArgs)
	}
}
