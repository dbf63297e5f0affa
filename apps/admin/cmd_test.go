package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/user"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
	"github.com/trezcool/shule/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()
	usrRepo = inmemdb.NewUserRepository(inmemdb.Open())
	return &commandLine{usrRepo: usrRepo}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	lookup     string // username or email of the user to check
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest, check func(t *testing.T, tt cliTest)) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		mockPassword(tt.pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				require.NoError(t, err)
				if check != nil {
					check(t, tt)
				}
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var gotCommand string
	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		gotCommand = command
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: `"lol": no such command`},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}, func(t *testing.T, tt cliTest) {
		assert.Equal(t, tt.args[1], gotCommand)
	})
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	existing := testutil.CreateUser(t, usrRepo, "Old Name", "awe", "awe@test.cd", "mdr", nil, false)

	runCLITests(t, cli, []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"adduser", "-username", "lol"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"adduser", "-lol"}, pwd: "pwd", wantErr: errHelp},
		{name: "new admin", args: []string{"adduser", "-username", " Admin ", "-email", "admin@test.cd", "-name", "Big Boss", "-admin"}, pwd: "s3cr3t", lookup: "admin"},
		{name: "existing user", args: []string{"adduser", "-email", "AWE@test.cd", "-name", "New Name"}, pwd: "s3cr3t", lookup: "awe"},
	}, func(t *testing.T, tt cliTest) {
		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{UsernameOrEmail: []string{tt.lookup}})
		require.NoError(t, err)
		require.NotNil(t, usr.IsActive)
		assert.True(t, *usr.IsActive)
		assert.NoError(t, usr.CheckPassword(tt.pwd))
	})

	admin, err := usrRepo.GetUser(context.Background(), user.GetFilter{UsernameOrEmail: []string{"admin"}})
	require.NoError(t, err)
	assert.Equal(t, "Big Boss", admin.Name)
	assert.Equal(t, "admin@test.cd", admin.Email)
	assert.Equal(t, user.AllRoles, admin.Roles)

	updated, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: existing.ID})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "awe", updated.Username)
	assert.Empty(t, updated.Roles)

	users, err := usrRepo.QueryUsers(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "mdr", nil, true)

	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, pwd: "lol", wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, pwd: "lol"},
		{name: "reset with email", args: []string{"resetpassword", "-username", " AWE@test.cd "}, pwd: "lmao"},
	}, func(t *testing.T, tt cliTest) {
		refreshed, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
		require.NoError(t, err)
		assert.NoError(t, refreshed.CheckPassword(tt.pwd))
	})
}
