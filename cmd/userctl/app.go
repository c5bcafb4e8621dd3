package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-print"
	"github.com/spf13/pflag"

	auth "github.com/goliatone/go-user-auth"
)

const usage = `Usage: userctl [global flags] <command> [flags]

Commands:
  add [--email E] [--role user|admin] [username]   create an account
  seed                                             create the admin and user accounts
  list                                             print every stored account
`

// App runs maintenance commands against the user collection
type App struct {
	repo      auth.RepositoryManager
	registrar *auth.RegisterUserHandler
	in        *bufio.Reader
	out       io.Writer
}

func NewApp(repo auth.RepositoryManager, logger auth.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		repo:      repo,
		registrar: auth.NewRegisterUserHandler(repo).WithLogger(logger),
		in:        bufio.NewReader(in),
		out:       out,
	}
}

// Run dispatches args[0] to the matching command
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "add":
		return a.add(ctx, args[1:])
	case "seed":
		return a.seed(ctx)
	case "list":
		return a.list(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "account email")
	role := fs.String("role", string(auth.RoleUser), "account role: user or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, ok := auth.ParseRole(*role); !ok {
		return fmt.Errorf("unknown role %q, expected one of %v", *role, auth.GetAllRoles())
	}

	username := strings.TrimSpace(fs.Arg(0))
	if username == "" {
		var err error
		username, err = GetSimpleText(a.in, "Username", a.out)
		if err != nil {
			return err
		}
	}

	user, err := a.create(ctx, username, *email, *role)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "created %s (id %d, role %s)\n", user.Username, user.ID, user.Role)
	return nil
}

// seed creates the default admin and user accounts, skipping any that
// already exist. Passwords are always read from the terminal.
func (a *App) seed(ctx context.Context) error {
	accounts := []struct {
		username string
		role     auth.UserRole
	}{
		{username: "admin", role: auth.RoleAdmin},
		{username: "user", role: auth.RoleUser},
	}

	for _, acc := range accounts {
		if _, err := a.repo.Users().GetByUsername(ctx, acc.username); err == nil {
			fmt.Fprintf(a.out, "skipping %s: already exists\n", acc.username)
			continue
		}

		user, err := a.create(ctx, acc.username, "", string(acc.role))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "created %s (id %d, role %s)\n", user.Username, user.ID, user.Role)
	}

	return nil
}

func (a *App) create(ctx context.Context, username, email, role string) (*auth.User, error) {
	password, err := GetNewPassword(a.out, username)
	if err != nil {
		return nil, err
	}
	defer wipe(password)

	user, err := a.registrar.Handle(ctx, auth.RegisterUserMessage{
		Username: username,
		Email:    email,
		Password: string(password),
		Role:     role,
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (a *App) list(ctx context.Context) error {
	records, err := a.repo.Users().List(ctx)
	if err != nil {
		return err
	}

	out := make([]auth.UserResponse, 0, len(records))
	for i := range records {
		out = append(out, auth.NewUserResponse(&records[i]))
	}

	fmt.Fprintln(a.out, print.MaybePrettyJSON(out))
	return nil
}
