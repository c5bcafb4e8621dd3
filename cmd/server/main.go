package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-print"
	"github.com/spf13/pflag"

	auth "github.com/goliatone/go-user-auth"
	"github.com/goliatone/go-user-auth/config"
	"github.com/goliatone/go-user-auth/repository"
)

func main() {
	lgr := newRootLogger(os.Stdout)

	fs := pflag.NewFlagSet("server", pflag.ExitOnError)
	configFile := config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: *configFile,
		Flags:      fs,
	})
	if err != nil {
		lgr.GetLogger("config").Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := loggerFactory(lgr, cfg.LogLevel)

	if cfg.Debug {
		fmt.Println("============")
		fmt.Println(print.MaybePrettyJSON(cfg.Masked()))
		fmt.Println("============")
	}

	ctx := context.Background()

	repo, err := repository.NewRepositoryManager(ctx, cfg.StoreOptions(), logger("repo"))
	if err != nil {
		logger("repo").Error("failed to open user store", "error", err)
		os.Exit(1)
	}
	repo.MustValidate()

	provider := auth.NewUserProvider(repo.Users()).
		WithLogger(logger("provider"))

	registrar := auth.NewRegisterUserHandler(repo).
		WithLogger(logger("register"))

	auther := auth.NewAuthenticator(provider, registrar, cfg).
		WithLogger(logger("auth"))

	ctrl := auth.NewUsersController(repo, auther,
		auth.WithControllerLogger(logger("users")),
		auth.WithControllerDebug(cfg.Debug),
	)

	gate := auth.ProtectedRoute(cfg, auther.TokenService(), logger("gate"))

	app := auth.NewHTTPServer(ctrl, gate, logger("http"))

	go func() {
		logger("http").Info("listening", "addr", cfg.Address(), "store", cfg.StoreBackend)
		if err := app.Listen(cfg.Address()); err != nil {
			logger("http").Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	sig := WaitExitSignal()
	logger("http").Info("shutting down", "signal", sig.String())

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger("http").Error("shutdown failed", "error", err)
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
