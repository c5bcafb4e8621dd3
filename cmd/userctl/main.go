package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-user-auth/config"
	"github.com/goliatone/go-user-auth/repository"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("userctl"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	fs := pflag.NewFlagSet("userctl", pflag.ExitOnError)
	fs.SetInterspersed(false)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	configFile := config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile:         *configFile,
		Flags:              fs,
		AllowMissingSecret: true,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lgr = lgr.WithLevel(cfg.LogLevel)

	ctx := context.Background()

	repo, err := repository.NewRepositoryManager(ctx, cfg.StoreOptions(), lgr.GetLogger("repo"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := NewApp(repo, lgr.GetLogger("register"), os.Stdin, os.Stdout)
	if err := app.Run(ctx, fs.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
