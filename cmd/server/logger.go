package main

import (
	"io"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"

	auth "github.com/goliatone/go-user-auth"
)

func newRootLogger(out io.Writer) *glog.BaseLogger {
	return glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("app"),
		glog.WithAddSource(false),
		glog.WithWriter(out),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
}

// loggerFactory applies LOG_LEVEL to the root logger and hands out
// named children that inherit it.
func loggerFactory(lgr *glog.BaseLogger, level string) func(name string) auth.Logger {
	lgr = lgr.WithLevel(level)
	return func(name string) auth.Logger {
		return lgr.GetLogger(name)
	}
}
