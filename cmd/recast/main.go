package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/recast-io/recast/internal/config"
	"github.com/recast-io/recast/internal/run"
)

func main() {
	exitCode := runMain()
	os.Exit(exitCode)
}

func runMain() int {
	cfg, exitResult := config.Parse(os.Args)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	r, exitResult := run.New(cfg)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return r.Run(ctx)
}
