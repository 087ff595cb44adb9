package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, env := newRootCmd()
	err := root.ExecuteContext(ctx)
	env.close()
	if err != nil {
		stop()
		os.Exit(1)
	}
}
