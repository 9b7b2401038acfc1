package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/arcade/internal/probe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := probe.NewRootCommand().ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("arcade-probe: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
