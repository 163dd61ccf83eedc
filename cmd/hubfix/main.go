package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hubfix-ai/hubfix-cli/internal/interfaces/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		cancel()
	}()

	cli.Execute(ctx, cli.NewContainer())
}
