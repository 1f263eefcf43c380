package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fernanden/fernanden.go/contrib/backoffice/pkg/backoffice"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := backoffice.Main(ctx, os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}
