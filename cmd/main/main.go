package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root, cc := newRootCommand()
	err := root.ExecuteContext(ctx)
	cc.close()
	stop()

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Error(err)
		}
		os.Exit(1)
	}
}
