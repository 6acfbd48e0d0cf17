package cli

import (
	"os"
	"os/signal"
	"syscall"
)

// WaitForShutdown returns a channel that receives SIGINT or SIGTERM.
// The run command blocks on it before draining in-flight work.
func WaitForShutdown() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	return sigChan
}
