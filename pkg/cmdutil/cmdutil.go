package cmdutil

import (
	"os"
	"os/signal"
	"syscall"
)

// InterruptChan returns a channel that is closed on SIGINT or SIGTERM.
// Closing (rather than sending) lets any number of goroutines wait on it.
func InterruptChan() <-chan struct{} {
	interrupt := make(chan struct{})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		signal.Stop(sigChan)
		close(interrupt)
	}()

	return interrupt
}
