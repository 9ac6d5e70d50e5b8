//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// enableANSI is a no-op on Unix; terminals render the CLI colors natively.
func enableANSI() {}

// registerSignals routes Ctrl+C and service-manager termination to the
// batch cancel channel.
func registerSignals(ch chan<- os.Signal) {
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
}
