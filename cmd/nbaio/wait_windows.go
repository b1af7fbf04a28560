//go:build windows

package main

import (
	"os"
	"os/signal"
)

// Windows has no SIGUSR1; only interruption is available.
const unblockSignalName = "none"

func notifyWaitSignals(ch chan<- os.Signal) {
	signal.Notify(ch, os.Interrupt)
}

func isUnblockSignal(os.Signal) bool {
	return false
}
