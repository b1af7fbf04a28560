//go:build unix

package main

import (
	"os"
	"os/signal"
	"syscall"
)

const unblockSignalName = "SIGUSR1"

func notifyWaitSignals(ch chan<- os.Signal) {
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGINT, syscall.SIGTERM)
}

func isUnblockSignal(s os.Signal) bool {
	return s == syscall.SIGUSR1
}
