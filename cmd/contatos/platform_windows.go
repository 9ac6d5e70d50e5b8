//go:build windows

package main

import (
	"os"
	"os/signal"
	"syscall"
	"unsafe"
)

var (
	kernel32           = syscall.NewLazyDLL("kernel32.dll")
	procGetConsoleMode = kernel32.NewProc("GetConsoleMode")
	procSetConsoleMode = kernel32.NewProc("SetConsoleMode")
	procGetStdHandle   = kernel32.NewProc("GetStdHandle")
)

const (
	// STD_OUTPUT_HANDLE, (DWORD)-11 in the console API.
	stdOutputHandle = ^uintptr(10)

	enableVirtualTerminalProcessing = 0x0004
)

// enableANSI switches the stdout console into virtual-terminal mode so the
// banner, progress bar and summary colors render on Windows 10+. Older
// consoles fail the mode query and keep plain output.
func enableANSI() {
	handle, _, _ := procGetStdHandle.Call(stdOutputHandle)
	if handle == 0 || handle == ^uintptr(0) {
		return
	}
	var mode uint32
	if r, _, _ := procGetConsoleMode.Call(handle, uintptr(unsafe.Pointer(&mode))); r == 0 {
		return
	}
	procSetConsoleMode.Call(handle, uintptr(mode|enableVirtualTerminalProcessing))
}

// registerSignals routes Ctrl+C to the batch cancel channel. There is no
// SIGTERM on Windows.
func registerSignals(ch chan<- os.Signal) {
	signal.Notify(ch, syscall.SIGINT)
}
