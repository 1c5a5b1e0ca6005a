//go:build !linux

package main

import (
	"os"
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

// The hotkey library needs the OS main thread on macOS and Windows, so run
// is handed to mainthread and its exit code carried back out.
func main() {
	code := 0
	mainthread.Init(func() { code = run() })
	os.Exit(code)
}
