//go:build !unix

package runner

import "os/exec"

// setProcessGroup is a no-op where process groups are unavailable; the
// default cancellation kills the child and WaitDelay bounds the rest.
func setProcessGroup(*exec.Cmd) {}
