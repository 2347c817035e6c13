//go:build !windows

package harness

const eol = "\n"
