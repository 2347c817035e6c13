//go:build windows

package harness

const eol = "\r\n"
