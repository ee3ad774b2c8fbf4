//go:build !unix

package cmd

func terminalWidth(uintptr) int {
	return defaultWidth
}
