package cmd

import "os"

const defaultWidth = 80

// outputWidth is the terminal width when output goes to a terminal,
// defaultWidth otherwise.
func (cli *Cli) outputWidth() int {
	f, ok := cli.out.(*os.File)
	if !ok || !isTerminal(f) {
		return defaultWidth
	}
	return terminalWidth(f.Fd())
}
