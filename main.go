package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fzft/go-probe-table/cmd"
	"github.com/fzft/go-probe-table/log"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code. Deferred cleanup runs before main exits.
func run(args []string) int {
	var (
		prefs       cmd.Preferences
		verbose     bool
		raw         bool
		showVersion bool
	)
	fs := flag.NewFlagSet("probe-cli", flag.ContinueOnError)
	fs.IntVar(&prefs.Capacity, "c", 0, "initial slot count")
	fs.Float64Var(&prefs.FillFactor, "f", 0, "fill factor")
	fs.StringVar(&prefs.Policy, "p", "", "probe step policy")
	fs.BoolVar(&verbose, "v", false, "verbose mode")
	fs.BoolVar(&raw, "raw", false, "raw reply formatting")
	fs.BoolVar(&showVersion, "version", false, "output version and exit")
	fs.Usage = func() {
		cmd.Usage(os.Stderr, buildInfo())
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Printf("probe-cli %s\n", cmd.Version(buildInfo()))
		return 0
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	if err := log.InitLogger(level, true); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Logger.Sync() }()

	cli := cmd.NewCli(afero.NewOsFs(), os.Stdin, os.Stdout, log.Logger)
	if err := cli.LoadPreferences(); err != nil {
		log.Logger.Warn("preferences not loaded", zap.Error(err))
	}
	if err := cli.Override(prefs); err != nil {
		fmt.Fprintf(os.Stderr, "invalid option: %v\n", err)
		return 1
	}
	if raw {
		cli.SetOutput(cmd.OutputRaw)
	}

	if err := cli.Run(fs.Args()); err != nil {
		log.Logger.Debug("exit with error", zap.Error(err))
		return 1
	}
	return 0
}
