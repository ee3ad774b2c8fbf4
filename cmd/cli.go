package cmd

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fzft/go-probe-table/deps/linenoise"
	"github.com/fzft/go-probe-table/dict"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	CliHisFileEnv     = "PROBECLI_HISTFILE"
	CliHisFileDefault = ".probecli_history"
	CliRCFileEnv      = "PROBECLI_RCFILE"
	CliRCFileDefault  = ".probeclirc"
)

type OutputMode uint8

const (
	OutputStandard OutputMode = iota
	OutputRaw
)

// errQuit is returned by Exec for QUIT and EXIT.
var errQuit = errors.New("quit")

type CliCfg struct {
	prefs       Preferences
	interactive bool
	output      OutputMode
	prompt      string
	historyFile string
}

// Cli is an interactive shell over a string-keyed dict.HashTable.
type Cli struct {
	config *CliCfg
	fs     afero.Fs
	in     io.Reader
	out    io.Writer
	logger *zap.Logger
	table  *dict.HashTable[string, string]
}

// NewCli creates a shell reading commands from in and writing replies to out.
// When in is a terminal the shell runs the line editor with history;
// otherwise it reads one command per line. Output is raw unless out is a
// terminal.
func NewCli(fsys afero.Fs, in io.Reader, out io.Writer, logger *zap.Logger) *Cli {
	config := &CliCfg{
		prefs:  DefaultPreferences(),
		output: OutputRaw,
	}
	if isTerminal(in) {
		config.interactive = true
		config.historyFile = getDotfilePath(CliHisFileEnv, CliHisFileDefault)
	}
	if isTerminal(out) {
		config.output = OutputStandard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cli{config: config, fs: fsys, in: in, out: out, logger: logger}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetOutput forces the reply format.
func (cli *Cli) SetOutput(mode OutputMode) {
	cli.config.output = mode
}

// Reset replaces the table with an empty one built from the current
// preferences.
func (cli *Cli) Reset() error {
	opts, err := cli.config.prefs.tableOptions()
	if err != nil {
		return err
	}
	opts = append(opts, dict.WithLogger(cli.logger))
	cli.table = dict.New[string, string](opts...)
	cli.logger.Debug("table reset",
		zap.Int("capacity", cli.table.Capacity()),
		zap.Float64("fill_factor", cli.table.FillFactor()),
		zap.Stringer("policy", cli.table.Policy()))
	return nil
}

// Run executes args as a single command when given, otherwise reads
// commands until EOF or QUIT.
func (cli *Cli) Run(args []string) error {
	if cli.table == nil {
		if err := cli.Reset(); err != nil {
			return err
		}
	}

	if len(args) > 0 {
		return cli.issueCommand(args)
	}
	if cli.config.interactive {
		return cli.repl()
	}
	return cli.script()
}

func (cli *Cli) repl() (err error) {
	ln := linenoise.New(cli.fs)
	ln.SetWords(commandNames)

	history := cli.config.historyFile
	if history != "" {
		if err := ln.HistoryLoad(history); err != nil && !errors.Is(err, fs.ErrNotExist) {
			cli.logger.Warn("history not loaded", zap.String("file", history), zap.Error(err))
		}
	}
	defer func() {
		if history != "" {
			err = multierr.Append(err, errors.Wrap(ln.HistorySave(history), "save history"))
		}
		err = multierr.Append(err, ln.Close())
	}()

	for {
		cli.refreshPrompt()
		line, perr := ln.Prompt(cli.config.prompt)
		if perr != nil {
			if errors.Is(perr, liner.ErrPromptAborted) {
				continue
			}
			if errors.Is(perr, io.EOF) {
				return nil
			}
			return perr
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		if errors.Is(cli.issueLine(line), errQuit) {
			return nil
		}
	}
}

// script runs newline separated commands from the input. Empty lines and
// lines starting with # are skipped.
func (cli *Cli) script() error {
	scanner := bufio.NewScanner(cli.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if errors.Is(cli.issueLine(line), errQuit) {
			return nil
		}
	}
	return scanner.Err()
}

// issueLine splits line, handles an optional leading repeat count and runs
// the command.
func (cli *Cli) issueLine(line string) error {
	argv, ok := splitArgs(line)
	if !ok {
		fmt.Fprintln(cli.out, "Invalid argument(s)")
		return nil
	}
	if len(argv) == 0 {
		return nil
	}

	// check if we have a repeat command option and need to skip the first arg
	repeat := 1
	if len(argv) > 1 {
		if n, err := strconv.Atoi(argv[0]); err == nil {
			if n <= 0 {
				fmt.Fprintln(cli.out, "Invalid repeat command option value.")
				return nil
			}
			repeat = n
			argv = argv[1:]
		}
	}

	var err error
	for i := 0; i < repeat; i++ {
		if err = cli.issueCommand(argv); errors.Is(err, errQuit) {
			return err
		}
	}
	return err
}

// issueCommand runs one command and prints its reply or error.
func (cli *Cli) issueCommand(argv []string) error {
	r, err := cli.Exec(argv)
	if errors.Is(err, errQuit) {
		return err
	}
	if err != nil {
		cli.logger.Debug("command failed", zap.Strings("argv", argv), zap.Error(err))
		fmt.Fprintln(cli.out, formatError(err, cli.config.output))
		return err
	}
	if r != nil {
		fmt.Fprintln(cli.out, r.format(cli.config.output))
	}
	return nil
}

// Exec runs a single command already split into words.
func (cli *Cli) Exec(argv []string) (reply, error) {
	if len(argv) == 0 {
		return nil, nil
	}
	if cli.table == nil {
		if err := cli.Reset(); err != nil {
			return nil, err
		}
	}

	name := argv[0]
	switch {
	case strings.HasPrefix(name, ":"):
		return cli.setPreference(argv)
	case strings.EqualFold(name, "quit") || strings.EqualFold(name, "exit"):
		return nil, errQuit
	case strings.EqualFold(name, "clear"):
		if len(argv) != 1 {
			return nil, errors.New("wrong number of arguments for 'clear' command")
		}
		return nil, linenoise.ClearScreen(cli.out)
	}

	c := lookupCommand(name)
	if c == nil {
		return nil, errors.Errorf("unknown command '%s'", name)
	}
	if !c.arityOK(len(argv)) {
		return nil, errors.Errorf("wrong number of arguments for '%s' command", strings.ToLower(c.docs.name))
	}
	return c.proc(cli, argv)
}

// splitArgs splits a line into words. Double quoted words may contain
// spaces and the escapes \" \\ \n \t. It reports false for unbalanced quotes.
func splitArgs(line string) ([]string, bool) {
	var (
		argv    []string
		cur     strings.Builder
		inQuote bool
		inWord  bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote && c == '\\' && i+1 < len(line):
			i++
			switch line[i] {
			case 'n':
				cur.WriteByte('\n')
			case 't':
				cur.WriteByte('\t')
			default:
				cur.WriteByte(line[i])
			}
		case c == '"':
			if inQuote {
				// a closing quote must end the word
				if i+1 < len(line) && line[i+1] != ' ' && line[i+1] != '\t' {
					return nil, false
				}
				argv = append(argv, cur.String())
				cur.Reset()
				inQuote, inWord = false, false
			} else if !inWord {
				inQuote = true
			} else {
				cur.WriteByte(c)
			}
		case !inQuote && (c == ' ' || c == '\t'):
			if inWord {
				argv = append(argv, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteByte(c)
			if !inQuote {
				inWord = true
			}
		}
	}
	if inQuote {
		return nil, false
	}
	if inWord {
		argv = append(argv, cur.String())
	}
	return argv, true
}

func (cli *Cli) refreshPrompt() {
	prompt := cli.config.prefs.Prompt
	if cli.table != nil {
		prompt = fmt.Sprintf("%s[%d/%d]", prompt, cli.table.Count(), cli.table.Capacity())
	}
	cli.config.prompt = prompt + "> "
}

func getDotfilePath(envOverride, dotFilename string) string {
	path := os.Getenv(envOverride)
	if path != "" {
		if path == "/dev/null" {
			return ""
		}
		return path
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, dotFilename)
	}
	return ""
}
