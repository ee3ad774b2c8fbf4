package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fzft/go-probe-table/dict"
)

var CliVersion = "0.1.0"

// BuildInfo is the metadata stamped into the binary at link time. Fields
// left as "unknown" or empty are omitted from Version.
type BuildInfo struct {
	GitSHA1   string
	GitDirty  string
	BuildID   string
	BuildDate string
}

// commit reports whether GitSHA1 is a non-zero hex object name.
func (b BuildInfo) commit() bool {
	if b.GitSHA1 == "" || strings.Trim(b.GitSHA1, "0") == "" {
		return false
	}
	return strings.IndexFunc(b.GitSHA1, func(r rune) bool {
		return !strings.ContainsRune("0123456789abcdefABCDEF", r)
	}) < 0
}

func (b BuildInfo) dirty() bool {
	n, err := strconv.Atoi(b.GitDirty)
	return err == nil && n != 0
}

func known(s string) bool {
	return s != "" && s != "unknown"
}

// Version renders the shell version followed by whatever build metadata
// is available, e.g. "0.1.0 (git:1a2b3c-dirty) build=42 date=2024-05-01".
func Version(b BuildInfo) string {
	var sb strings.Builder
	sb.WriteString(CliVersion)
	if b.commit() {
		fmt.Fprintf(&sb, " (git:%s", b.GitSHA1)
		if b.dirty() {
			sb.WriteString("-dirty")
		}
		sb.WriteByte(')')
	}
	if known(b.BuildID) {
		fmt.Fprintf(&sb, " build=%s", b.BuildID)
	}
	if known(b.BuildDate) {
		fmt.Fprintf(&sb, " date=%s", b.BuildDate)
	}
	return sb.String()
}

func Usage(out io.Writer, b BuildInfo) {
	fmt.Fprintf(out, `probe-cli %s

Usage: probe-cli [OPTIONS] [cmd [arg [arg ...]]]
  -c <capacity>      Initial slot count (default: %d).
  -f <fill>          Fill factor in (0, 1] that triggers growth (default: %.2f).
  -p <policy>        Probe step policy, linear or quadratic (default: linear).
  -v                 Verbose mode, log table activity to stderr.
  --raw              Use raw formatting for replies (default when STDOUT is
                     not a tty).
  --help             Output this help and exit.
  --version          Output version and exit.

Preferences are read from ~/%s (override with %s), a JSON
file that may contain comments:

  {
    "prompt": "probe",
    "capacity": 19,
    "fill_factor": 0.5,
    "policy": "quadratic", // or linear
  }

Command line options override the file. History is kept in ~/%s
(override with %s).

Examples:
  probe-cli ADD a 1
  printf 'ADD a 1\nGET a\n' | probe-cli -p linear
  probe-cli -c 19

When no command is given, probe-cli starts in interactive mode.
Type "help" in interactive mode for information on available commands.
`, Version(b), dict.DefaultCapacity, dict.DefaultFillFactor, CliRCFileDefault, CliRCFileEnv, CliHisFileDefault, CliHisFileEnv)
}
