package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fzft/go-probe-table/dict"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCli(t *testing.T, input string) (*Cli, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cli := NewCli(afero.NewMemMapFs(), strings.NewReader(input), &out, nil)
	require.NoError(t, cli.Reset())
	return cli, &out
}

func runScript(t *testing.T, script string) string {
	t.Helper()
	cli, out := newTestCli(t, script)
	require.NoError(t, cli.Run(nil))
	return out.String()
}

func TestCliNotInteractiveWithoutTerminal(t *testing.T) {
	cli, _ := newTestCli(t, "")
	assert.False(t, cli.config.interactive)
	assert.Equal(t, OutputRaw, cli.config.output)
	assert.Empty(t, cli.config.historyFile)
}

func TestCliExecAddGet(t *testing.T) {
	cli, _ := newTestCli(t, "")
	cli.SetOutput(OutputStandard)

	r, err := cli.Exec([]string{"ADD", "a", "1"})
	require.NoError(t, err)
	assert.Equal(t, "OK", r.format(OutputStandard))

	r, err = cli.Exec([]string{"get", "a"})
	require.NoError(t, err)
	assert.Equal(t, `"1"`, r.format(OutputStandard))
	assert.Equal(t, "1", r.format(OutputRaw))

	_, err = cli.Exec([]string{"GET", "zz"})
	assert.True(t, errors.Is(err, dict.ErrKeyNotFound))
	assert.Equal(t, "(error) ERR get zz: key not found", formatError(err, OutputStandard))
}

func TestCliScript(t *testing.T) {
	out := runScript(t, strings.Join([]string{
		"ADD a 1",
		"ADD a 2",
		"GET a",
		"SET a 3",
		"GET a",
		"HAS a",
		"HAS b",
		"COUNT",
		"DEL a",
		"DEL a",
		"COUNT",
	}, "\n"))

	assert.Equal(t, strings.Join([]string{
		"OK",
		"ERR add a: duplicate key",
		"1",
		"OK",
		"3",
		"1",
		"0",
		"1",
		"OK",
		"ERR remove a: key not found",
		"0",
	}, "\n")+"\n", out)
}

func TestCliScriptSkipsCommentsAndBlankLines(t *testing.T) {
	out := runScript(t, "# setup\n\n   \nADD a 1\n  # more\nCOUNT\n")
	assert.Equal(t, "OK\n1\n", out)
}

func TestCliScriptStopsAtQuit(t *testing.T) {
	out := runScript(t, "ADD a 1\nquit\nADD b 2\n")
	assert.Equal(t, "OK\n", out)

	out = runScript(t, "ADD a 1\nEXIT\nCOUNT\n")
	assert.Equal(t, "OK\n", out)
}

func TestCliRepeat(t *testing.T) {
	out := runScript(t, "3 ADD x y\nCOUNT\n0 COUNT\n")
	assert.Equal(t, strings.Join([]string{
		"OK",
		"ERR add x: duplicate key",
		"ERR add x: duplicate key",
		"1",
		"Invalid repeat command option value.",
	}, "\n")+"\n", out)
}

func TestCliUnknownCommandAndArity(t *testing.T) {
	out := runScript(t, "FOO bar\nGET\nADD a\nCOUNT extra\n")
	assert.Equal(t, strings.Join([]string{
		"ERR unknown command 'FOO'",
		"ERR wrong number of arguments for 'get' command",
		"ERR wrong number of arguments for 'add' command",
		"ERR wrong number of arguments for 'count' command",
	}, "\n")+"\n", out)
}

func TestCliInvalidQuotes(t *testing.T) {
	out := runScript(t, "ADD \"a 1\nADD \"a b\" \"c d\"\nGET \"a b\"\n")
	assert.Equal(t, "Invalid argument(s)\nOK\nc d\n", out)
}

func TestCliItemsAndKeys(t *testing.T) {
	cli, _ := newTestCli(t, "")
	r, err := cli.Exec([]string{"ITEMS"})
	require.NoError(t, err)
	assert.Equal(t, "(empty array)", r.format(OutputStandard))

	_, err = cli.Exec([]string{"ADD", "a", "1"})
	require.NoError(t, err)

	r, err = cli.Exec([]string{"ITEMS"})
	require.NoError(t, err)
	assert.Equal(t, "1) \"a\"\n2) \"1\"", r.format(OutputStandard))
	assert.Equal(t, "a\n1", r.format(OutputRaw))

	r, err = cli.Exec([]string{"KEYS"})
	require.NoError(t, err)
	assert.Equal(t, "1) \"a\"", r.format(OutputStandard))
}

func TestCliStats(t *testing.T) {
	cli, _ := newTestCli(t, "")
	_, err := cli.Exec([]string{"ADD", "a", "1"})
	require.NoError(t, err)

	r, err := cli.Exec([]string{"STATS"})
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"capacity:7",
		"count:1",
		"tombstones:0",
		"load:0.14",
		"fill_factor:0.77",
		"policy:linear",
	}, "\n"), r.format(OutputRaw))

	r, err = cli.Exec([]string{"CAP"})
	require.NoError(t, err)
	assert.Equal(t, "(integer) 7", r.format(OutputStandard))
}

func TestCliProbe(t *testing.T) {
	cli, _ := newTestCli(t, "")
	r, err := cli.Exec([]string{"PROBE", "a"})
	require.NoError(t, err)
	lines := strings.Split(r.format(OutputRaw), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], " empty"), lines[0])

	_, err = cli.Exec([]string{"ADD", "a", "1"})
	require.NoError(t, err)
	r, err = cli.Exec([]string{"PROBE", "a"})
	require.NoError(t, err)
	lines = strings.Split(r.format(OutputRaw), "\n")
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], " occupied"), lines)
}

func TestCliSlots(t *testing.T) {
	cli, _ := newTestCli(t, "")
	r, err := cli.Exec([]string{"SLOTS"})
	require.NoError(t, err)
	assert.Equal(t, "0 .......", r.format(OutputStandard))

	_, err = cli.Exec([]string{"ADD", "a", "1"})
	require.NoError(t, err)
	_, err = cli.Exec([]string{"ADD", "b", "2"})
	require.NoError(t, err)
	_, err = cli.Exec([]string{"DEL", "a"})
	require.NoError(t, err)

	r, err = cli.Exec([]string{"SLOTS"})
	require.NoError(t, err)
	row := r.format(OutputStandard)
	assert.Equal(t, 1, strings.Count(row, "#"))
	assert.Equal(t, 1, strings.Count(row, "x"))
	assert.Equal(t, 5, strings.Count(row, "."))
}

func TestRenderSlots(t *testing.T) {
	states := []dict.SlotState{dict.SlotOccupied, dict.SlotEmpty, dict.SlotTombstone, dict.SlotEmpty}
	assert.Equal(t, "0 #.x.", renderSlots(states, 80))
	assert.Equal(t, "", renderSlots(nil, 80))

	wide := make([]dict.SlotState, 20)
	wide[19] = dict.SlotOccupied
	assert.Equal(t, " 0 ........\n 8 ........\n16 ...#", renderSlots(wide, 11))

	// never fewer than minSlotColumns per row
	assert.Equal(t, " 0 ........\n 8 ........\n16 ...#", renderSlots(wide, 3))
}

func TestCliClear(t *testing.T) {
	cli, out := newTestCli(t, "")
	r, err := cli.Exec([]string{"CLEAR"})
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Equal(t, "\x1b[H\x1b[2J", out.String())

	out.Reset()
	_, err = cli.Exec([]string{"clear", "now"})
	require.Error(t, err)
	assert.Equal(t, "wrong number of arguments for 'clear' command", err.Error())
	assert.Empty(t, out.String())
}

func TestCliClearArity(t *testing.T) {
	out := runScript(t, "CLEAR screen\nCOUNT\n")
	assert.Equal(t, "ERR wrong number of arguments for 'clear' command\n0\n", out)
}

func TestCliReset(t *testing.T) {
	out := runScript(t, "ADD a 1\nRESET\nCOUNT\nGET a\n")
	assert.Equal(t, "OK\nOK\n0\nERR get a: key not found\n", out)
}

func TestCliPreferences(t *testing.T) {
	out := runScript(t, strings.Join([]string{
		":capacity 19",
		":policy q",
		":fill 0.5",
		"CAP",
		"RESET",
		"CAP",
		"STATS",
	}, "\n"))
	assert.Equal(t, strings.Join([]string{
		"OK",
		"OK",
		"OK",
		"7",
		"OK",
		"19",
		"capacity:19",
		"count:0",
		"tombstones:0",
		"load:0.00",
		"fill_factor:0.50",
		"policy:quadratic",
	}, "\n")+"\n", out)
}

func TestCliInvalidPreferences(t *testing.T) {
	out := runScript(t, ":fill 2\n:capacity 1\n:policy cubic\n:colour red\n:prompt\n")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "ERR "), l)
	}
}

func TestCliPrompt(t *testing.T) {
	cli, _ := newTestCli(t, "")
	cli.refreshPrompt()
	assert.Equal(t, "probe[0/7]> ", cli.config.prompt)

	_, err := cli.Exec([]string{":prompt", "my", "table"})
	require.NoError(t, err)
	_, err = cli.Exec([]string{"ADD", "a", "1"})
	require.NoError(t, err)
	cli.refreshPrompt()
	assert.Equal(t, "my table[1/7]> ", cli.config.prompt)
}

func TestCliRunArgs(t *testing.T) {
	var out bytes.Buffer
	cli := NewCli(afero.NewMemMapFs(), strings.NewReader(""), &out, nil)
	require.NoError(t, cli.Run([]string{"ADD", "a", "1"}))
	assert.Equal(t, "OK\n", out.String())

	out.Reset()
	err := cli.Run([]string{"GET", "b"})
	assert.True(t, errors.Is(err, dict.ErrKeyNotFound))
	assert.Equal(t, "ERR get b: key not found\n", out.String())
}

func TestCliHelp(t *testing.T) {
	cli, _ := newTestCli(t, "")

	r, err := cli.Exec([]string{"HELP"})
	require.NoError(t, err)
	assert.Contains(t, r.format(OutputStandard), "@table @inspect @shell")

	r, err = cli.Exec([]string{"help", "get"})
	require.NoError(t, err)
	assert.Contains(t, r.format(OutputStandard), "summary: Get the value of a key.")

	r, err = cli.Exec([]string{"HELP", "exit"})
	require.NoError(t, err)
	assert.Contains(t, r.format(OutputStandard), "QUIT")

	r, err = cli.Exec([]string{"HELP", "@inspect"})
	require.NoError(t, err)
	help := r.format(OutputStandard)
	assert.Contains(t, help, "PROBE key")
	assert.NotContains(t, help, "ADD key value")

	_, err = cli.Exec([]string{"HELP", "nope"})
	assert.Error(t, err)
	_, err = cli.Exec([]string{"HELP", "@nope"})
	assert.Error(t, err)
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
		ok   bool
	}{
		{"", nil, true},
		{"  ADD  a   1 ", []string{"ADD", "a", "1"}, true},
		{"ADD \"hello world\" x", []string{"ADD", "hello world", "x"}, true},
		{"ADD \"\" x", []string{"ADD", "", "x"}, true},
		{"ADD \"a\\\"b\" \"c\\nd\"", []string{"ADD", "a\"b", "c\nd"}, true},
		{"ADD a\"b", []string{"ADD", "a\"b"}, true},
		{"ADD \"a", nil, false},
		{"ADD \"a\"b", nil, false},
		{"GET\ta", []string{"GET", "a"}, true},
	}
	for _, tt := range tests {
		got, ok := splitArgs(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestGetDotfilePath(t *testing.T) {
	t.Setenv("HOME", "/home/probe")
	t.Setenv(CliRCFileEnv, "")
	assert.Equal(t, "/home/probe/.probeclirc", getDotfilePath(CliRCFileEnv, CliRCFileDefault))

	t.Setenv(CliRCFileEnv, "/etc/probe.json")
	assert.Equal(t, "/etc/probe.json", getDotfilePath(CliRCFileEnv, CliRCFileDefault))

	t.Setenv(CliRCFileEnv, "/dev/null")
	assert.Equal(t, "", getDotfilePath(CliRCFileEnv, CliRCFileDefault))
}

func TestVersion(t *testing.T) {
	unknown := BuildInfo{GitSHA1: "unknown", GitDirty: "unknown", BuildID: "unknown", BuildDate: "unknown"}
	assert.Equal(t, CliVersion, Version(unknown))
	assert.Equal(t, CliVersion, Version(BuildInfo{}))
	assert.Equal(t, CliVersion+" (git:abc123)", Version(BuildInfo{GitSHA1: "abc123", GitDirty: "0"}))
	assert.Equal(t, CliVersion+" (git:abc123-dirty)", Version(BuildInfo{GitSHA1: "abc123", GitDirty: "1"}))

	full := "3f786850e387550fdab836ed7e6dc881de23001b"
	assert.Equal(t, CliVersion+" (git:"+full+")", Version(BuildInfo{GitSHA1: full}))
	assert.Equal(t, CliVersion, Version(BuildInfo{GitSHA1: "0000000000000000000000000000000000000000"}))
	assert.Equal(t, CliVersion, Version(BuildInfo{GitSHA1: "not-a-sha"}))

	assert.Equal(t, CliVersion+" (git:abc123) build=42 date=2024-05-01",
		Version(BuildInfo{GitSHA1: "abc123", GitDirty: "0", BuildID: "42", BuildDate: "2024-05-01"}))
	assert.Equal(t, CliVersion+" date=2024-05-01",
		Version(BuildInfo{GitSHA1: "unknown", BuildID: "unknown", BuildDate: "2024-05-01"}))
}

func TestUsageShowsVersion(t *testing.T) {
	var out bytes.Buffer
	Usage(&out, BuildInfo{GitSHA1: "abc123", BuildID: "7"})
	assert.Contains(t, out.String(), Version(BuildInfo{GitSHA1: "abc123", BuildID: "7"}))
}
