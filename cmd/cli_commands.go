package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// commandDocs documentation info used for help command.
type commandDocs struct {
	name    string
	params  string
	summary string
	group   string
}

type commandProc func(cli *Cli, argv []string) (reply, error)

type cliCommand struct {
	docs commandDocs
	// arity counts the command name. A negative arity is a minimum.
	arity int
	proc  commandProc
}

func (c *cliCommand) arityOK(argc int) bool {
	if c.arity < 0 {
		return argc >= -c.arity
	}
	return argc == c.arity
}

var commandGroups = []string{"table", "inspect", "shell"}

var commands = []*cliCommand{
	{commandDocs{"ADD", "key value", "Insert a new key. Fails if the key exists.", "table"}, 3, addCommand},
	{commandDocs{"GET", "key", "Get the value of a key.", "table"}, 2, getCommand},
	{commandDocs{"SET", "key value", "Replace the value of an existing key.", "table"}, 3, setCommand},
	{commandDocs{"DEL", "key", "Remove a key, leaving a tombstone.", "table"}, 2, delCommand},
	{commandDocs{"HAS", "key", "Report whether a key exists.", "table"}, 2, hasCommand},
	{commandDocs{"COUNT", "", "Number of live entries.", "inspect"}, 1, countCommand},
	{commandDocs{"CAP", "", "Number of slots.", "inspect"}, 1, capCommand},
	{commandDocs{"STATS", "", "Capacity, count, tombstones, load and policy.", "inspect"}, 1, statsCommand},
	{commandDocs{"ITEMS", "", "List keys and values in slot order.", "inspect"}, 1, itemsCommand},
	{commandDocs{"KEYS", "", "List keys in slot order.", "inspect"}, 1, keysCommand},
	{commandDocs{"PROBE", "key", "Show the slots a lookup of key visits.", "inspect"}, 2, probeCommand},
	{commandDocs{"SLOTS", "", "Draw the slot map: . empty, # occupied, x tombstone.", "inspect"}, 1, slotsCommand},
	{commandDocs{"RESET", "", "Replace the table with an empty one using the current preferences.", "shell"}, 1, resetCommand},
	{commandDocs{"HELP", "[command|@group]", "Show help.", "shell"}, -1, helpCommand},
}

// shellDocs are handled by the shell itself rather than the command table.
var shellDocs = []commandDocs{
	{"CLEAR", "", "Clear the screen.", "shell"},
	{"QUIT", "", "Leave the shell. EXIT works too.", "shell"},
}

// Filled by init: the command table refers to helpCommand, which reads them.
var (
	commandTable map[string]*cliCommand
	commandNames []string
	docsList     []commandDocs
)

func init() {
	commandTable = make(map[string]*cliCommand, len(commands))
	for _, c := range commands {
		commandTable[c.docs.name] = c
		commandNames = append(commandNames, c.docs.name)
		docsList = append(docsList, c.docs)
	}
	for _, d := range shellDocs {
		commandNames = append(commandNames, d.name)
		docsList = append(docsList, d)
	}
	commandNames = append(commandNames, "EXIT")
	sort.Strings(commandNames)
}

func lookupCommand(name string) *cliCommand {
	return commandTable[strings.ToUpper(name)]
}

func addCommand(cli *Cli, argv []string) (reply, error) {
	if err := cli.table.Add(argv[1], argv[2]); err != nil {
		return nil, err
	}
	return statusReply("OK"), nil
}

func getCommand(cli *Cli, argv []string) (reply, error) {
	v, err := cli.table.Get(argv[1])
	if err != nil {
		return nil, err
	}
	return bulkReply(v), nil
}

func setCommand(cli *Cli, argv []string) (reply, error) {
	if err := cli.table.Set(argv[1], argv[2]); err != nil {
		return nil, err
	}
	return statusReply("OK"), nil
}

func delCommand(cli *Cli, argv []string) (reply, error) {
	if err := cli.table.Remove(argv[1]); err != nil {
		return nil, err
	}
	return statusReply("OK"), nil
}

func hasCommand(cli *Cli, argv []string) (reply, error) {
	if cli.table.ContainsKey(argv[1]) {
		return intReply(1), nil
	}
	return intReply(0), nil
}

func countCommand(cli *Cli, _ []string) (reply, error) {
	return intReply(cli.table.Count()), nil
}

func capCommand(cli *Cli, _ []string) (reply, error) {
	return intReply(cli.table.Capacity()), nil
}

func statsCommand(cli *Cli, _ []string) (reply, error) {
	st := cli.table.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "capacity:%d\n", st.Capacity)
	fmt.Fprintf(&b, "count:%d\n", st.Count)
	fmt.Fprintf(&b, "tombstones:%d\n", st.Tombstones)
	fmt.Fprintf(&b, "load:%.2f\n", st.Load)
	fmt.Fprintf(&b, "fill_factor:%.2f\n", cli.table.FillFactor())
	fmt.Fprintf(&b, "policy:%s", st.Policy)
	return textReply(b.String()), nil
}

func itemsCommand(cli *Cli, _ []string) (reply, error) {
	items := listReply{}
	for k, v := range cli.table.All() {
		items = append(items, k, v)
	}
	return items, nil
}

func keysCommand(cli *Cli, _ []string) (reply, error) {
	keys := listReply{}
	for k := range cli.table.Keys() {
		keys = append(keys, k)
	}
	return keys, nil
}

func probeCommand(cli *Cli, argv []string) (reply, error) {
	states := cli.table.SlotStates()
	path := cli.table.ProbePath(argv[1])
	lines := make(textListReply, 0, len(path))
	for _, i := range path {
		lines = append(lines, fmt.Sprintf("%d %s", i, states[i]))
	}
	return lines, nil
}

func slotsCommand(cli *Cli, _ []string) (reply, error) {
	return textReply(renderSlots(cli.table.SlotStates(), cli.outputWidth())), nil
}

func resetCommand(cli *Cli, _ []string) (reply, error) {
	if err := cli.Reset(); err != nil {
		return nil, err
	}
	return statusReply("OK"), nil
}

func helpCommand(cli *Cli, argv []string) (reply, error) {
	if len(argv) == 1 {
		return textReply(helpOverview()), nil
	}

	topic := argv[1]
	if strings.HasPrefix(topic, "@") {
		group := strings.ToLower(topic[1:])
		var b strings.Builder
		for _, d := range docsList {
			if d.group == group {
				writeCommandHelp(&b, d)
			}
		}
		if b.Len() == 0 {
			return nil, errors.Errorf("unknown help group '%s'", topic)
		}
		return textReply(strings.TrimRight(b.String(), "\n")), nil
	}

	name := strings.ToUpper(topic)
	if name == "EXIT" {
		name = "QUIT"
	}
	for _, d := range docsList {
		if d.name == name {
			var b strings.Builder
			writeCommandHelp(&b, d)
			return textReply(strings.TrimRight(b.String(), "\n")), nil
		}
	}
	return nil, errors.Errorf("unknown command '%s'", topic)
}

func writeCommandHelp(b *strings.Builder, d commandDocs) {
	fmt.Fprintf(b, "\n  %s %s\n", d.name, d.params)
	fmt.Fprintf(b, "  summary: %s\n", d.summary)
	fmt.Fprintf(b, "  group: %s\n", d.group)
}

func helpOverview() string {
	var b strings.Builder
	b.WriteString("probe-cli, an interactive open addressing hash table\n")
	b.WriteString("Type: \"help @<group>\" to get a list of commands in <group>\n")
	b.WriteString("      \"help <command>\" for help on <command>\n")
	b.WriteString("      \"<n> <command>\" to run a command n times\n")
	b.WriteString("      \":<pref> <value>\" to set a preference (prompt, policy, capacity, fill)\n")
	b.WriteString("      \"quit\" to exit\n")
	b.WriteString("Groups: " + strings.Join(prefixAll("@", commandGroups), " "))
	return b.String()
}

func prefixAll(prefix string, words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = prefix + w
	}
	return out
}
