package linenoise

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/afero"
)

const clearSeq = "\x1b[H\x1b[2J"

// LineNoise is a line editor with history persisted through an afero
// filesystem.
type LineNoise struct {
	*liner.State
	fs afero.Fs
}

// New takes over the terminal. Call Close to restore it.
func New(fs afero.Fs) *LineNoise {
	ln := &LineNoise{State: liner.NewLiner(), fs: fs}
	ln.SetCtrlCAborts(true)
	return ln
}

// SetWords enables tab completion of the first word against words,
// case-insensitively.
func (ln *LineNoise) SetWords(words []string) {
	ln.SetCompleter(Completer(words))
}

// Completer returns a liner completer that expands a command prefix.
func Completer(words []string) liner.Completer {
	return func(line string) []string {
		if strings.Contains(line, " ") {
			return nil
		}
		var out []string
		for _, w := range words {
			if strings.HasPrefix(strings.ToLower(w), strings.ToLower(line)) {
				out = append(out, w)
			}
		}
		return out
	}
}

func (ln *LineNoise) HistoryLoad(filepath string) error {
	content, err := afero.ReadFile(ln.fs, filepath)
	if err != nil {
		return err
	}
	_, err = ln.ReadHistory(bytes.NewReader(content))
	return err
}

func (ln *LineNoise) HistorySave(filepath string) error {
	var buf bytes.Buffer
	if _, err := ln.WriteHistory(&buf); err != nil {
		return err
	}
	return afero.WriteFile(ln.fs, filepath, buf.Bytes(), 0644)
}

func ClearScreen(w io.Writer) error {
	_, err := fmt.Fprint(w, clearSeq)
	return err
}
