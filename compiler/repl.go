package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/xiaobogaga/jackc/compiler/internal"
)

const (
	promptMain  = "jack> "
	promptCont  = "....> "
	historyFile = ".jackc_history"
)

// repl reads a class at a time from the terminal and prints what it compiles to. Lines are
// collected until they form a complete class, `:xml` switches between vm code and the parse
// tree, `:quit` leaves.
func repl() int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := filepath.Join(os.TempDir(), historyFile)
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
	}
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	xmlMode := false
	for {
		line, err := ln.Prompt(promptMain)
		if err != nil {
			// io.EOF or liner.ErrPromptAborted
			fmt.Println()
			return 0
		}
		switch strings.TrimSpace(line) {
		case "":
			continue
		case ":quit":
			return 0
		case ":xml":
			xmlMode = !xmlMode
			fmt.Printf("[Compiler]: markup mode %v\n", xmlMode)
			continue
		}

		src := line
		for {
			output, complete, err := probe(src, xmlMode)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				break
			}
			if complete {
				fmt.Print(output)
				ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
				break
			}
			more, err := ln.Prompt(promptCont)
			if err != nil {
				fmt.Println()
				return 0
			}
			src += "\n" + more
		}
	}
}

// probe compiles `src`. It reports an incomplete class, one that ended while more tokens
// were expected, as not complete and without error.
func probe(src string, xmlMode bool) (string, bool, error) {
	buf := &bytes.Buffer{}
	var err error
	if xmlMode {
		err = internal.Analyze(strings.NewReader(src), buf)
	} else {
		err = internal.CompileClass(strings.NewReader(src), buf)
	}
	var exhausted *internal.ExhaustedTokensError
	if errors.As(err, &exhausted) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return buf.String(), true, nil
}
