package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xiaobogaga/jackc/compiler/internal"
)

// A jack compiler, translates every jack file at -path to a vm file next to it.

var (
	path        = flag.String("path", ".", "the path of jack files needs to be compiled, a file or a directory")
	xml         = flag.Bool("xml", false, "write the parse tree as xml instead of vm code")
	tokens      = flag.Bool("tokens", false, "with -xml, also write the token list")
	verify      = flag.Bool("verify", false, "read back the written vm code before saving it")
	jobs        = flag.Int("j", 1, "how many files are compiled at the same time")
	interactive = flag.Bool("i", false, "start an interactive session")
	verbose     = flag.Bool("v", false, "whether print compile progress")
)

func main() {
	flag.Parse()
	if *interactive {
		os.Exit(repl())
	}
	opts := internal.Options{XML: *xml, Tokens: *tokens, Verify: *verify, Jobs: *jobs, Verbose: *verbose}
	results, err := internal.Compile(*path, opts)
	for _, result := range results {
		for _, output := range result.Outputs {
			fmt.Printf("File created : %s\n", output)
		}
		if result.Err != nil {
			fmt.Printf("[Compiler]: failed to compile %s, err: %v\n", result.Source, result.Err)
		}
	}
	if err != nil {
		if len(results) == 0 {
			fmt.Printf("[Compiler]: failed to compile program: %s, err: %v\n", *path, err)
		}
		os.Exit(1)
	}
}
