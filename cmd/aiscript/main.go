// Command aiscript is the CLI front end for the AIScript interpreter:
// lex/parse/compile/run subcommands over internal/lexer, internal/parser,
// internal/bytecode and pkg/aiscript.
package main

import (
	"os"

	"github.com/aiscriptdev/aiscript/cmd/aiscript/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
