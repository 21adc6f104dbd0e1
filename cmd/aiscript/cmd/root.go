package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	// unitSearchPaths are the directories passed to internal/module's
	// Manager when resolving a `use` path, used by the run
	// subcommand.
	unitSearchPaths []string
)

var rootCmd = &cobra.Command{
	Use:   "aiscript",
	Short: "AIScript interpreter and compiler",
	Long: `aiscript is the reference CLI for AIScript: a dynamic scripting
language with a bytecode compiler/VM, closures, classes, enums, agents,
modules, parameter validators, and typed '?'-propagated errors.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringSliceVar(&unitSearchPaths, "module-path", nil, "directories searched when resolving `use` paths (repeatable)")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
