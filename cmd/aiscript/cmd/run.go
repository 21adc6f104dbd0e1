package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aiscriptdev/aiscript/internal/errors"
	"github.com/aiscriptdev/aiscript/internal/lexer"
	"github.com/aiscriptdev/aiscript/internal/parser"
	"github.com/aiscriptdev/aiscript/pkg/aiscript"
)

var (
	evalExpr    string
	dumpAST     bool
	trace       bool
	showModules bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an AIScript file or expression",
	Long: `Execute an AIScript program from a file or inline expression.

An optional aiscript.yaml next to the script (module_path, stdlib
disable toggles) supplies defaults that --module-path overrides.

Examples:
  # Run a script file
  aiscript run script.ai

  # Evaluate an inline expression
  aiscript run -e "print(\"Hello, World!\");"

  # Run with AST dump (for debugging)
  aiscript run --dump-ast script.ai

  # List every module resolved while running
  aiscript run --show-modules script.ai`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST (for debugging)")
	runCmd.Flags().BoolVar(&trace, "trace", false, "trace execution (for debugging)")
	runCmd.Flags().BoolVar(&showModules, "show-modules", false, "list every module resolved while running")
}

func runScript(cmd *cobra.Command, args []string) error {
	var input string
	var filename string

	if evalExpr != "" {
		input = evalExpr
		filename = "<eval>"
	} else if len(args) == 1 {
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		input = string(content)
	} else {
		return fmt.Errorf("either provide a file path or use -e flag for inline code")
	}

	verbose, _ := cmd.Flags().GetBool("verbose")

	// Parse up front purely to surface pretty diagnostics; pkg/aiscript
	// re-parses internally when Compile runs, keeping the CLI's error
	// rendering decoupled from the embedder's own parse/compile path.
	l := lexer.New(input, lexer.WithFile(filename))
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		var perrs []*errors.CompilerError
		for _, perr := range p.Errors() {
			perrs = append(perrs, errors.NewCompilerError(perr.Pos, perr.Message, input, filename))
		}
		fmt.Fprint(os.Stderr, errors.FormatErrors(perrs, true))
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("parsing failed with %d error(s)", len(p.Errors()))
	}

	if dumpAST {
		fmt.Println("AST:")
		fmt.Println(program.String())
		fmt.Println()
	}

	projectDir := "."
	if filename != "<eval>" {
		projectDir = filepath.Dir(filename)
	}
	cfg, err := loadProjectConfig(projectDir)
	if err != nil {
		return fmt.Errorf("aiscript.yaml: %w", err)
	}

	searchPaths := unitSearchPaths
	if len(searchPaths) == 0 {
		searchPaths = cfg.ModulePath
	}
	if len(searchPaths) == 0 && filename != "<eval>" {
		searchPaths = append(searchPaths, filepath.Dir(filename))
	}

	var disabled []string
	if cfg.Stdlib.DisableHTTP {
		disabled = append(disabled, "std.http")
	}
	if cfg.Stdlib.DisableSQL {
		disabled = append(disabled, "std.sql")
	}
	if cfg.Stdlib.DisableRedis {
		disabled = append(disabled, "std.redis")
	}

	engine := aiscript.New(
		aiscript.WithSearchPaths(searchPaths...),
		aiscript.WithOutput(os.Stdout),
		aiscript.WithDisabledModules(disabled...),
	)

	if trace {
		fmt.Fprintf(os.Stderr, "[Trace mode enabled - executing %s]\n", filename)
	}

	id, err := engine.Compile(input)
	if err != nil {
		return err
	}
	if _, err := engine.Run(id); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %s\n", err)
		return fmt.Errorf("execution failed")
	}

	if showModules {
		fmt.Fprintln(os.Stderr, "Modules resolved:")
		for _, path := range engine.LoadedModules() {
			fmt.Fprintf(os.Stderr, "  %s\n", path)
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Done: %s\n", filename)
	}

	return nil
}
