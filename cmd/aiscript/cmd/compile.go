package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
	"github.com/aiscriptdev/aiscript/internal/errors"
	"github.com/aiscriptdev/aiscript/internal/lexer"
	"github.com/aiscriptdev/aiscript/internal/parser"
)

var (
	outputFile     string
	disassemble    bool
	compileVerbose bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile an AIScript file to bytecode and report diagnostics",
	Long: `Compile an AIScript program to bytecode, reporting compile errors with
source-positioned diagnostics and, with --disassemble, a human-readable
dump of the resulting instructions.

There is no on-disk bytecode format yet: this command exists to exercise
and inspect the compiler, not to produce a file a later "run" loads.

Examples:
  # Compile a script and report any errors
  aiscript compile script.ai

  # Compile and show disassembled bytecode
  aiscript compile script.ai --disassemble`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the disassembly to this file instead of stdout")
	compileCmd.Flags().BoolVar(&disassemble, "disassemble", false, "show disassembled bytecode after compilation")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func compileScript(_ *cobra.Command, args []string) error {
	filename := args[0]

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	input := string(content)

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	l := lexer.New(input, lexer.WithFile(filename))
	p := parser.New(l)
	program := p.ParseProgram()

	if len(p.Errors()) > 0 {
		compilerErrors := make([]*errors.CompilerError, 0, len(p.Errors()))
		for _, perr := range p.Errors() {
			compilerErrors = append(compilerErrors, errors.NewCompilerError(perr.Pos, perr.Message, input, filename))
		}
		fmt.Fprint(os.Stderr, errors.FormatErrors(compilerErrors, true))
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("parsing failed with %d error(s)", len(p.Errors()))
	}

	chunk, cerrs := bytecode.Compile(program)
	if len(cerrs) > 0 {
		fmt.Fprint(os.Stderr, errors.FormatErrors(errors.FromCompileErrors(cerrs, input, filename), true))
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("bytecode compilation failed with %d error(s)", len(cerrs))
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Bytecode compilation successful\n")
		fmt.Fprintf(os.Stderr, "  Instructions: %d\n", len(chunk.Code))
		fmt.Fprintf(os.Stderr, "  Constants: %d\n", len(chunk.Constants))
		fmt.Fprintf(os.Stderr, "  Locals: %d\n", chunk.LocalCount)
	}

	if !disassemble {
		fmt.Printf("Compiled %s: %d instruction(s), %d constant(s)\n", filename, len(chunk.Code), len(chunk.Constants))
		return nil
	}

	dis := bytecode.Disassemble(chunk, chunk.Name)
	if outputFile == "" {
		fmt.Print(dis)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(dis), 0644); err != nil {
		return fmt.Errorf("failed to write disassembly to %s: %w", outputFile, err)
	}
	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Disassembly written to %s\n", outputFile)
	}
	return nil
}
