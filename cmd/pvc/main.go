package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pvc/internal/codegen/x86"
	"pvc/internal/diagnostics"
	"pvc/internal/serialize"
)

const entryFunction = "main"

var version = "pvc 0.1.0"

func main() {
	var verbose, dumpTokens bool

	root := &cobra.Command{
		Use:     "pvc",
		Short:   "A partial-evaluation ahead-of-time compiler",
		Version: version,
		// With no subcommand, run tokenizes, parses, lowers and partially
		// evaluates main.pv, then resumes the result to completion
		// in-process, the way a script interpreter would.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefault(verbose, dumpTokens)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print extra diagnostic status lines")
	root.PersistentFlags().BoolVar(&dumpTokens, "tokens", false, "dump the token stream before parsing")

	var asmOut, artifactOut string
	compileCmd := &cobra.Command{
		Use:   "compile",
		Short: "Partially evaluate main.pv and write a resumable artifact and x86-64 assembly",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(verbose, dumpTokens, artifactOut, asmOut)
		},
	}
	compileCmd.Flags().StringVarP(&artifactOut, "output", "o", "main.pvc", "path to write the compiled artifact to")
	compileCmd.Flags().StringVar(&asmOut, "asm", "main.s", "path to write generated x86-64 assembly to")

	var artifactIn string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Resume a previously compiled artifact to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(verbose, artifactIn)
		},
	}
	runCmd.Flags().StringVarP(&artifactIn, "input", "i", "main.pvc", "path to the compiled artifact to resume")

	root.AddCommand(compileCmd, runCmd)

	if err := root.Execute(); err != nil {
		diagnostics.PrintFatal(err)
		os.Exit(1)
	}
}

// runDefault implements the argument-less mode: compile and run main.pv
// in one process without ever touching disk for an intermediate
// artifact.
func runDefault(verbose, dumpTokens bool) error {
	src, err := os.ReadFile(sourceFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", sourceFile, err)
	}

	if verbose {
		diagnostics.PrintInfo("tokenizing %s", sourceFile)
	}
	ast, err := frontendStage(string(src), dumpTokens)
	if err != nil {
		return err
	}

	if verbose {
		diagnostics.PrintInfo("lowering to IR")
	}
	module, fn, err := lowerStage(string(src), ast, entryFunction, verbose)
	if err != nil {
		return err
	}

	ioVar, ok := ioParamVar(fn.Signature)
	if !ok {
		return fmt.Errorf("%q takes no IO-typed parameter to resume on", entryFunction)
	}

	if verbose {
		diagnostics.PrintInfo("partially evaluating %s", entryFunction)
	}
	result := evalEntry(module, fn)

	if _, err := resume(module, result, ioVar); err != nil {
		return err
	}
	diagnostics.PrintSuccess("run complete")
	return nil
}

// runCompile implements `pvc compile`: partially evaluate main.pv without
// ever supplying its IO token, then persist the residual program as a
// resumable artifact and emit the x86-64 assembly for every function that
// was lowered (including ones the partial evaluator left untouched).
func runCompile(verbose, dumpTokens bool, artifactPath, asmPath string) error {
	src, err := os.ReadFile(sourceFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", sourceFile, err)
	}

	ast, err := frontendStage(string(src), dumpTokens)
	if err != nil {
		return err
	}

	module, fn, err := lowerStage(string(src), ast, entryFunction, verbose)
	if err != nil {
		return err
	}

	if verbose {
		diagnostics.PrintInfo("partially evaluating %s", entryFunction)
	}
	result := evalEntry(module, fn)

	buildID := uuid.New()
	out, err := os.Create(artifactPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", artifactPath, err)
	}
	defer out.Close()
	if err := serialize.WriteArtifact(out, buildID, module, result); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}

	asm, err := x86.Generate(module)
	if err != nil {
		var cgErr *x86.Error
		if errors.As(err, &cgErr) {
			diagnostics.PrintFatal(cgErr)
		}
		return err
	}
	if err := os.WriteFile(asmPath, []byte(asm), 0644); err != nil {
		return fmt.Errorf("write %s: %w", asmPath, err)
	}

	diagnostics.PrintSuccess("wrote %s (build %s) and %s", artifactPath, buildID, asmPath)
	return nil
}

// runRun implements `pvc run`: decode a previously compiled artifact,
// inject the IO token and resume its residual program to completion.
func runRun(verbose bool, artifactPath string) error {
	in, err := os.Open(artifactPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", artifactPath, err)
	}
	defer in.Close()

	buildID, module, result, err := serialize.ReadArtifact(in)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	if verbose {
		diagnostics.PrintInfo("resuming artifact built as %s", buildID)
	}

	fn, ok := module.Functions[entryFunction]
	if !ok {
		return fmt.Errorf("artifact has no %q function", entryFunction)
	}
	ioVar, ok := ioParamVar(fn.Signature)
	if !ok {
		return fmt.Errorf("%q takes no IO-typed parameter to resume on", entryFunction)
	}

	if _, err := resume(module, result, ioVar); err != nil {
		return err
	}
	diagnostics.PrintSuccess("run complete")
	return nil
}
