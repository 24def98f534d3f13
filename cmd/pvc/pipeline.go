package main

import (
	"fmt"
	"os"

	"pvc/internal/diagnostics"
	"pvc/internal/eval"
	"pvc/internal/frontend"
	"pvc/internal/ir"
	"pvc/internal/types"
)

// sourceFile is the fixed name every mode reads from the working
// directory, matching the original driver's single-source-file model.
const sourceFile = "main.pv"

// frontendStage runs tokenizing and parsing, printing a colorized
// diagnostic and returning a plain error (so main can set the process
// exit code) on failure.
func frontendStage(src string, dumpTokens bool) (*frontend.ModuleAST, error) {
	tokens, err := frontend.Tokenize(src, 0)
	if err != nil {
		if te, ok := err.(*frontend.TokenizeError); ok {
			diagnostics.PrintStageError(sourceFile, src, te)
		}
		return nil, err
	}

	if dumpTokens {
		for _, t := range tokens {
			fmt.Printf("%d:%d %+v\n", t.Idx, t.Kind, t)
		}
	}

	ast, err := frontend.ParseModule(tokens)
	if err != nil {
		if pe, ok := err.(*frontend.ParseError); ok {
			diagnostics.PrintStageError(sourceFile, src, pe)
		}
		return nil, err
	}
	return ast, nil
}

// lowerStage lowers ast to IR, writes the ir.ir debug dump into the working
// directory when dump is set, and returns the lowered module plus its entry
// function.
func lowerStage(src string, ast *frontend.ModuleAST, entry string, dump bool) (*ir.Module, *ir.Function, error) {
	module, err := ir.Lower(ast)
	if err != nil {
		if le, ok := err.(*ir.LowerError); ok {
			diagnostics.PrintStageError(sourceFile, src, le)
		}
		return nil, nil, err
	}

	if dump {
		if err := os.WriteFile("ir.ir", []byte(module.String()), 0644); err != nil {
			return nil, nil, fmt.Errorf("write ir.ir: %w", err)
		}
	}

	fn, ok := module.Functions[entry]
	if !ok {
		return nil, nil, fmt.Errorf("no %q function declared in %s", entry, sourceFile)
	}
	return module, fn, nil
}

// ioParamVar finds the variable id of fn's IO-typed parameter — its
// position among the declared arguments — so the resumption driver never
// has to hardcode which slot the IO token lives in.
func ioParamVar(sig types.Signature) (ir.VarID, bool) {
	for i, arg := range sig.Args {
		if arg.Kind == types.IO {
			return ir.VarID(i), true
		}
	}
	return 0, false
}

// evalEntry runs function with every parameter explicitly unknown,
// seeding the variable environment the same way eval.Run always requires:
// every declared parameter gets a key, even the ones nobody ever supplies
// a value for.
func evalEntry(module *ir.Module, function *ir.Function) eval.RunResult {
	args := make([]*[]byte, len(function.Signature.Args))
	return eval.Run(module, function, args)
}
