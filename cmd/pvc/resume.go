package main

import (
	"fmt"

	"pvc/internal/eval"
	"pvc/internal/ir"
)

// resume drives a RunResult to completion: every time the program blocks
// on the IO-typed parameter, inject the (here always empty) IO token and
// re-evaluate; every time it forks on a condition it couldn't resolve,
// resume the condition first to learn which branch was actually taken,
// then resume that branch. It recurses rather than looping so a
// ConditionalPartial's two speculative branches can each recurse
// independently.
func resume(module *ir.Module, result eval.RunResult, ioVar ir.VarID) (eval.Concrete, error) {
	switch r := result.(type) {
	case eval.Concrete:
		return r, nil

	case eval.Partial:
		token := []byte{}
		r.Vars[ioVar] = &token
		return resume(module, eval.Resume(module, r.Blocks, r.Vars), ioVar)

	case eval.ConditionalPartial:
		took, err := resumeBranchSelector(module, r.Condition, ioVar)
		if err != nil {
			return eval.Concrete{}, err
		}
		if took {
			return resume(module, r.Then, ioVar)
		}
		return resume(module, r.Els, ioVar)

	case eval.ThenElseJumpResult:
		return eval.Concrete{}, fmt.Errorf("driver: program terminated on a bare branch selection with no result")

	default:
		return eval.Concrete{}, fmt.Errorf("driver: unrecognized run result")
	}
}

// resumeBranchSelector resumes a Partial known to originate from a
// CondJump's condition side and reports which branch it took. It is
// split out from resume because a condition's own RunResult type is
// Partial (never Concrete) right up until the branch is known.
func resumeBranchSelector(module *ir.Module, cond eval.Partial, ioVar ir.VarID) (bool, error) {
	token := []byte{}
	cond.Vars[ioVar] = &token
	switch r := eval.Resume(module, cond.Blocks, cond.Vars).(type) {
	case eval.ThenElseJumpResult:
		return r.Took, nil
	case eval.Concrete:
		return false, fmt.Errorf("driver: expected a branch selection, got a concrete result")
	default:
		return false, fmt.Errorf("driver: condition required more than one round of IO injection, which this driver does not support")
	}
}
