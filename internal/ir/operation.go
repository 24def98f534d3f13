package ir

// Operation is the closed set of right-hand-side operations a Statement can
// perform. It is a tagged union implemented as a Go interface with an
// unexported marker method.
type Operation interface {
	isOperation()
}

// Call invokes a module-level function found by its (possibly dotted) name
// path, passing args by variable id.
type Call struct {
	Function []string
	Args     []VarID
}

// CallPointer invokes the function value held in the Pointer variable. The
// partial evaluator can never resolve the callee statically, so this
// operation always survives into the residual program; the x86-64 backend
// has no implementation for it.
type CallPointer struct {
	Pointer VarID
	Args    []VarID
}

// LoadGlobal reads the module constant at index Src.
type LoadGlobal struct {
	Src int
}

// LoadLocal copies the value currently held by variable Src.
type LoadLocal struct {
	Src VarID
}

// Phi selects a value depending on which predecessor block control arrived
// from. BlockToVar maps a predecessor BlockID to the VarID holding that
// predecessor's value for this join point.
type Phi struct {
	BlockToVar map[BlockID]VarID
}

// PartialCall residualizes a call whose callee could not be driven to a
// Concrete result: Blocks and Variables capture the partially-evaluated
// callee body (as returned by eval.Run's Partial case) so that a second
// evaluation pass — or the serializer, for a resumed run — can finish it
// later.
type PartialCall struct {
	Blocks    []*Block
	Variables map[VarID][]byte
	Unknown   map[VarID]bool
}

func (Call) isOperation()        {}
func (CallPointer) isOperation() {}
func (LoadGlobal) isOperation()  {}
func (LoadLocal) isOperation()   {}
func (Phi) isOperation()         {}
func (PartialCall) isOperation() {}
