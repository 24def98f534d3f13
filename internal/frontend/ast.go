package frontend

// Expr wraps a Node with the byte offset it started at.
type Expr struct {
	Idx  int
	Node Node
}

// Node is the closed set of expression forms this language's grammar
// produces, plus the If form.
type Node interface {
	isNode()
}

// StringLiteral is a `"..."` literal.
type StringLiteral struct {
	Value string
}

// NumberLiteral is a bare integer literal; the surface language only has
// single-byte numbers, matching Type::u8.
type NumberLiteral struct {
	Value byte
}

// Let binds Value under Name for the remainder of the enclosing block.
type Let struct {
	Name  string
	Value *Expr
}

// Block is a `{ ... }` sequence of statements. Returns reports whether the
// block's value is the value of its last statement (true) or whether a
// trailing semicolon makes the block's value the empty tuple (false).
type Block struct {
	Statements []*Expr
	Returns    bool
}

// Return exits the enclosing function, optionally with a value.
type Return struct {
	Value *Expr // nil for a bare `return`
}

// Call invokes Callee with Args.
type Call struct {
	Callee *Expr
	Args   []*Expr
}

// Var references a bound name.
type Var struct {
	Name string
}

// Index is `left.right`; when Right is a StringLiteral this is a dotted
// name path (module.function) rather than a runtime indexing operation —
// see internal/ir's calleePath.
type Index struct {
	Left, Right *Expr
}

// If is `if cond then` or `if cond then else els`. Els is nil for the
// condition-only form, which is only legal when the if's value is
// discarded (see the lowerer's MissingElseBlock error).
type If struct {
	Cond, Then *Expr
	Els        *Expr
}

func (StringLiteral) isNode() {}
func (NumberLiteral) isNode() {}
func (Let) isNode()           {}
func (Block) isNode()         {}
func (Return) isNode()        {}
func (Call) isNode()          {}
func (Var) isNode()           {}
func (Index) isNode()         {}
func (If) isNode()            {}
