package ir

// Statement is a node of a method body.
type Statement interface {
	statement()
}

// ExprStatement evaluates Expr for its effects.
type ExprStatement struct{ Expr Expr }

// Assign stores Value in variable Index.
type Assign struct {
	Value Expr
	Index int
}

// Return leaves the method; Value is nil for void methods.
type Return struct{ Value Expr }

// If runs Then or Else depending on Condition.
type If struct {
	Condition Expr
	Then      []Statement
	Else      []Statement
}

// While repeats Body while Condition holds.
type While struct {
	Condition Expr
	Body      []Statement
}

// Throw raises an exception carrying Value.
type Throw struct{ Value Expr }

func (*ExprStatement) statement() {}
func (*Assign) statement()        {}
func (*Return) statement()        {}
func (*If) statement()            {}
func (*While) statement()         {}
func (*Throw) statement()         {}
