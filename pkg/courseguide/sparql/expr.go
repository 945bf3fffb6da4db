package sparql

import "strings"

// Expr is a FILTER/BIND expression. Var and Term are expressions too.
type Expr interface {
	expr()
	String() string
}

// Built-in function names understood by the renderer and the evaluator.
const (
	FnStr      = "STR"
	FnLCase    = "LCASE"
	FnUCase    = "UCASE"
	FnContains = "CONTAINS"
	FnConcat   = "CONCAT"
	FnBound    = "BOUND"
)

// Call is a built-in function call.
type Call struct {
	Func string
	Args []Expr
}

// Logical is an n-ary || or &&.
type Logical struct {
	Op   string // "||" or "&&"
	Args []Expr
}

// Compare is a binary = or !=.
type Compare struct {
	Op          string // "=" or "!="
	Left, Right Expr
}

// NotExistsExpr is FILTER NOT EXISTS { ... }.
type NotExistsExpr struct {
	Group Group
}

func (Call) expr()          {}
func (Logical) expr()       {}
func (Compare) expr()       {}
func (NotExistsExpr) expr() {}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Func + "(" + strings.Join(args, ", ") + ")"
}

func (l Logical) String() string {
	parts := make([]string, len(l.Args))
	for i, a := range l.Args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, " "+l.Op+" ") + ")"
}

func (c Compare) String() string {
	return c.Left.String() + " " + c.Op + " " + c.Right.String()
}

func (n NotExistsExpr) String() string {
	return "NOT EXISTS " + n.Group.String()
}

func Str(e Expr) Expr          { return Call{Func: FnStr, Args: []Expr{e}} }
func LCase(e Expr) Expr        { return Call{Func: FnLCase, Args: []Expr{e}} }
func UCase(e Expr) Expr        { return Call{Func: FnUCase, Args: []Expr{e}} }
func Contains(a, b Expr) Expr  { return Call{Func: FnContains, Args: []Expr{a, b}} }
func Concat(args ...Expr) Expr { return Call{Func: FnConcat, Args: args} }
func Bound(v Var) Expr         { return Call{Func: FnBound, Args: []Expr{v}} }
func Eq(a, b Expr) Expr        { return Compare{Op: "=", Left: a, Right: b} }
func NotEq(a, b Expr) Expr     { return Compare{Op: "!=", Left: a, Right: b} }

// NotExists builds NOT EXISTS { elems }.
func NotExists(elems ...Element) Expr { return NotExistsExpr{Group: elems} }

// Or joins expressions with ||. A single argument is returned unchanged.
func Or(args ...Expr) Expr { return logical("||", false, args) }

// And joins expressions with &&. A single argument is returned unchanged.
func And(args ...Expr) Expr { return logical("&&", true, args) }

func logical(op string, empty bool, args []Expr) Expr {
	switch len(args) {
	case 0:
		return Boolean(empty)
	case 1:
		return args[0]
	}
	return Logical{Op: op, Args: args}
}

// ContainsFold is the case-insensitive substring test
// CONTAINS(LCASE(STR(e)), LCASE("needle")).
func ContainsFold(e Expr, needle string) Expr {
	return Contains(LCase(Str(e)), LCase(Literal(needle)))
}
