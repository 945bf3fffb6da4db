package eval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
)

var (
	errUnbound = errors.New("eval: unbound variable")
	errType    = errors.New("eval: type error")
)

// test evaluates a filter expression to its effective boolean value.
func (e *Evaluator) test(ctx context.Context, ex sparql.Expr, b binding) (bool, error) {
	t, err := e.eval(ctx, ex, b)
	if err != nil {
		return false, err
	}
	return ebv(t)
}

func ebv(t sparql.Term) (bool, error) {
	if t.Kind != sparql.KindLiteral {
		return false, errType
	}
	switch t.Datatype {
	case sparql.XSDBoolean:
		return t.Value == "true" || t.Value == "1", nil
	case sparql.XSDInteger:
		n, ok := t.Int()
		if !ok {
			return false, nil
		}
		return n != 0, nil
	}
	return t.Value != "", nil
}

func (e *Evaluator) eval(ctx context.Context, ex sparql.Expr, b binding) (sparql.Term, error) {
	switch ex := ex.(type) {
	case sparql.Var:
		t, ok := b[ex]
		if !ok {
			return sparql.Term{}, errUnbound
		}
		return t, nil
	case sparql.Term:
		return ex, nil
	case sparql.Call:
		return e.call(ctx, ex, b)
	case sparql.Logical:
		return e.logical(ctx, ex, b)
	case sparql.Compare:
		l, err := e.eval(ctx, ex.Left, b)
		if err != nil {
			return sparql.Term{}, err
		}
		r, err := e.eval(ctx, ex.Right, b)
		if err != nil {
			return sparql.Term{}, err
		}
		eq := l.Equal(r)
		if ex.Op == "!=" {
			eq = !eq
		}
		return sparql.Boolean(eq), nil
	case sparql.NotExistsExpr:
		res, err := e.group(ctx, ex.Group, []binding{b})
		if err != nil {
			return sparql.Term{}, err
		}
		return sparql.Boolean(len(res) == 0), nil
	}
	return sparql.Term{}, fmt.Errorf("eval: unsupported expression %T", ex)
}

// logical follows SPARQL error semantics: a true operand wins over an error
// for ||, a false operand wins over an error for &&.
func (e *Evaluator) logical(ctx context.Context, l sparql.Logical, b binding) (sparql.Term, error) {
	short := l.Op == "||"
	var firstErr error
	for _, a := range l.Args {
		v, err := e.test(ctx, a, b)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if v == short {
			return sparql.Boolean(short), nil
		}
	}
	if firstErr != nil {
		return sparql.Term{}, firstErr
	}
	return sparql.Boolean(!short), nil
}

func (e *Evaluator) call(ctx context.Context, c sparql.Call, b binding) (sparql.Term, error) {
	if c.Func == sparql.FnBound {
		if len(c.Args) != 1 {
			return sparql.Term{}, errType
		}
		v, ok := c.Args[0].(sparql.Var)
		if !ok {
			return sparql.Term{}, errType
		}
		_, bound := b[v]
		return sparql.Boolean(bound), nil
	}

	args := make([]sparql.Term, len(c.Args))
	for i, a := range c.Args {
		t, err := e.eval(ctx, a, b)
		if err != nil {
			return sparql.Term{}, err
		}
		args[i] = t
	}

	switch c.Func {
	case sparql.FnStr:
		if len(args) != 1 || args[0].Kind == sparql.KindBlank {
			return sparql.Term{}, errType
		}
		return sparql.Literal(args[0].Value), nil
	case sparql.FnLCase, sparql.FnUCase:
		if len(args) != 1 || !args[0].IsLiteral() {
			return sparql.Term{}, errType
		}
		out := args[0]
		if c.Func == sparql.FnLCase {
			out.Value = strings.ToLower(out.Value)
		} else {
			out.Value = strings.ToUpper(out.Value)
		}
		return out, nil
	case sparql.FnContains:
		if len(args) != 2 || !args[0].IsLiteral() || !args[1].IsLiteral() {
			return sparql.Term{}, errType
		}
		return sparql.Boolean(strings.Contains(args[0].Value, args[1].Value)), nil
	case sparql.FnConcat:
		var sb strings.Builder
		for _, a := range args {
			if !a.IsLiteral() {
				return sparql.Term{}, errType
			}
			sb.WriteString(a.Value)
		}
		return sparql.Literal(sb.String()), nil
	}
	return sparql.Term{}, fmt.Errorf("eval: unsupported function %s", c.Func)
}
