// Package formula evaluates user-configurable arithmetic expressions against
// a fixed variable set. The grammar is an explicit whitelist: numeric
// literals, named variables, + - * /, unary minus, comparisons, parentheses,
// and calls to min, max and int. Nothing else evaluates, so a configured
// formula can never execute arbitrary code.
package formula

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Evaluate evaluates expr against vars. On any parse or evaluation failure
// the configured fallback is returned; the failure is logged, never raised.
func Evaluate(expr string, vars map[string]float64, fallback float64) float64 {
	v, err := eval(expr, vars)
	if err != nil {
		log.Warn().Err(err).Str("formula", expr).Float64("fallback", fallback).
			Msg("formula evaluation failed")
		return fallback
	}
	return v
}

func eval(expr string, vars map[string]float64) (float64, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}
	return evalNode(node, vars)
}

func evalNode(node ast.Expr, vars map[string]float64) (float64, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		switch n.Kind {
		case token.INT, token.FLOAT:
			return strconv.ParseFloat(n.Value, 64)
		}
		return 0, fmt.Errorf("literal %q not allowed", n.Value)

	case *ast.Ident:
		v, ok := vars[n.Name]
		if !ok {
			return 0, fmt.Errorf("unknown variable %q", n.Name)
		}
		return v, nil

	case *ast.ParenExpr:
		return evalNode(n.X, vars)

	case *ast.UnaryExpr:
		x, err := evalNode(n.X, vars)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.SUB:
			return -x, nil
		case token.ADD:
			return x, nil
		}
		return 0, fmt.Errorf("unary operator %s not allowed", n.Op)

	case *ast.BinaryExpr:
		return evalBinary(n, vars)

	case *ast.CallExpr:
		return evalCall(n, vars)
	}
	return 0, fmt.Errorf("expression %T not allowed", node)
}

func evalBinary(n *ast.BinaryExpr, vars map[string]float64) (float64, error) {
	x, err := evalNode(n.X, vars)
	if err != nil {
		return 0, err
	}
	y, err := evalNode(n.Y, vars)
	if err != nil {
		return 0, err
	}
	switch n.Op {
	case token.ADD:
		return x + y, nil
	case token.SUB:
		return x - y, nil
	case token.MUL:
		return x * y, nil
	case token.QUO:
		if y == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return x / y, nil
	case token.LSS:
		return boolVal(x < y), nil
	case token.GTR:
		return boolVal(x > y), nil
	case token.LEQ:
		return boolVal(x <= y), nil
	case token.GEQ:
		return boolVal(x >= y), nil
	case token.EQL:
		return boolVal(x == y), nil
	case token.NEQ:
		return boolVal(x != y), nil
	}
	return 0, fmt.Errorf("operator %s not allowed", n.Op)
}

func evalCall(n *ast.CallExpr, vars map[string]float64) (float64, error) {
	ident, ok := n.Fun.(*ast.Ident)
	if !ok {
		return 0, fmt.Errorf("only min, max and int calls allowed")
	}

	args := make([]float64, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := evalNode(a, vars)
		if err != nil {
			return 0, err
		}
		args = append(args, v)
	}

	switch ident.Name {
	case "min":
		if len(args) == 0 {
			return 0, fmt.Errorf("min needs at least one argument")
		}
		out := args[0]
		for _, v := range args[1:] {
			out = math.Min(out, v)
		}
		return out, nil
	case "max":
		if len(args) == 0 {
			return 0, fmt.Errorf("max needs at least one argument")
		}
		out := args[0]
		for _, v := range args[1:] {
			out = math.Max(out, v)
		}
		return out, nil
	case "int":
		if len(args) != 1 {
			return 0, fmt.Errorf("int takes exactly one argument")
		}
		return math.Trunc(args[0]), nil
	}
	return 0, fmt.Errorf("function %q not allowed", ident.Name)
}

func boolVal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
