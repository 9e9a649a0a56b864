// expr/eval.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package expr

import (
	"fmt"
	gomath "math"
)

type node interface {
	eval(lk Lookup) (Value, error)
}

type numberNode float64

func (n numberNode) eval(lk Lookup) (Value, error) { return float64(n), nil }

type stringNode string

func (n stringNode) eval(lk Lookup) (Value, error) { return string(n), nil }

type placeholderNode string

func (n placeholderNode) eval(lk Lookup) (Value, error) {
	if v, ok := lk(string(n)); ok {
		return v, nil
	}
	return nil, &UnknownPlaceholderError{Name: string(n)}
}

type negateNode struct {
	arg node
}

func (n *negateNode) eval(lk Lookup) (Value, error) {
	v, err := n.arg.eval(lk)
	if err != nil {
		return nil, err
	}
	f, ok := v.(float64)
	if !ok {
		return nil, &EvalError{Msg: fmt.Sprintf("cannot negate %q", v)}
	}
	return -f, nil
}

type binaryNode struct {
	op       string
	lhs, rhs node
}

func (n *binaryNode) eval(lk Lookup) (Value, error) {
	lv, err := n.lhs.eval(lk)
	if err != nil {
		return nil, err
	}
	rv, err := n.rhs.eval(lk)
	if err != nil {
		return nil, err
	}

	lf, lnum := lv.(float64)
	rf, rnum := rv.(float64)
	if lnum && rnum {
		switch n.op {
		case "+":
			return lf + rf, nil
		case "-":
			return lf - rf, nil
		case "*":
			return lf * rf, nil
		case "/":
			if rf == 0 {
				return nil, &EvalError{Msg: "division by zero"}
			}
			return lf / rf, nil
		case "%":
			if rf == 0 {
				return nil, &EvalError{Msg: "division by zero"}
			}
			return gomath.Mod(lf, rf), nil
		default:
			return boolValue(compare(n.op, lf, rf)), nil
		}
	}

	ls, lstr := lv.(string)
	rs, rstr := rv.(string)
	if lstr && rstr {
		switch n.op {
		case "+":
			return ls + rs, nil
		case "-", "*", "/", "%":
			return nil, &EvalError{Msg: fmt.Sprintf("%q: operator not defined for strings", n.op)}
		default:
			return boolValue(compareStrings(n.op, ls, rs)), nil
		}
	}

	return nil, &EvalError{Msg: fmt.Sprintf("%q: mismatched operand types %T and %T", n.op, lv, rv)}
}

func compare(op string, a, b float64) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "==":
		return a == b
	default: // "!="
		return a != b
	}
}

func compareStrings(op string, a, b string) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	case "==":
		return a == b
	default: // "!="
		return a != b
	}
}

func boolValue(b bool) Value {
	if b {
		return float64(1)
	}
	return float64(0)
}

type callNode struct {
	name string
	fn   function
	args []node
}

func (n *callNode) eval(lk Lookup) (Value, error) {
	args := make([]float64, len(n.args))
	for i, arg := range n.args {
		v, err := arg.eval(lk)
		if err != nil {
			return nil, err
		}
		f, ok := v.(float64)
		if !ok {
			return nil, &EvalError{Msg: fmt.Sprintf("%s: argument %d is not a number", n.name, i+1)}
		}
		args[i] = f
	}

	v, err := n.fn.impl(args)
	if err != nil {
		return nil, &EvalError{Msg: n.name + ": " + err.Error()}
	}
	return v, nil
}

///////////////////////////////////////////////////////////////////////////
// function and constant tables

var constants = map[string]float64{
	"pi": gomath.Pi,
	"e":  gomath.E,
}

type function struct {
	minArgs, maxArgs int // maxArgs == -1 for variadic
	impl             func(args []float64) (float64, error)
}

func (f function) arityString() string {
	if f.maxArgs == -1 {
		return fmt.Sprintf("at least %d", f.minArgs)
	}
	if f.minArgs == f.maxArgs {
		return fmt.Sprintf("%d", f.minArgs)
	}
	return fmt.Sprintf("%d to %d", f.minArgs, f.maxArgs)
}

func fn1(f func(float64) float64) function {
	return function{minArgs: 1, maxArgs: 1,
		impl: func(args []float64) (float64, error) { return f(args[0]), nil }}
}

func fn2(f func(float64, float64) float64) function {
	return function{minArgs: 2, maxArgs: 2,
		impl: func(args []float64) (float64, error) { return f(args[0], args[1]), nil }}
}

var functions = map[string]function{
	"sin":   fn1(gomath.Sin),
	"cos":   fn1(gomath.Cos),
	"tan":   fn1(gomath.Tan),
	"asin":  fn1(gomath.Asin),
	"acos":  fn1(gomath.Acos),
	"atan":  fn1(gomath.Atan),
	"atan2": fn2(gomath.Atan2),
	"sqrt":  fn1(gomath.Sqrt),
	"pow":   fn2(gomath.Pow),
	"exp":   fn1(gomath.Exp),
	"log":   fn1(gomath.Log),
	"log10": fn1(gomath.Log10),
	"abs":   fn1(gomath.Abs),
	"floor": fn1(gomath.Floor),
	"ceil":  fn1(gomath.Ceil),
	"trunc": fn1(gomath.Trunc),
	"deg":   fn1(func(v float64) float64 { return v * 180 / gomath.Pi }),
	"rad":   fn1(func(v float64) float64 { return v / 180 * gomath.Pi }),

	"round": {minArgs: 1, maxArgs: 2, impl: func(args []float64) (float64, error) {
		if len(args) == 1 {
			return gomath.Round(args[0]), nil
		}
		digits := int(args[1])
		if digits < 0 || digits > 15 {
			return 0, fmt.Errorf("digits %d out of range", digits)
		}
		scale := gomath.Pow(10, float64(digits))
		return gomath.Round(args[0]*scale) / scale, nil
	}},

	"min": {minArgs: 2, maxArgs: -1, impl: func(args []float64) (float64, error) {
		m := args[0]
		for _, v := range args[1:] {
			m = gomath.Min(m, v)
		}
		return m, nil
	}},

	"max": {minArgs: 2, maxArgs: -1, impl: func(args []float64) (float64, error) {
		m := args[0]
		for _, v := range args[1:] {
			m = gomath.Max(m, v)
		}
		return m, nil
	}},

	"clamp": {minArgs: 3, maxArgs: 3, impl: func(args []float64) (float64, error) {
		return gomath.Min(gomath.Max(args[0], args[1]), args[2]), nil
	}},
}
