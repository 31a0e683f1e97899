// Package policy classifies tree nodes as ignorable or as refresh boundaries.
//
// Static policies match on node kind. Expression policies are compiled once with
// github.com/expr-lang/expr and evaluated per node against an Env:
//
//	kind == "literal" || (kind == "label" && children == 0)
//	kind in ["panel", "region"] && id startsWith "upd-"
package policy

import (
	"fmt"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/aretw0/postman/pkg/domain"
)

// Predicate reports whether a node belongs to a class (ignorable, boundary).
type Predicate func(n domain.Node) bool

// Default predicates used when nothing else is configured.
var (
	DefaultIgnore   = Kinds(domain.KindLiteral)
	DefaultBoundary = Kinds(domain.KindPanel)
)

// None matches nothing.
func None(domain.Node) bool { return false }

// Kinds matches nodes whose kind is one of kinds.
func Kinds(kinds ...domain.Kind) Predicate {
	set := make(map[domain.Kind]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return func(n domain.Node) bool {
		_, ok := set[n.Kind()]
		return ok
	}
}

// Any matches when at least one of preds matches. Nil entries are skipped.
func Any(preds ...Predicate) Predicate {
	live := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			live = append(live, p)
		}
	}
	return func(n domain.Node) bool {
		for _, p := range live {
			if p(n) {
				return true
			}
		}
		return false
	}
}

// Env is the environment an expression predicate is evaluated against.
type Env struct {
	Kind     string `expr:"kind"`
	ID       string `expr:"id"`
	Children int    `expr:"children"`
}

// EnvOf builds the expression environment for n.
func EnvOf(n domain.Node) Env {
	return Env{
		Kind:     string(n.Kind()),
		ID:       domain.NodeID(n),
		Children: len(n.Children()),
	}
}

// Expr compiles a boolean expression into a Predicate.
// A runtime evaluation failure is treated as "no match".
func Expr(expression string) (Predicate, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	program, err := exprlang.Compile(expression, exprlang.Env(Env{}), exprlang.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile policy %q: %w", expression, err)
	}
	return exprPredicate(program), nil
}

func exprPredicate(program *exprvm.Program) Predicate {
	return func(n domain.Node) bool {
		out, err := exprlang.Run(program, EnvOf(n))
		if err != nil {
			return false
		}
		ok, _ := out.(bool)
		return ok
	}
}

// Build combines a kind list and an optional expression.
// With neither set it returns fallback.
func Build(kinds []string, expression string, fallback Predicate) (Predicate, error) {
	if len(kinds) == 0 && strings.TrimSpace(expression) == "" {
		return fallback, nil
	}

	var preds []Predicate
	if len(kinds) > 0 {
		ks := make([]domain.Kind, 0, len(kinds))
		for _, k := range kinds {
			ks = append(ks, domain.Kind(strings.TrimSpace(k)))
		}
		preds = append(preds, Kinds(ks...))
	}
	if strings.TrimSpace(expression) != "" {
		p, err := Expr(expression)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return Any(preds...), nil
}
