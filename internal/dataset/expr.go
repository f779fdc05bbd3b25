package dataset

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/starfall/internal/rules"
)

// parseExpr converts a CUE value into a rule expression tree.
//
// The surface syntax mirrors the IR one-to-one:
//
//	{has: {item: "Sword", count: 2}}
//	{stars: 3}
//	{named: "can_fly"}
//	{reach: {target: "Docks", kind: "region"}}
//	{all: [...]}  {any: [...]}  {not: ...}
//
// Structural problems surface here with CUE positions; semantic
// problems (unknown named predicates, cycles) surface in the rule
// compiler.
func parseExpr(v cue.Value) (rules.Expr, error) {
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBadExpr, Message: err.Error(), Pos: v.Pos()}
	}

	if has := v.LookupPath(cue.ParsePath("has")); has.Exists() {
		item, err := has.LookupPath(cue.ParsePath("item")).String()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadExpr, Message: "has: item must be a string", Pos: has.Pos()}
		}
		count := int64(1)
		if countVal := has.LookupPath(cue.ParsePath("count")); countVal.Exists() {
			count, err = countVal.Int64()
			if err != nil {
				return nil, &LoadError{Code: ErrCodeBadExpr, Message: "has: count must be an integer", Pos: countVal.Pos()}
			}
		}
		return rules.HasItem{Name: item, Count: int(count)}, nil
	}

	if stars := v.LookupPath(cue.ParsePath("stars")); stars.Exists() {
		count, err := stars.Int64()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadExpr, Message: "stars: count must be an integer", Pos: stars.Pos()}
		}
		return rules.HasStars{Count: int(count)}, nil
	}

	if named := v.LookupPath(cue.ParsePath("named")); named.Exists() {
		name, err := named.String()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadExpr, Message: "named: predicate name must be a string", Pos: named.Pos()}
		}
		return rules.Named{Name: name}, nil
	}

	if reach := v.LookupPath(cue.ParsePath("reach")); reach.Exists() {
		target, err := reach.LookupPath(cue.ParsePath("target")).String()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadExpr, Message: "reach: target must be a string", Pos: reach.Pos()}
		}
		kind := rules.TargetLocation
		if kindVal := reach.LookupPath(cue.ParsePath("kind")); kindVal.Exists() {
			kindStr, err := kindVal.String()
			if err != nil {
				return nil, &LoadError{Code: ErrCodeBadExpr, Message: "reach: kind must be a string", Pos: kindVal.Pos()}
			}
			kind = rules.TargetKind(kindStr)
		}
		return rules.CanReach{Target: target, Kind: kind}, nil
	}

	if all := v.LookupPath(cue.ParsePath("all")); all.Exists() {
		children, err := parseExprList(all)
		if err != nil {
			return nil, err
		}
		return rules.All(children), nil
	}

	if anyOf := v.LookupPath(cue.ParsePath("any")); anyOf.Exists() {
		children, err := parseExprList(anyOf)
		if err != nil {
			return nil, err
		}
		return rules.Any(children), nil
	}

	if not := v.LookupPath(cue.ParsePath("not")); not.Exists() {
		child, err := parseExpr(not)
		if err != nil {
			return nil, err
		}
		return rules.Not{Expr: child}, nil
	}

	return nil, &LoadError{
		Code:    ErrCodeBadExpr,
		Message: fmt.Sprintf("expression must have one of has/stars/named/reach/all/any/not, got %v", v),
		Pos:     v.Pos(),
	}
}

func parseExprList(v cue.Value) ([]rules.Expr, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadExpr, Message: "combinator children must be a list", Pos: v.Pos()}
	}
	var out []rules.Expr
	for iter.Next() {
		child, err := parseExpr(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}
