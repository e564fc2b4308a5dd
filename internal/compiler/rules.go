package compiler

import "github.com/cinderlang/cinder/internal/token"

// precedence orders binary operators from loosest to tightest binding, one
// level per row of spec §4.2's precedence table. parsePrecedence accepts
// any infix operator whose rule precedence is >= the level passed in.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * / %
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

// parseFn is either a prefix parser (ignores canAssign-independent state
// beyond its own token) or an infix parser invoked with the left operand
// already on the bytecode stack.
type parseFn func(c *Compiler, canAssign bool)

// rule is one row of the Pratt parse table: the prefix parser to use when
// a token starts an expression, the infix parser to use when it appears
// between two expressions, and the precedence of that infix use.
type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// rules is indexed by token.Type, mirroring the source material's rules[]
// array in compiler.c. Every token that never starts or continues an
// expression is left at its zero value (precNone, nil, nil).
var rules = map[token.Type]rule{
	token.LeftParen:    {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall},
	token.Dot:          {infix: (*Compiler).dot, precedence: precCall},
	token.Minus:        {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm},
	token.Plus:         {infix: (*Compiler).binary, precedence: precTerm},
	token.Slash:        {infix: (*Compiler).binary, precedence: precFactor},
	token.Star:         {infix: (*Compiler).binary, precedence: precFactor},
	token.Percent:      {infix: (*Compiler).binary, precedence: precFactor},
	token.Bang:         {prefix: (*Compiler).unary},
	token.BangEqual:    {infix: (*Compiler).binary, precedence: precEquality},
	token.EqualEqual:   {infix: (*Compiler).binary, precedence: precEquality},
	token.Greater:      {infix: (*Compiler).binary, precedence: precComparison},
	token.GreaterEqual: {infix: (*Compiler).binary, precedence: precComparison},
	token.Less:         {infix: (*Compiler).binary, precedence: precComparison},
	token.LessEqual:    {infix: (*Compiler).binary, precedence: precComparison},
	token.Identifier:   {prefix: (*Compiler).variable},
	token.String:       {prefix: (*Compiler).string},
	token.Number:       {prefix: (*Compiler).number},
	token.And:          {infix: (*Compiler).and, precedence: precAnd},
	token.Or:           {infix: (*Compiler).or, precedence: precOr},
	token.False:        {prefix: (*Compiler).literal},
	token.Nil:          {prefix: (*Compiler).literal},
	token.True:         {prefix: (*Compiler).literal},
	token.Super:        {prefix: (*Compiler).super},
	token.This:         {prefix: (*Compiler).this},
}

func ruleFor(t token.Type) rule { return rules[t] }
