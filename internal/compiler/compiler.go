// Package compiler implements the single-pass Pratt-parsing compiler of
// spec §4.2: source text goes in, a top-level *object.Function comes out,
// with no intermediate AST. Parsing and code generation are interleaved
// exactly the way the source material's compiler.c does it — each parse
// rule both consumes tokens and emits bytecode in the same call.
package compiler

import (
	"strconv"

	"github.com/cinderlang/cinder/internal/heap"
	"github.com/cinderlang/cinder/internal/object"
	"github.com/cinderlang/cinder/internal/scanner"
	"github.com/cinderlang/cinder/internal/token"
)

// Compiler turns source text into a top-level Function. One Compiler
// compiles one Compile call; Compile resets all per-call state, so a
// Compiler can be reused across many sources.
type Compiler struct {
	heap *heap.Heap

	scanner  *scanner.Scanner
	previous token.Token
	current  token.Token

	hadError  bool
	panicMode bool
	errs      []string

	top   *frame
	class *classState
}

// New creates a Compiler that allocates through h. h is also where the
// Compiler registers itself as a heap.RootProvider, since the function
// object under construction isn't reachable any other way until it is
// wrapped into a closure constant of its enclosing chunk.
func New(h *heap.Heap) *Compiler {
	c := &Compiler{heap: h}
	h.AddRootProvider(c)
	return c
}

// MarkRoots marks the function under construction in every frame of the
// current compile, satisfying heap.RootProvider.
func (c *Compiler) MarkRoots(h *heap.Heap) {
	for f := c.top; f != nil; f = f.enclosing {
		h.MarkObject(f.function)
	}
}

// Compile compiles source into a top-level script Function, or returns a
// *CompileError describing every syntax error found. Panic-mode recovery
// (spec §4.2, "Error recovery") means a single Compile call can report
// more than one error before giving up.
func (c *Compiler) Compile(source string) (*object.Function, error) {
	c.scanner = scanner.New(source)
	c.hadError = false
	c.panicMode = false
	c.errs = nil
	c.class = nil

	fn := c.heap.NewFunction()
	c.top = newFrame(nil, fn, TypeScript)

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}

	ended := c.endFrame()
	if c.hadError {
		return nil, &CompileError{Messages: c.errs}
	}
	return ended.function, nil
}

func (c *Compiler) currentChunk() *object.Chunk { return &c.top.function.Chunk }

// --- token stream plumbing ---------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Next()
		if c.current.Type != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(t token.Type) bool { return c.current.Type == t }

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Type, msg string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	where := " at end"
	if tok.Type == token.Error {
		where = ""
	} else if tok.Type != token.EOF {
		where = " at '" + tok.Lexeme + "'"
	}
	c.errs = append(c.errs, "[line "+itoa(tok.Line)+"] Error"+where+": "+msg)
}

func itoa(n int) string { return strconv.Itoa(n) }

// synchronize discards tokens until it reaches a statement boundary,
// resuming compilation at the next declaration so that one syntax error
// doesn't cascade into dozens of spurious ones (spec §4.2).
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != token.EOF {
		if c.previous.Type == token.Semicolon {
			return
		}
		switch c.current.Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}

// --- bytecode emission ---------------------------------------------------

func (c *Compiler) emitByte(b byte) { c.currentChunk().Write(b, c.previous.Line) }
func (c *Compiler) emitOp(op object.Op) { c.emitByte(byte(op)) }
func (c *Compiler) emitBytes(op object.Op, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *Compiler) emitReturn() {
	if c.top.fnType == TypeInitializer {
		c.emitBytes(object.OpGetLocal, 0)
	} else {
		c.emitOp(object.OpNil)
	}
	c.emitOp(object.OpReturn)
}

func (c *Compiler) makeConstant(v object.Value) byte {
	idx, ok := c.heap.AddConstant(c.currentChunk(), v)
	if !ok {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v object.Value) {
	c.emitBytes(object.OpConstant, c.makeConstant(v))
}

// emitJump writes op followed by a two-byte placeholder offset, returning
// the offset of the placeholder's first byte for patchJump to fill in once
// the jump target is known.
func (c *Compiler) emitJump(op object.Op) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.currentChunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
	}
	c.currentChunk().Code[offset] = byte((jump >> 8) & 0xff)
	c.currentChunk().Code[offset+1] = byte(jump & 0xff)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(object.OpLoop)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitByte(byte((offset >> 8) & 0xff))
	c.emitByte(byte(offset & 0xff))
}

// endFrame closes out the frame currently being compiled, restoring its
// enclosing frame as current, and returns the ended frame so the caller
// (Compile for the script, function for everything else) can read its
// finished Function and captured upvalues.
func (c *Compiler) endFrame() *frame {
	c.emitReturn()
	ended := c.top
	c.top = ended.enclosing
	return ended
}

// --- scope -----------------------------------------------------------

func (c *Compiler) beginScope() { c.top.scopeDepth++ }

func (c *Compiler) endScope() {
	c.top.scopeDepth--
	locals := c.top.locals
	for len(locals) > 0 && locals[len(locals)-1].depth > c.top.scopeDepth {
		if locals[len(locals)-1].isCaptured {
			c.emitOp(object.OpCloseUpvalue)
		} else {
			c.emitOp(object.OpPop)
		}
		locals = locals[:len(locals)-1]
	}
	c.top.locals = locals
}

// --- declarations ---------------------------------------------------------

func (c *Compiler) declaration() {
	switch {
	case c.match(token.Class):
		c.classDeclaration()
	case c.match(token.Fun):
		c.funDeclaration()
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) classDeclaration() {
	c.consume(token.Identifier, "Expect class name.")
	className := c.previous
	nameConstant := c.identifierConstant(className)
	c.declareVariable()
	c.emitBytes(object.OpClass, nameConstant)
	c.defineVariable(nameConstant)

	cs := &classState{enclosing: c.class}
	c.class = cs

	if c.match(token.Less) {
		c.consume(token.Identifier, "Expect superclass name.")
		if c.previous.Lexeme == className.Lexeme {
			c.error("A class can't inherit from itself.")
		}
		c.namedVariableByName(c.previous.Lexeme, false)

		c.beginScope()
		c.addLocal("super")
		c.markInitialized()

		c.namedVariableByName(className.Lexeme, false)
		c.emitOp(object.OpInherit)
		cs.hasSuperclass = true
	}

	c.namedVariableByName(className.Lexeme, false)
	c.consume(token.LeftBrace, "Expect '{' before class body.")
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RightBrace, "Expect '}' after class body.")
	c.emitOp(object.OpPop)

	if cs.hasSuperclass {
		c.endScope()
	}
	c.class = cs.enclosing
}

func (c *Compiler) method() {
	c.consume(token.Identifier, "Expect method name.")
	name := c.previous
	constant := c.identifierConstant(name)

	fnType := TypeMethod
	if name.Lexeme == "init" {
		fnType = TypeInitializer
	}
	c.function(fnType)
	c.emitBytes(object.OpMethod, constant)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(TypeFunction)
	c.defineVariable(global)
}

// function compiles a nested function body: it pushes a fresh frame,
// parses the parameter list and block, pops the frame, and emits the
// OP_CLOSURE that captures whatever upvalues the body resolved.
func (c *Compiler) function(fnType FunctionType) {
	fn := c.heap.NewFunction()
	c.top = newFrame(c.top, fn, fnType)
	fn.Name = c.heap.CopyString(c.previous.Lexeme)

	c.beginScope()
	c.consume(token.LeftParen, "Expect '(' after function name.")
	if !c.check(token.RightParen) {
		for {
			fn.Arity++
			if fn.Arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConstant := c.parseVariable("Expect parameter name.")
			c.defineVariable(paramConstant)
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "Expect ')' after parameters.")
	c.consume(token.LeftBrace, "Expect '{' before function body.")
	c.block()

	ended := c.endFrame()
	ended.function.UpvalueCount = len(ended.upvalues)

	idx := c.makeConstant(object.NewObject(ended.function))
	c.emitBytes(object.OpClosure, idx)
	for _, up := range ended.upvalues {
		c.emitByte(boolByte(up.isLocal))
		c.emitByte(up.index)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitOp(object.OpNil)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) parseVariable(msg string) byte {
	c.consume(token.Identifier, msg)
	c.declareVariable()
	if c.top.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) identifierConstant(name token.Token) byte {
	return c.makeConstant(object.NewObject(c.heap.CopyString(name.Lexeme)))
}

func (c *Compiler) declareVariable() {
	if c.top.scopeDepth == 0 {
		return
	}
	name := c.previous.Lexeme
	for i := len(c.top.locals) - 1; i >= 0; i-- {
		l := c.top.locals[i]
		if l.depth != -1 && l.depth < c.top.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.top.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.top.locals = append(c.top.locals, local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	if c.top.scopeDepth == 0 {
		return
	}
	c.top.locals[len(c.top.locals)-1].depth = c.top.scopeDepth
}

func (c *Compiler) defineVariable(global byte) {
	if c.top.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(object.OpDefineGlobal, global)
}

// --- statements -----------------------------------------------------------

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.Return):
		c.returnStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitOp(object.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitOp(object.OpPop)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(object.OpJumpIfFalse)
	c.emitOp(object.OpPop)
	c.statement()

	elseJump := c.emitJump(object.OpJump)
	c.patchJump(thenJump)
	c.emitOp(object.OpPop)

	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.currentChunk().Code)
	c.consume(token.LeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(object.OpJumpIfFalse)
	c.emitOp(object.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(object.OpPop)
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(token.Semicolon):
		// no initializer
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.currentChunk().Code)
	exitJump := -1
	if !c.match(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(object.OpJumpIfFalse)
		c.emitOp(object.OpPop)
	}

	if !c.match(token.RightParen) {
		bodyJump := c.emitJump(object.OpJump)
		incrementStart := len(c.currentChunk().Code)
		c.expression()
		c.emitOp(object.OpPop)
		c.consume(token.RightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(object.OpPop)
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.top.fnType == TypeScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.Semicolon) {
		c.emitReturn()
		return
	}
	if c.top.fnType == TypeInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after return value.")
	c.emitOp(object.OpReturn)
}

// --- expressions (Pratt parser) -------------------------------------------

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefix := ruleFor(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	prefix(c, canAssign)

	for prec <= ruleFor(c.current.Type).precedence {
		c.advance()
		infix := ruleFor(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) number(canAssign bool) {
	n, _ := strconv.ParseFloat(c.previous.Lexeme, 64)
	c.emitConstant(object.NewNumber(n))
}

func (c *Compiler) string(canAssign bool) {
	raw := c.previous.Lexeme
	chars := raw[1 : len(raw)-1]
	c.emitConstant(object.NewObject(c.heap.CopyString(chars)))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Type {
	case token.False:
		c.emitOp(object.OpFalse)
	case token.Nil:
		c.emitOp(object.OpNil)
	case token.True:
		c.emitOp(object.OpTrue)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) unary(canAssign bool) {
	opType := c.previous.Type
	c.parsePrecedence(precUnary)
	switch opType {
	case token.Minus:
		c.emitOp(object.OpNegate)
	case token.Bang:
		c.emitOp(object.OpNot)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opType := c.previous.Type
	r := ruleFor(opType)
	c.parsePrecedence(r.precedence + 1)

	switch opType {
	case token.BangEqual:
		c.emitOp(object.OpEqual)
		c.emitOp(object.OpNot)
	case token.EqualEqual:
		c.emitOp(object.OpEqual)
	case token.Greater:
		c.emitOp(object.OpGreater)
	case token.GreaterEqual:
		c.emitOp(object.OpLess)
		c.emitOp(object.OpNot)
	case token.Less:
		c.emitOp(object.OpLess)
	case token.LessEqual:
		c.emitOp(object.OpGreater)
		c.emitOp(object.OpNot)
	case token.Plus:
		c.emitOp(object.OpAdd)
	case token.Minus:
		c.emitOp(object.OpSubtract)
	case token.Star:
		c.emitOp(object.OpMultiply)
	case token.Slash:
		c.emitOp(object.OpDivide)
	case token.Percent:
		c.emitOp(object.OpModulo)
	}
}

func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(object.OpJumpIfFalse)
	c.emitOp(object.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(object.OpJumpIfFalse)
	endJump := c.emitJump(object.OpJump)
	c.patchJump(elseJump)
	c.emitOp(object.OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emitBytes(object.OpCall, argCount)
}

func (c *Compiler) argumentList() byte {
	var argCount int
	if !c.check(token.RightParen) {
		for {
			c.expression()
			if argCount == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "Expect ')' after arguments.")
	return byte(argCount)
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.Identifier, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous)

	switch {
	case canAssign && c.match(token.Equal):
		c.expression()
		c.emitBytes(object.OpSetProperty, name)
	case c.match(token.LeftParen):
		argCount := c.argumentList()
		c.emitBytes(object.OpInvoke, name)
		c.emitByte(argCount)
	default:
		c.emitBytes(object.OpGetProperty, name)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariableByName(c.previous.Lexeme, canAssign)
}

func (c *Compiler) this(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.namedVariableByName("this", false)
}

func (c *Compiler) super(canAssign bool) {
	switch {
	case c.class == nil:
		c.error("Can't use 'super' outside of a class.")
	case !c.class.hasSuperclass:
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.Dot, "Expect '.' after 'super'.")
	c.consume(token.Identifier, "Expect superclass method name.")
	name := c.identifierConstant(c.previous)

	c.namedVariableByName("this", false)
	if c.match(token.LeftParen) {
		argCount := c.argumentList()
		c.namedVariableByName("super", false)
		c.emitBytes(object.OpSuperInvoke, name)
		c.emitByte(argCount)
	} else {
		c.namedVariableByName("super", false)
		c.emitBytes(object.OpGetSuper, name)
	}
}

// namedVariableByName resolves name as a local, an upvalue, or else a
// global, and emits the matching get/set opcode — a plain read if
// canAssign is false or no '=' follows, otherwise compiles the assigned
// expression first.
func (c *Compiler) namedVariableByName(name string, canAssign bool) {
	var getOp, setOp object.Op
	var arg int

	if slot, depth, found := c.top.resolveLocal(name); found {
		if depth == -1 {
			c.error("Can't read local variable in its own initializer.")
		}
		getOp, setOp, arg = object.OpGetLocal, object.OpSetLocal, slot
	} else if slot, found := c.top.resolveUpvalue(c, name); found {
		getOp, setOp, arg = object.OpGetUpvalue, object.OpSetUpvalue, slot
	} else {
		arg = int(c.makeConstant(object.NewObject(c.heap.CopyString(name))))
		getOp, setOp = object.OpGetGlobal, object.OpSetGlobal
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitBytes(setOp, byte(arg))
	} else {
		c.emitBytes(getOp, byte(arg))
	}
}
