package object

// Op is a single bytecode instruction opcode. Operand widths are fixed per
// opcode (spec §6, "Bytecode format") and are encoded as the variadic
// bytes immediately following the opcode in a Chunk's code buffer.
type Op byte

const (
	OpConstant Op = iota // 1-byte constant index
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal  // 1-byte slot
	OpSetLocal  // 1-byte slot
	OpGetGlobal // 1-byte constant index (name)
	OpSetGlobal // 1-byte constant index (name)
	OpDefineGlobal
	OpGetUpvalue // 1-byte upvalue index
	OpSetUpvalue
	OpGetProperty // 1-byte constant index (name)
	OpSetProperty
	OpGetSuper
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpNot
	OpNegate
	OpPrint
	OpJump         // 2-byte big-endian offset
	OpJumpIfFalse  // 2-byte big-endian offset
	OpLoop         // 2-byte big-endian offset
	OpCall         // 1-byte argument count
	OpInvoke       // 1-byte constant index (name), 1-byte argument count
	OpSuperInvoke  // 1-byte constant index (name), 1-byte argument count
	OpClosure      // 1-byte function constant index, then 2*upvalueCount bytes
	OpCloseUpvalue
	OpReturn
	OpClass   // 1-byte constant index (name)
	OpInherit
	OpMethod // 1-byte constant index (name)
)

var opNames = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpGetUpvalue:   "OP_GET_UPVALUE",
	OpSetUpvalue:   "OP_SET_UPVALUE",
	OpGetProperty:  "OP_GET_PROPERTY",
	OpSetProperty:  "OP_SET_PROPERTY",
	OpGetSuper:     "OP_GET_SUPER",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpModulo:       "OP_MODULO",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpInvoke:       "OP_INVOKE",
	OpSuperInvoke:  "OP_SUPER_INVOKE",
	OpClosure:      "OP_CLOSURE",
	OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn:       "OP_RETURN",
	OpClass:        "OP_CLASS",
	OpInherit:      "OP_INHERIT",
	OpMethod:       "OP_METHOD",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "OP_UNKNOWN"
}
