// Package debug adapts the teacher's interactive bytecode debugger into
// the ambient `disassemble` tooling command of cmd/cinder: a
// non-interactive listing of a Chunk's instructions, one per line, in the
// clox disassembler's offset/line/opcode/operand format. The teacher's
// breakpoint-driven interactive prompt (pkg/vm/debugger.go) has no
// counterpart here — cinder's VM has no single-step hook to pause on —
// so only the instruction-formatting half survives, repurposed as a
// standalone text renderer instead of a live stepper.
package debug

import (
	"fmt"
	"strings"

	"github.com/cinderlang/cinder/internal/object"
)

// Disassemble renders every instruction in chunk under the given name,
// the entry point cmd/cinder's disassemble command uses.
func Disassemble(chunk *object.Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		var line string
		offset, line = disassembleInstruction(chunk, offset)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func disassembleInstruction(chunk *object.Chunk, offset int) (next int, line string) {
	var b strings.Builder
	fmt.Fprintf(&b, "%04d ", offset)
	if offset > 0 && chunk.LineAt(offset) == chunk.LineAt(offset-1) {
		b.WriteString("   | ")
	} else {
		fmt.Fprintf(&b, "%4d ", chunk.LineAt(offset))
	}

	op := object.Op(chunk.Code[offset])
	switch op {
	case object.OpConstant, object.OpGetGlobal, object.OpSetGlobal, object.OpDefineGlobal,
		object.OpGetProperty, object.OpSetProperty, object.OpGetSuper, object.OpClass, object.OpMethod:
		return constantInstruction(&b, chunk, op, offset)

	case object.OpGetLocal, object.OpSetLocal, object.OpGetUpvalue, object.OpSetUpvalue, object.OpCall:
		return byteInstruction(&b, chunk, op, offset)

	case object.OpJump, object.OpJumpIfFalse:
		return jumpInstruction(&b, chunk, op, offset, 1)
	case object.OpLoop:
		return jumpInstruction(&b, chunk, op, offset, -1)

	case object.OpInvoke, object.OpSuperInvoke:
		return invokeInstruction(&b, chunk, op, offset)

	case object.OpClosure:
		return closureInstruction(&b, chunk, offset)

	default:
		fmt.Fprintf(&b, "%s", op)
		return offset + 1, b.String()
	}
}

func simpleOperand(b *strings.Builder, op object.Op) {
	fmt.Fprintf(b, "%-16s", op.String())
}

func constantInstruction(b *strings.Builder, chunk *object.Chunk, op object.Op, offset int) (int, string) {
	constIdx := chunk.Code[offset+1]
	simpleOperand(b, op)
	fmt.Fprintf(b, " %4d '%s'", constIdx, object.Print(chunk.Constants[constIdx]))
	return offset + 2, b.String()
}

func byteInstruction(b *strings.Builder, chunk *object.Chunk, op object.Op, offset int) (int, string) {
	slot := chunk.Code[offset+1]
	simpleOperand(b, op)
	fmt.Fprintf(b, " %4d", slot)
	return offset + 2, b.String()
}

func jumpInstruction(b *strings.Builder, chunk *object.Chunk, op object.Op, offset int, sign int) (int, string) {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	simpleOperand(b, op)
	fmt.Fprintf(b, " %4d -> %d", offset, offset+3+sign*jump)
	return offset + 3, b.String()
}

func invokeInstruction(b *strings.Builder, chunk *object.Chunk, op object.Op, offset int) (int, string) {
	constIdx := chunk.Code[offset+1]
	argCount := chunk.Code[offset+2]
	simpleOperand(b, op)
	fmt.Fprintf(b, " (%d args) %4d '%s'", argCount, constIdx, object.Print(chunk.Constants[constIdx]))
	return offset + 3, b.String()
}

func closureInstruction(b *strings.Builder, chunk *object.Chunk, offset int) (int, string) {
	constIdx := chunk.Code[offset+1]
	simpleOperand(b, object.OpClosure)
	fmt.Fprintf(b, " %4d %s", constIdx, object.Print(chunk.Constants[constIdx]))
	offset += 2

	fn := chunk.Constants[constIdx].Obj.(*object.Function)
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(b, "\n%04d      |                     %s %d", offset, kind, index)
		offset += 2
	}
	return offset, b.String()
}
