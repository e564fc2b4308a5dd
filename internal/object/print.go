package object

import "strconv"

// Print renders v the way the PRINT opcode and the disassembler's constant
// dump do (spec §6, "Canonical value printing"): nil/bool literally,
// numbers as shortest round-trip decimal, strings as raw bytes, and every
// heap object variant via its own String method.
func Print(v Value) string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return FormatNumber(v.Number)
	case KindObject:
		return v.Obj.String()
	default:
		return "?"
	}
}

// FormatNumber renders a float64 the way clox's printValue does with its
// "%g" specifier: the shortest decimal string that round-trips back to
// the same float64.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}
