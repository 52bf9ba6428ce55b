// Package bytecode defines the code object (spec.md §4.9, component H)
// and the fixed opcode set its frame evaluator (package vm) dispatches
// over: every instruction is a (opcode, oparg) byte pair, oparg widened
// by a preceding EXTENDED_ARG when a 16-bit operand is needed.
package bytecode

// OpCode identifies one dispatch-loop instruction.
type OpCode byte

const (
	// Stack manipulation.
	POP_TOP OpCode = iota
	ROT_TWO
	ROT_THREE
	ROT_FOUR
	DUP_TOP
	DUP_TOP_TWO
	NOP

	// Unary.
	UNARY_POSITIVE
	UNARY_NEGATIVE
	UNARY_NOT
	UNARY_INVERT

	// Binary / in-place.
	BINARY_ADD
	BINARY_SUB
	BINARY_MUL
	BINARY_TRUE_DIV
	BINARY_FLOOR_DIV
	BINARY_MOD
	BINARY_POW
	BINARY_LSHIFT
	BINARY_RSHIFT
	BINARY_AND
	BINARY_OR
	BINARY_XOR
	BINARY_MATMUL
	BINARY_SUBSCR

	INPLACE_ADD
	INPLACE_SUB
	INPLACE_MUL
	INPLACE_TRUE_DIV
	INPLACE_FLOOR_DIV
	INPLACE_MOD
	INPLACE_POW
	INPLACE_LSHIFT
	INPLACE_RSHIFT
	INPLACE_AND
	INPLACE_OR
	INPLACE_XOR
	INPLACE_MATMUL

	STORE_SUBSCR
	DELETE_SUBSCR

	// Comparison.
	COMPARE_OP

	// Control flow.
	JUMP_FORWARD
	JUMP_ABSOLUTE
	POP_JUMP_IF_TRUE
	POP_JUMP_IF_FALSE
	JUMP_IF_TRUE_OR_POP
	JUMP_IF_FALSE_OR_POP
	RETURN_VALUE

	// Names and constants.
	LOAD_CONST
	LOAD_NAME
	STORE_NAME
	DELETE_NAME
	LOAD_GLOBAL
	STORE_GLOBAL
	DELETE_GLOBAL
	LOAD_FAST
	STORE_FAST
	DELETE_FAST
	LOAD_DEREF
	STORE_DEREF
	DELETE_DEREF
	LOAD_CLOSURE
	LOAD_CLASSDEREF

	// Attributes.
	LOAD_ATTR
	STORE_ATTR
	DELETE_ATTR

	// Builders.
	BUILD_TUPLE
	BUILD_LIST
	BUILD_SET
	BUILD_MAP
	BUILD_CONST_KEY_MAP
	BUILD_STRING
	BUILD_SLICE

	// Iteration.
	GET_ITER
	FOR_ITER

	// Calls and functions.
	CALL_FUNCTION
	CALL_FUNCTION_KW
	CALL_METHOD
	LOAD_METHOD
	MAKE_FUNCTION

	// Operand composition.
	EXTENDED_ARG

	numOpCodes
)

// CompareOp indexes spec.md §4.9's COMPARE_OP operand table; the low
// six values map directly onto object.CompareOp, the remaining five
// (in/not-in, is/is-not, exc-match) are handled by the evaluator itself
// since they aren't slot-level rich comparisons.
type CompareOp byte

const (
	CmpLT CompareOp = iota
	CmpLE
	CmpEQ
	CmpNE
	CmpGT
	CmpGE
	CmpIn
	CmpNotIn
	CmpIs
	CmpIsNot
	CmpExcMatch
)

var names = [numOpCodes]string{
	POP_TOP: "POP_TOP", ROT_TWO: "ROT_TWO", ROT_THREE: "ROT_THREE", ROT_FOUR: "ROT_FOUR",
	DUP_TOP: "DUP_TOP", DUP_TOP_TWO: "DUP_TOP_TWO", NOP: "NOP",
	UNARY_POSITIVE: "UNARY_POSITIVE", UNARY_NEGATIVE: "UNARY_NEGATIVE",
	UNARY_NOT: "UNARY_NOT", UNARY_INVERT: "UNARY_INVERT",
	BINARY_ADD: "BINARY_ADD", BINARY_SUB: "BINARY_SUB", BINARY_MUL: "BINARY_MUL",
	BINARY_TRUE_DIV: "BINARY_TRUE_DIV", BINARY_FLOOR_DIV: "BINARY_FLOOR_DIV", BINARY_MOD: "BINARY_MOD",
	BINARY_POW: "BINARY_POW", BINARY_LSHIFT: "BINARY_LSHIFT", BINARY_RSHIFT: "BINARY_RSHIFT",
	BINARY_AND: "BINARY_AND", BINARY_OR: "BINARY_OR", BINARY_XOR: "BINARY_XOR",
	BINARY_MATMUL: "BINARY_MATMUL", BINARY_SUBSCR: "BINARY_SUBSCR",
	INPLACE_ADD: "INPLACE_ADD", INPLACE_SUB: "INPLACE_SUB", INPLACE_MUL: "INPLACE_MUL",
	INPLACE_TRUE_DIV: "INPLACE_TRUE_DIV", INPLACE_FLOOR_DIV: "INPLACE_FLOOR_DIV", INPLACE_MOD: "INPLACE_MOD",
	INPLACE_POW: "INPLACE_POW", INPLACE_LSHIFT: "INPLACE_LSHIFT", INPLACE_RSHIFT: "INPLACE_RSHIFT",
	INPLACE_AND: "INPLACE_AND", INPLACE_OR: "INPLACE_OR", INPLACE_XOR: "INPLACE_XOR", INPLACE_MATMUL: "INPLACE_MATMUL",
	STORE_SUBSCR: "STORE_SUBSCR", DELETE_SUBSCR: "DELETE_SUBSCR",
	COMPARE_OP: "COMPARE_OP",
	JUMP_FORWARD: "JUMP_FORWARD", JUMP_ABSOLUTE: "JUMP_ABSOLUTE",
	POP_JUMP_IF_TRUE: "POP_JUMP_IF_TRUE", POP_JUMP_IF_FALSE: "POP_JUMP_IF_FALSE",
	JUMP_IF_TRUE_OR_POP: "JUMP_IF_TRUE_OR_POP", JUMP_IF_FALSE_OR_POP: "JUMP_IF_FALSE_OR_POP",
	RETURN_VALUE: "RETURN_VALUE",
	LOAD_CONST: "LOAD_CONST", LOAD_NAME: "LOAD_NAME", STORE_NAME: "STORE_NAME", DELETE_NAME: "DELETE_NAME",
	LOAD_GLOBAL: "LOAD_GLOBAL", STORE_GLOBAL: "STORE_GLOBAL", DELETE_GLOBAL: "DELETE_GLOBAL",
	LOAD_FAST: "LOAD_FAST", STORE_FAST: "STORE_FAST", DELETE_FAST: "DELETE_FAST",
	LOAD_DEREF: "LOAD_DEREF", STORE_DEREF: "STORE_DEREF", DELETE_DEREF: "DELETE_DEREF",
	LOAD_CLOSURE: "LOAD_CLOSURE", LOAD_CLASSDEREF: "LOAD_CLASSDEREF",
	LOAD_ATTR: "LOAD_ATTR", STORE_ATTR: "STORE_ATTR", DELETE_ATTR: "DELETE_ATTR",
	BUILD_TUPLE: "BUILD_TUPLE", BUILD_LIST: "BUILD_LIST", BUILD_SET: "BUILD_SET",
	BUILD_MAP: "BUILD_MAP", BUILD_CONST_KEY_MAP: "BUILD_CONST_KEY_MAP",
	BUILD_STRING: "BUILD_STRING", BUILD_SLICE: "BUILD_SLICE",
	GET_ITER: "GET_ITER", FOR_ITER: "FOR_ITER",
	CALL_FUNCTION: "CALL_FUNCTION", CALL_FUNCTION_KW: "CALL_FUNCTION_KW",
	CALL_METHOD: "CALL_METHOD", LOAD_METHOD: "LOAD_METHOD", MAKE_FUNCTION: "MAKE_FUNCTION",
	EXTENDED_ARG: "EXTENDED_ARG",
}

func (op OpCode) String() string {
	if int(op) < len(names) && names[op] != "" {
		return names[op]
	}
	return "UNKNOWN_OPCODE"
}
