package vm

// OpCode is one byte of the primary opcode space. An escape byte value,
// ExtOpcode, reaches a second, smaller table of less common opcodes.
type OpCode uint8

const ExtOpcode OpCode = 0xFF

const (
	// Constants & pushes
	OpPush OpCode = iota
	OpPushTwo
	OpPushThree
	OpPushUndefined
	OpPushNull
	OpPushTrue
	OpPushFalse
	OpPushThis
	OpPush0
	OpPushPosByte
	OpPushNegByte
	OpPushLit0
	OpPushLitPosByte
	OpPushLitNegByte
	OpPushObject
	OpPushArray
	OpPushElision
	OpPushArrayHole
	OpPushSpreadElement
	OpPushNewTarget
	OpPushNamedFuncExpr

	// Identifiers
	OpIdentReference
	OpTypeofIdent

	// Bindings
	OpCreateBinding
	OpInitBinding
	OpCheckVar
	OpCheckLet
	OpAssignLetConst
	OpThrowConstError
	OpVarEval
	OpExtVarEval

	// Object literal
	OpSetProperty
	OpSetGetter
	OpSetSetter
	OpSetProtoLiteral
	OpSetComputedProperty

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpExp

	// Bitwise
	OpBitOr
	OpBitXor
	OpBitAnd
	OpLeftShift
	OpRightShift
	OpUnsRightShift
	OpBitNot

	// Unary & logical
	OpPlus
	OpMinus
	OpNot
	OpVoid
	OpTypeof

	// Comparison
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpEqual
	OpNotEqual
	OpStrictEqual
	OpStrictNotEqual
	OpIn
	OpInstanceof

	// Pre/post incr/decr
	OpPreIncr
	OpPreDecr
	OpPostIncr
	OpPostDecr

	// Property access
	OpPropGet
	OpPropReference
	OpPropDelete
	OpDelete

	OpThrow

	// Control flow
	OpJump
	OpBranchIfTrue
	OpBranchIfFalse
	OpBranchIfLogicalTrue
	OpBranchIfLogicalFalse
	OpBranchIfStrictEqual

	// Blocks & scopes
	OpBlockCreateContext
	OpWith
	OpCloneContext

	// Iteration
	OpForInCreateContext
	OpForInGetNext
	OpForInHasNext
	OpForOfCreateContext
	OpForOfGetNext
	OpForOfHasNext

	// Try/catch/finally
	OpTry
	OpCatch
	OpFinally
	OpContextEnd

	// Call/construct/super
	OpCall
	OpConstruct
	OpSuperCall
	OpSpreadNew
	OpSpreadCall
	OpSpreadCallProp
	OpSpreadSuperCall
	OpPushSuperConstructor
	OpSuperReference
	OpResolveLexicalThis
	OpResolveBaseForCall

	// Iterator/rest/destructuring
	OpGetIterator
	OpIteratorStep
	OpIteratorStep1
	OpIteratorStep2
	OpIteratorStep3
	OpIteratorClose
	OpDefaultInitializer
	OpRestInitializer
	OpInitializerPushProp
	OpRequireObjectCoercible

	// Return family
	OpReturn
	OpReturnWithBlock
	OpReturnWithLiteral
	OpExtReturn
	OpReturnPromise

	// Generators / async
	OpCreateGenerator
	OpYield
	OpAwait

	// Spread args
	OpSpreadArguments

	opCodeCount
)

// --- Extended opcode space ------------------------------------------

type ExtOp uint8

const (
	ExtError ExtOp = iota // synthetic (EXT_OPCODE, EXT_ERROR) sequence for deferred-error re-entry
	ExtPushClassEnvironment
	ExtInitClass
	ExtFinalizeClass
	ExtPushImplicitCtor

	extOpCount
)

// OperandShape records an opcode's operand layout. It is descriptive
// only: dispatch has no generic operand-fetch prologue, and each opcode's
// case decodes its own operands.
type OperandShape uint8

const (
	ShapeNone OperandShape = iota
	ShapeStack
	ShapeStackStack
	ShapeLiteral
	ShapeLiteralLiteral
	ShapeStackLiteral
	ShapeThisLiteral
	ShapeBranch
)

// PutDisposition records where an opcode's result goes. It is
// descriptive only: each opcode's case pushes or stores its own result.
type PutDisposition uint8

const (
	PutNone PutDisposition = iota
	PutStack
	PutBlock
	PutIdent
	PutReference
)

// OpFlags carries auxiliary per-opcode bits; dispatch's loop checks
// FlagBackwardBranch before running an opcode.
type OpFlags uint8

const (
	FlagBackwardBranch OpFlags = 1 << iota
	FlagNonStatic
)

// DecodeEntry is one row of the flat decode table: operand shape, put
// disposition, and auxiliary flags. dispatch.go's switch on OpCode plays
// the role a separate "group index" column would otherwise play; the
// switch cases fetch operands and route results themselves, and only
// Flags is read at run time.
type DecodeEntry struct {
	Shape OperandShape
	Put   PutDisposition
	Flags OpFlags
}
