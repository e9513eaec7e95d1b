package vm

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// literalTag discriminates one entry of a .pvmb literal table. Register
// slots (literal index < register_end) carry no table entry at all —
// the decoder skips straight past them, matching codeunit.go's own
// LiteralIsRegister split.
type literalTag byte

const (
	litInt literalTag = iota
	litFloat
	litString
	litBool
	litNull
	litUndefined
	litFunc // sub-function code unit, recursively encoded
)

// DecodeCodeUnit reads one code unit from a .pvmb stream: the
// small/large-arg header described in §6.1, the literal table, then the
// raw opcode bytes. Sub-function literals recurse into the same
// decoder, so a whole program's nested function tree is one call.
func DecodeCodeUnit(r io.Reader) (*CodeUnit, error) {
	var statusFlags uint16
	if err := binary.Read(r, binary.BigEndian, &statusFlags); err != nil {
		return nil, fmt.Errorf("pvmb: reading status_flags: %w", err)
	}
	status := StatusFlag(statusFlags)
	wide := status.Has(FlagUint16ArgForm)

	readEnd := func() (int, error) {
		if wide {
			var v uint16
			err := binary.Read(r, binary.BigEndian, &v)
			return int(v), err
		}
		var v uint8
		err := binary.Read(r, binary.BigEndian, &v)
		return int(v), err
	}

	argumentEnd, err := readEnd()
	if err != nil {
		return nil, fmt.Errorf("pvmb: reading argument_end: %w", err)
	}
	registerEnd, err := readEnd()
	if err != nil {
		return nil, fmt.Errorf("pvmb: reading register_end: %w", err)
	}
	identEnd, err := readEnd()
	if err != nil {
		return nil, fmt.Errorf("pvmb: reading ident_end: %w", err)
	}
	constLiteralEnd, err := readEnd()
	if err != nil {
		return nil, fmt.Errorf("pvmb: reading const_literal_end: %w", err)
	}
	literalEnd, err := readEnd()
	if err != nil {
		return nil, fmt.Errorf("pvmb: reading literal_end: %w", err)
	}
	var stackLimit uint16
	if err := binary.Read(r, binary.BigEndian, &stackLimit); err != nil {
		return nil, fmt.Errorf("pvmb: reading stack_limit: %w", err)
	}

	var nameLen uint16
	if err := binary.Read(r, binary.BigEndian, &nameLen); err != nil {
		return nil, fmt.Errorf("pvmb: reading name length: %w", err)
	}
	nameBytes := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return nil, fmt.Errorf("pvmb: reading name: %w", err)
	}

	unit := &CodeUnit{
		Status:          status,
		ArgumentEnd:     argumentEnd,
		RegisterEnd:     registerEnd,
		IdentEnd:        identEnd,
		ConstLiteralEnd: constLiteralEnd,
		LiteralEnd:      literalEnd,
		StackLimit:      int(stackLimit),
		Name:            string(nameBytes),
		Literals:        make([]Value, literalEnd),
	}

	for idx := 0; idx < literalEnd; idx++ {
		switch {
		case unit.LiteralIsRegister(idx):
			// no table entry; Literals[idx] stays the zero Value
		case unit.LiteralIsIdent(idx):
			s, err := readPString(r)
			if err != nil {
				return nil, fmt.Errorf("pvmb: reading ident literal %d: %w", idx, err)
			}
			unit.Literals[idx] = MakeString(s)
		case unit.LiteralIsConst(idx):
			v, err := decodeLiteralValue(r)
			if err != nil {
				return nil, fmt.Errorf("pvmb: reading const literal %d: %w", idx, err)
			}
			unit.Literals[idx] = v
		default: // sub-function literal
			sub, err := DecodeCodeUnit(r)
			if err != nil {
				return nil, fmt.Errorf("pvmb: reading function literal %d: %w", idx, err)
			}
			unit.Funcs = append(unit.Funcs, sub)
		}
	}

	var codeLen uint32
	if err := binary.Read(r, binary.BigEndian, &codeLen); err != nil {
		return nil, fmt.Errorf("pvmb: reading code length: %w", err)
	}
	unit.Code = make([]byte, codeLen)
	if _, err := io.ReadFull(r, unit.Code); err != nil {
		return nil, fmt.Errorf("pvmb: reading code bytes: %w", err)
	}

	var lineCount uint32
	if err := binary.Read(r, binary.BigEndian, &lineCount); err != nil {
		return nil, fmt.Errorf("pvmb: reading source-line table length: %w", err)
	}
	if lineCount > 0 {
		unit.SourceLine = make([]int, lineCount)
		for i := range unit.SourceLine {
			var line uint32
			if err := binary.Read(r, binary.BigEndian, &line); err != nil {
				return nil, fmt.Errorf("pvmb: reading source line %d: %w", i, err)
			}
			unit.SourceLine[i] = int(line)
		}
	}

	return unit, nil
}

func decodeLiteralValue(r io.Reader) (Value, error) {
	var tag byte
	if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
		return Undefined(), err
	}
	switch literalTag(tag) {
	case litInt:
		var n int32
		err := binary.Read(r, binary.BigEndian, &n)
		return MakeInt(n), err
	case litFloat:
		var bits uint64
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return Undefined(), err
		}
		return MakeFloat(math.Float64frombits(bits)), nil
	case litString:
		s, err := readPString(r)
		return MakeString(s), err
	case litBool:
		var b byte
		err := binary.Read(r, binary.BigEndian, &b)
		return MakeBool(b != 0), err
	case litNull:
		return Null(), nil
	case litUndefined:
		return Undefined(), nil
	default:
		return Undefined(), fmt.Errorf("pvmb: unknown literal tag %d", tag)
	}
}

// readPString reads a length-prefixed (uint32) UTF-8 string.
func readPString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
