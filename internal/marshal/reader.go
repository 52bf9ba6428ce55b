// Package marshal implements the compiled-file reader (spec.md §4.11,
// component J): a header plus a marshalled object tree, decoded into
// code objects and the ordinary value carriers of package object.
package marshal

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"math/big"

	"pyrt/internal/bytecode"
	"pyrt/internal/errtypes"
	"pyrt/internal/object"
)

// Dialect distinguishes the two compiled-file magic numbers this core
// recognises (spec.md §6 "Magic numbers the core recognises").
type Dialect int

const (
	DialectA Dialect = 0x0D55 // 3413 decimal, conceptually the 3.8 dialect
	DialectB Dialect = 0x0DA7 // 3495 decimal, conceptually the 3.11 dialect
)

// Header is the fixed 16-byte prologue of a compiled file (spec.md §6
// "Compiled file"). Timestamp/SourceSize/Flags are carried through
// unchecked, matching "three 4-byte values it does not interpret".
type Header struct {
	Dialect    Dialect
	Flags      uint32
	Timestamp  uint32
	SourceSize uint32
}

// ReadHeader validates the magic/newline-safe constant and returns the
// recognised dialect, or a compatibility error for any other magic
// (spec.md §6: "Other values: abort with a compatibility error").
func ReadHeader(r io.Reader) (*Header, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errtypes.FatalWrap(err, "reading compiled-file header")
	}
	magic := binary.LittleEndian.Uint16(buf[0:2])
	newline := binary.LittleEndian.Uint16(buf[2:4])
	if newline != 0x0a0d {
		return nil, errtypes.Fatal("bad compiled-file newline marker %#04x", newline)
	}
	d := Dialect(magic)
	if d != DialectA && d != DialectB {
		return nil, errtypes.Fatal("unrecognised compiled-file magic %#04x", magic)
	}
	return &Header{
		Dialect:    d,
		Flags:      binary.LittleEndian.Uint32(buf[4:8]),
		Timestamp:  binary.LittleEndian.Uint32(buf[8:12]),
		SourceSize: binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

// Type tags, one byte each; the high bit (flagRef) marks "intern this
// object" (spec.md §4.11 "high bit indicating intern this object").
const (
	flagRef = 0x80

	tagNone          = 'N'
	tagFalse         = 'F'
	tagTrue          = 'T'
	tagInt           = 'i'
	tagLong          = 'l'
	tagBinaryFloat   = 'g'
	tagShortASCII    = 'z'
	tagASCII         = 'a'
	tagString        = 's'
	tagSmallTuple    = ')'
	tagTuple         = '('
	tagList          = '['
	tagDict          = '{'
	tagSet           = '<'
	tagFrozenSet     = '>'
	tagCode          = 'c'
	tagRef           = 'r'
)

// Reader decodes one marshalled object tree, preserving identity for
// objects tagged with flagRef via an index-addressable interning table
// (spec.md §4.11 "reference tag re-emits a previously interned object").
type Reader struct {
	r      *bufio.Reader
	dialect Dialect
	refs   []object.Value
}

func NewReader(r io.Reader, dialect Dialect) *Reader {
	return &Reader{r: bufio.NewReader(r), dialect: dialect}
}

func (m *Reader) byte() (byte, error) {
	b, err := m.r.ReadByte()
	if err != nil {
		return 0, errtypes.FatalWrap(err, "reading marshal tag")
	}
	return b, nil
}

func (m *Reader) u32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(m.r, buf[:]); err != nil {
		return 0, errtypes.FatalWrap(err, "reading marshal uint32")
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (m *Reader) bytesN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(m.r, buf); err != nil {
		return nil, errtypes.FatalWrap(err, "reading marshal bytes")
	}
	return buf, nil
}

// intern appends an already-decoded v to the reference table.
// ReadObject does not use it: it reserves its slot before recursing into
// an object's children, so slot numbers follow tag order; a reference
// to an object whose decoding has not finished yields nil.
func (m *Reader) intern(v object.Value) object.Value {
	m.refs = append(m.refs, v)
	return v
}

// ReadObject decodes one tagged value, recursing for composite types.
func (m *Reader) ReadObject() (object.Value, error) {
	tag, err := m.byte()
	if err != nil {
		return nil, err
	}
	interned := tag&flagRef != 0
	base := tag &^ flagRef

	var slot int
	if interned {
		slot = len(m.refs)
		m.refs = append(m.refs, nil) // reserved, filled in below
	}

	v, err := m.readBody(base)
	if err != nil {
		return nil, err
	}
	if interned {
		m.refs[slot] = v
	}
	return v, nil
}

func (m *Reader) readBody(base byte) (object.Value, error) {
	switch base {
	case tagNone:
		return object.None, nil
	case tagFalse:
		return object.Bool(false), nil
	case tagTrue:
		return object.Bool(true), nil

	case tagInt:
		n, err := m.u32()
		if err != nil {
			return nil, err
		}
		return object.Int(int32(n)), nil

	case tagLong:
		return m.readLong()

	case tagBinaryFloat:
		buf, err := m.bytesN(8)
		if err != nil {
			return nil, err
		}
		bits := binary.LittleEndian.Uint64(buf)
		return object.Float(math.Float64frombits(bits)), nil

	case tagShortASCII:
		n, err := m.byte()
		if err != nil {
			return nil, err
		}
		buf, err := m.bytesN(int(n))
		if err != nil {
			return nil, err
		}
		return object.Str(buf), nil

	case tagASCII, tagString:
		n, err := m.u32()
		if err != nil {
			return nil, err
		}
		buf, err := m.bytesN(int(n))
		if err != nil {
			return nil, err
		}
		return object.Str(buf), nil

	case tagSmallTuple:
		n, err := m.byte()
		if err != nil {
			return nil, err
		}
		return m.readTuple(int(n))

	case tagTuple:
		n, err := m.u32()
		if err != nil {
			return nil, err
		}
		return m.readTuple(int(n))

	case tagList:
		n, err := m.u32()
		if err != nil {
			return nil, err
		}
		items := make([]object.Value, n)
		for i := range items {
			v, err := m.ReadObject()
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return object.NewList(items...), nil

	case tagDict:
		d := object.NewDict()
		for {
			tag, err := m.byte()
			if err != nil {
				return nil, err
			}
			if tag == 0 { // terminator: a bare null tag closes the dict
				break
			}
			var keySlot int
			keyInterned := tag&flagRef != 0
			if keyInterned {
				keySlot = len(m.refs)
				m.refs = append(m.refs, nil)
			}
			key, err := m.readBody(tag &^ flagRef)
			if err != nil {
				return nil, err
			}
			if keyInterned {
				m.refs[keySlot] = key
			}
			val, err := m.ReadObject()
			if err != nil {
				return nil, err
			}
			d.Set(key, val)
		}
		return d, nil

	case tagSet, tagFrozenSet:
		n, err := m.u32()
		if err != nil {
			return nil, err
		}
		items := make([]object.Value, n)
		for i := range items {
			v, err := m.ReadObject()
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return object.NewSet(items...), nil

	case tagCode:
		return m.readCode()

	case tagRef:
		idx, err := m.u32()
		if err != nil {
			return nil, err
		}
		if int(idx) >= len(m.refs) {
			return nil, errtypes.Fatal("marshal reference %d out of range", idx)
		}
		return m.refs[idx], nil

	default:
		return nil, errtypes.Fatal("unknown marshal type tag %q", base)
	}
}

func (m *Reader) readTuple(n int) (object.Value, error) {
	items := make(object.Tuple, n)
	for i := range items {
		v, err := m.ReadObject()
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return items, nil
}

// readLong decodes a variable-length integer as a sequence of 15-bit
// digits (base 2**15), little-digit-first, with the sign carried by the
// digit count, matching the source runtime's arbitrary-precision long
// encoding.
func (m *Reader) readLong() (object.Value, error) {
	n, err := m.u32()
	if err != nil {
		return nil, err
	}
	count := int32(n)
	negative := count < 0
	if negative {
		count = -count
	}
	acc := big.NewInt(0)
	digit := new(big.Int)
	for i := int32(0); i < count; i++ {
		buf, err := m.bytesN(2)
		if err != nil {
			return nil, err
		}
		d := uint32(buf[0]) | uint32(buf[1])<<8
		digit.SetUint64(uint64(d))
		digit.Lsh(digit, uint(15*i))
		acc.Add(acc, digit)
	}
	if negative {
		acc.Neg(acc)
	}
	if acc.IsInt64() {
		return object.Int(acc.Int64()), nil
	}
	return object.BigInt{V: acc}, nil
}

// readCode decodes a code object. Field order is fixed by this core's
// own compiler contract (spec.md leaves the exact on-disk code-object
// field order to the implementation, naming only the fields a code
// object must carry).
func (m *Reader) readCode() (object.Value, error) {
	argCount, err := m.u32()
	if err != nil {
		return nil, err
	}
	posOnly, err := m.u32()
	if err != nil {
		return nil, err
	}
	kwOnly, err := m.u32()
	if err != nil {
		return nil, err
	}
	nLocals, err := m.u32()
	if err != nil {
		return nil, err
	}
	stackSize, err := m.u32()
	if err != nil {
		return nil, err
	}
	flags, err := m.u32()
	if err != nil {
		return nil, err
	}
	firstLine, err := m.u32()
	if err != nil {
		return nil, err
	}

	codeBytesLen, err := m.u32()
	if err != nil {
		return nil, err
	}
	codeBytes, err := m.bytesN(int(codeBytesLen))
	if err != nil {
		return nil, err
	}

	consts, err := m.readObjectSlice()
	if err != nil {
		return nil, err
	}
	names, err := m.readStringSlice()
	if err != nil {
		return nil, err
	}
	varNames, err := m.readStringSlice()
	if err != nil {
		return nil, err
	}
	freeVars, err := m.readStringSlice()
	if err != nil {
		return nil, err
	}
	cellVars, err := m.readStringSlice()
	if err != nil {
		return nil, err
	}

	name, err := m.readPyString()
	if err != nil {
		return nil, err
	}
	qualName, err := m.readPyString()
	if err != nil {
		return nil, err
	}
	fileName, err := m.readPyString()
	if err != nil {
		return nil, err
	}

	lineTable, err := m.readLineTable()
	if err != nil {
		return nil, err
	}

	return &bytecode.CodeObject{
		Name:         name,
		QualName:     qualName,
		FileName:     fileName,
		FirstLine:    int(firstLine),
		ArgCount:     int(argCount),
		PosOnlyCount: int(posOnly),
		KwOnlyCount:  int(kwOnly),
		NLocals:      int(nLocals),
		StackSize:    int(stackSize),
		Flags:        bytecode.Flags(flags),
		Code:         codeBytes,
		Consts:       consts,
		Names:        names,
		VarNames:     varNames,
		FreeVars:     freeVars,
		CellVars:     cellVars,
		LineTable:    lineTable,
	}, nil
}

func (m *Reader) readObjectSlice() ([]object.Value, error) {
	n, err := m.u32()
	if err != nil {
		return nil, err
	}
	out := make([]object.Value, n)
	for i := range out {
		v, err := m.ReadObject()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *Reader) readStringSlice() ([]string, error) {
	n, err := m.u32()
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		s, err := m.readPyString()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (m *Reader) readPyString() (string, error) {
	v, err := m.ReadObject()
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case object.Str:
		return string(s), nil
	case object.NoneType:
		return "", nil
	default:
		return "", errtypes.Fatal("expected a string in code-object metadata, got %T", v)
	}
}

func (m *Reader) readLineTable() ([]bytecode.LineEntry, error) {
	n, err := m.u32()
	if err != nil {
		return nil, err
	}
	out := make([]bytecode.LineEntry, n)
	for i := range out {
		offset, err := m.u32()
		if err != nil {
			return nil, err
		}
		line, err := m.u32()
		if err != nil {
			return nil, err
		}
		out[i] = bytecode.LineEntry{StartOffset: int(offset), Line: int(line)}
	}
	return out, nil
}

// ReadModule reads a full compiled file: header followed by a single
// top-level code object (spec.md §4.11's "companion result dictionary
// for test fixtures" is assembled by the caller from the returned
// object, not by this reader).
func ReadModule(r io.Reader) (*Header, *bytecode.CodeObject, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, nil, err
	}
	reader := NewReader(r, header.Dialect)
	v, err := reader.ReadObject()
	if err != nil {
		return nil, nil, err
	}
	code, ok := v.(*bytecode.CodeObject)
	if !ok {
		return nil, nil, errtypes.Fatal("compiled file's top-level object is not a code object")
	}
	return header, code, nil
}
