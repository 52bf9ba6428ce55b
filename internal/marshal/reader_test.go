package marshal

import (
	"bytes"
	"encoding/binary"
	"testing"

	"pyrt/internal/object"
)

func u32le(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func buildHeader(magic uint16) []byte {
	var buf bytes.Buffer
	m := make([]byte, 2)
	binary.LittleEndian.PutUint16(m, magic)
	buf.Write(m)
	nl := make([]byte, 2)
	binary.LittleEndian.PutUint16(nl, 0x0a0d)
	buf.Write(nl)
	buf.Write(u32le(0))          // flags
	buf.Write(u32le(1234567890)) // timestamp
	buf.Write(u32le(42))         // source_size
	return buf.Bytes()
}

func TestReadHeaderDialectA(t *testing.T) {
	data := buildHeader(uint16(DialectA))
	h, err := ReadHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadHeader error: %v", err)
	}
	if h.Dialect != DialectA || h.SourceSize != 42 {
		t.Fatalf("got %+v", h)
	}
}

func TestReadHeaderRejectsBadMagic(t *testing.T) {
	data := buildHeader(0xBEEF)
	if _, err := ReadHeader(bytes.NewReader(data)); err == nil {
		t.Fatal("expected an error for an unrecognised magic number")
	}
}

func TestReadObjectPrimitives(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(tagNone)
	buf.WriteByte(tagTrue)
	buf.WriteByte(tagFalse)
	buf.WriteByte(tagInt)
	buf.Write(u32le(uint32(int32(-7))))
	buf.WriteByte(tagShortASCII)
	buf.WriteByte(5)
	buf.WriteString("hello")

	r := NewReader(&buf, DialectA)
	none, err := r.ReadObject()
	if err != nil || !object.IsNone(none) {
		t.Fatalf("None: got %v, err %v", none, err)
	}
	tru, _ := r.ReadObject()
	if tru != object.Bool(true) {
		t.Fatalf("True: got %v", tru)
	}
	fls, _ := r.ReadObject()
	if fls != object.Bool(false) {
		t.Fatalf("False: got %v", fls)
	}
	n, err := r.ReadObject()
	if err != nil || n != object.Int(-7) {
		t.Fatalf("Int: got %v, err %v", n, err)
	}
	s, err := r.ReadObject()
	if err != nil || s != object.Str("hello") {
		t.Fatalf("Str: got %v, err %v", s, err)
	}
}

func TestReadObjectTupleAndRef(t *testing.T) {
	var buf bytes.Buffer
	// An interned short ASCII string, referenced twice via tagRef.
	buf.WriteByte(tagSmallTuple)
	buf.WriteByte(2)
	buf.WriteByte(tagShortASCII | flagRef)
	buf.WriteByte(3)
	buf.WriteString("abc")
	buf.WriteByte(tagRef)
	buf.Write(u32le(0))

	r := NewReader(&buf, DialectA)
	v, err := r.ReadObject()
	if err != nil {
		t.Fatalf("ReadObject error: %v", err)
	}
	tup, ok := v.(object.Tuple)
	if !ok || len(tup) != 2 {
		t.Fatalf("got %#v, want a 2-tuple", v)
	}
	if tup[0] != object.Str("abc") || tup[1] != object.Str("abc") {
		t.Fatalf("expected both slots to read back 'abc', got %v", tup)
	}
}

func TestReadObjectContainers(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(tagList)
	buf.Write(u32le(2))
	buf.WriteByte(tagInt)
	buf.Write(u32le(uint32(int32(1))))
	buf.WriteByte(tagInt)
	buf.Write(u32le(uint32(int32(2))))

	r := NewReader(&buf, DialectA)
	v, err := r.ReadObject()
	if err != nil {
		t.Fatalf("ReadObject error: %v", err)
	}
	list, ok := v.(*object.List)
	if !ok || len(list.Items) != 2 {
		t.Fatalf("got %#v, want a 2-element list", v)
	}
}

func TestReadLongBeyondInt64(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(tagLong)
	buf.Write(u32le(5)) // 5 digits (75 bits), positive: guaranteed to overflow int64
	digits := []uint16{0x7fff, 0x7fff, 0x7fff, 0x7fff, 0x7fff}
	for _, d := range digits {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, d)
		buf.Write(b)
	}
	r := NewReader(&buf, DialectA)
	v, err := r.ReadObject()
	if err != nil {
		t.Fatalf("ReadObject error: %v", err)
	}
	big, ok := v.(object.BigInt)
	if !ok {
		t.Fatalf("got %#v, want a BigInt", v)
	}
	if big.V.Sign() <= 0 {
		t.Fatalf("expected a positive big integer, got %v", big.V)
	}
}

func TestReadModuleCodeObject(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeader(uint16(DialectA)))

	buf.WriteByte(tagCode)
	buf.Write(u32le(1)) // argCount
	buf.Write(u32le(0)) // posOnly
	buf.Write(u32le(0)) // kwOnly
	buf.Write(u32le(1)) // nLocals
	buf.Write(u32le(2)) // stackSize
	buf.Write(u32le(1)) // flags (FlagOptimized)
	buf.Write(u32le(1)) // firstLine

	codeBytes := []byte{0, 0} // one POP_TOP instruction pair, never executed
	buf.Write(u32le(uint32(len(codeBytes))))
	buf.Write(codeBytes)

	buf.Write(u32le(0)) // consts: empty
	buf.Write(u32le(0)) // names: empty

	buf.Write(u32le(1)) // varnames: 1
	buf.WriteByte(tagShortASCII)
	buf.WriteByte(1)
	buf.WriteString("x")

	buf.Write(u32le(0)) // freevars: empty
	buf.Write(u32le(0)) // cellvars: empty

	buf.WriteByte(tagShortASCII) // name
	buf.WriteByte(4)
	buf.WriteString("func")
	buf.WriteByte(tagShortASCII) // qualname
	buf.WriteByte(4)
	buf.WriteString("func")
	buf.WriteByte(tagShortASCII) // filename
	buf.WriteByte(5)
	buf.WriteString("t.pyc")

	buf.Write(u32le(0)) // line table: empty

	_, code, err := ReadModule(&buf)
	if err != nil {
		t.Fatalf("ReadModule error: %v", err)
	}
	if code.Name != "func" || code.ArgCount != 1 || code.NLocals != 1 {
		t.Fatalf("got %+v", code)
	}
	if len(code.VarNames) != 1 || code.VarNames[0] != "x" {
		t.Fatalf("varnames = %v", code.VarNames)
	}
}
