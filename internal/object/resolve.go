package object

// This file exposes resolveSlot (slots.go) as one named function per
// slot, which is what package ops and package cache call to find the
// handle that should run for a given operand — MRO-aware, adoption-aware.

func ResolveHash(v Value) HashOp   { return resolveSlot(v, func(s *SlotTable) HashOp { return s.Hash }, sentinelHash) }
func ResolveRepr(v Value) UnaryOp  { return resolveSlot(v, func(s *SlotTable) UnaryOp { return s.Repr }, sentinelRepr) }
func ResolveStr(v Value) UnaryOp   { return resolveSlot(v, func(s *SlotTable) UnaryOp { return s.Str }, sentinelStr) }
func ResolveCall(v Value) CallOp   { return resolveSlot(v, func(s *SlotTable) CallOp { return s.Call }, sentinelCall) }
func ResolveGetAttribute(v Value) GetAttrOp {
	return resolveSlot(v, func(s *SlotTable) GetAttrOp { return s.GetAttribute }, sentinelGetAttribute)
}
func ResolveSetAttr(v Value) SetAttrOp {
	return resolveSlot(v, func(s *SlotTable) SetAttrOp { return s.SetAttr }, sentinelSetAttr)
}
func ResolveDelAttr(v Value) DelAttrOp {
	return resolveSlot(v, func(s *SlotTable) DelAttrOp { return s.DelAttr }, sentinelDelAttr)
}
func ResolveRichCompare(v Value) RichCmpOp {
	return resolveSlot(v, func(s *SlotTable) RichCmpOp { return s.RichCompare }, sentinelRichCompare)
}

func ResolveNeg(v Value) UnaryOp    { return resolveSlot(v, func(s *SlotTable) UnaryOp { return s.Neg }, sentinelNeg) }
func ResolvePos(v Value) UnaryOp    { return resolveSlot(v, func(s *SlotTable) UnaryOp { return s.Pos }, sentinelPos) }
func ResolveAbs(v Value) UnaryOp    { return resolveSlot(v, func(s *SlotTable) UnaryOp { return s.Abs }, sentinelAbs) }
func ResolveInvert(v Value) UnaryOp { return resolveSlot(v, func(s *SlotTable) UnaryOp { return s.Invert }, sentinelInvert) }
func ResolveFloatConv(v Value) UnaryOp { return resolveSlot(v, func(s *SlotTable) UnaryOp { return s.Float }, sentinelFloat) }
func ResolveIntConv(v Value) UnaryOp   { return resolveSlot(v, func(s *SlotTable) UnaryOp { return s.Int }, sentinelInt) }
func ResolveBoolConv(v Value) UnaryOp  { return resolveSlot(v, func(s *SlotTable) UnaryOp { return s.Bool }, sentinelBool) }
func ResolveIndex(v Value) UnaryOp     { return resolveSlot(v, func(s *SlotTable) UnaryOp { return s.Index }, sentinelIndex) }
func ResolveIter(v Value) UnaryOp      { return resolveSlot(v, func(s *SlotTable) UnaryOp { return s.Iter }, sentinelIter) }
func ResolveNext(v Value) UnaryOp      { return resolveSlot(v, func(s *SlotTable) UnaryOp { return s.Next }, sentinelNext) }

func ResolveLen(v Value) LenOp         { return resolveSlot(v, func(s *SlotTable) LenOp { return s.Len }, sentinelLen) }
func ResolveGetItem(v Value) BinaryOp  { return resolveSlot(v, func(s *SlotTable) BinaryOp { return s.GetItem }, sentinelGetItem) }
func ResolveSetItem(v Value) SetItemOp { return resolveSlot(v, func(s *SlotTable) SetItemOp { return s.SetItem }, sentinelSetItem) }
func ResolveDelItem(v Value) DelItemOp { return resolveSlot(v, func(s *SlotTable) DelItemOp { return s.DelItem }, sentinelDelItem) }

// BinarySlotPair names a forward/reflected pair of binary number slots,
// used by package ops to implement spec.md §4.4's binary dispatch
// algorithm generically across +, -, *, /, //, %, &, |, ^, <<, >>.
type BinarySlotPair struct {
	Forward, Reflected func(*SlotTable) BinaryOp
	ForwardEmpty, ReflectedEmpty BinaryOp
}

func (p BinarySlotPair) ResolveForward(v Value) BinaryOp {
	return resolveSlot(v, p.Forward, p.ForwardEmpty)
}
func (p BinarySlotPair) ResolveReflected(v Value) BinaryOp {
	return resolveSlot(v, p.Reflected, p.ReflectedEmpty)
}

var (
	SlotsAdd      = BinarySlotPair{func(s *SlotTable) BinaryOp { return s.Add }, func(s *SlotTable) BinaryOp { return s.RAdd }, sentinelAdd, sentinelRAdd}
	SlotsSub      = BinarySlotPair{func(s *SlotTable) BinaryOp { return s.Sub }, func(s *SlotTable) BinaryOp { return s.RSub }, sentinelSub, sentinelRSub}
	SlotsMul      = BinarySlotPair{func(s *SlotTable) BinaryOp { return s.Mul }, func(s *SlotTable) BinaryOp { return s.RMul }, sentinelMul, sentinelRMul}
	SlotsTrueDiv  = BinarySlotPair{func(s *SlotTable) BinaryOp { return s.TrueDiv }, func(s *SlotTable) BinaryOp { return s.RTrueDiv }, sentinelTrueDiv, sentinelRTrueDiv}
	SlotsFloorDiv = BinarySlotPair{func(s *SlotTable) BinaryOp { return s.FloorDiv }, func(s *SlotTable) BinaryOp { return s.RFloorDiv }, sentinelFloorDiv, sentinelRFloorDiv}
	SlotsMod      = BinarySlotPair{func(s *SlotTable) BinaryOp { return s.Mod }, func(s *SlotTable) BinaryOp { return s.RMod }, sentinelMod, sentinelRMod}
	SlotsAnd      = BinarySlotPair{func(s *SlotTable) BinaryOp { return s.And }, func(s *SlotTable) BinaryOp { return s.RAnd }, sentinelAnd, sentinelRAnd}
	SlotsOr       = BinarySlotPair{func(s *SlotTable) BinaryOp { return s.Or }, func(s *SlotTable) BinaryOp { return s.ROr }, sentinelOr, sentinelROr}
	SlotsXor      = BinarySlotPair{func(s *SlotTable) BinaryOp { return s.Xor }, func(s *SlotTable) BinaryOp { return s.RXor }, sentinelXor, sentinelRXor}
	SlotsLshift   = BinarySlotPair{func(s *SlotTable) BinaryOp { return s.Lshift }, func(s *SlotTable) BinaryOp { return s.RLshift }, sentinelLshift, sentinelRLshift}
	SlotsRshift   = BinarySlotPair{func(s *SlotTable) BinaryOp { return s.Rshift }, func(s *SlotTable) BinaryOp { return s.RRshift }, sentinelRshift, sentinelRRshift}
	SlotsPow      = BinarySlotPair{func(s *SlotTable) BinaryOp { return s.Pow }, func(s *SlotTable) BinaryOp { return s.RPow }, sentinelPow, sentinelRPow}
	SlotsMatmul   = BinarySlotPair{func(s *SlotTable) BinaryOp { return s.Matmul }, func(s *SlotTable) BinaryOp { return s.RMatmul }, sentinelMatmul, sentinelRMatmul}
)
