package m68k

// opFunc executes one decoded MC68000 instruction against the owning CPU.
// By the time a handler runs, c.opword already holds the instruction's first
// (and for many families, only) word; handlers that need extension words or
// an immediate operand pull them off the instruction stream themselves via
// c.nextWord()/c.nextLong().
type opFunc func(*CPU)

// opcodeTable dispatches on the raw 16-bit instruction word: every one of the
// 65536 possible words has a slot, populated at init time by the per-family
// register* functions. A nil slot is an opcode this CPU does not implement,
// which the fetch loop turns into an illegal-instruction exception rather
// than a panic.
var opcodeTable [65536]opFunc

// Effective-address form bits, one per encodable (mode, reg-discriminated)
// shape. Registration code states which forms an instruction accepts as a
// union of these and lets eachEA enumerate the matching (mode, reg) pairs,
// instead of every register* function re-deriving the mode-7 sub-form
// cutoffs by hand.
const (
	eaDn        uint16 = 1 << iota // Dn
	eaAn                           // An
	eaInd                          // (An)
	eaPostInc                      // (An)+
	eaPreDec                       // -(An)
	eaDisp16                       // d16(An)
	eaIndexed                      // d8(An,Xn)
	eaAbsW                         // (xxx).W
	eaAbsL                         // (xxx).L
	eaPCDisp                       // d16(PC)
	eaPCIndexed                    // d8(PC,Xn)
	eaImm                          // #imm
)

// The instruction-set manual's addressing categories, as form unions.
const (
	eaMemAlt  = eaInd | eaPostInc | eaPreDec | eaDisp16 | eaIndexed | eaAbsW | eaAbsL
	eaDataAlt = eaDn | eaMemAlt
	eaDataAny = eaDataAlt | eaPCDisp | eaPCIndexed | eaImm
	eaAny     = eaDataAny | eaAn
	eaControl = eaInd | eaDisp16 | eaIndexed | eaAbsW | eaAbsL | eaPCDisp | eaPCIndexed
)

// eaForms pairs each form bit with the concrete field values it occupies in
// an opcode. The first seven span every register number; the mode-7 group
// pins reg to the sub-form selector.
var eaForms = [...]struct {
	bit       uint16
	mode, reg uint16
	allRegs   bool
}{
	{eaDn, 0, 0, true},
	{eaAn, 1, 0, true},
	{eaInd, 2, 0, true},
	{eaPostInc, 3, 0, true},
	{eaPreDec, 4, 0, true},
	{eaDisp16, 5, 0, true},
	{eaIndexed, 6, 0, true},
	{eaAbsW, 7, 0, false},
	{eaAbsL, 7, 1, false},
	{eaPCDisp, 7, 2, false},
	{eaPCIndexed, 7, 3, false},
	{eaImm, 7, 4, false},
}

// eachEA invokes fn for every (mode, reg) pair belonging to the given form
// union.
func eachEA(forms uint16, fn func(mode, reg uint16)) {
	for _, f := range eaForms {
		if forms&f.bit == 0 {
			continue
		}
		if !f.allRegs {
			fn(f.mode, f.reg)
			continue
		}
		for r := uint16(0); r < 8; r++ {
			fn(f.mode, r)
		}
	}
}

// eaField splits the standard effective-address field at the bottom of an
// instruction word into its mode and register halves.
func eaField(op uint16) (mode, reg uint8) {
	return uint8(op>>3) & 7, uint8(op) & 7
}

// sizeEncoding decodes the 2-bit size field most families carry at bits 7-6
// (00=Byte, 01=Word, 10=Long). MOVE and MOVEA use a different encoding and
// decode through moveSizeMap instead. The illegal value 3 maps to Size 0,
// whose Mask/SignBit collapse to zero.
func sizeEncoding(bits uint16) Size {
	return [4]Size{Byte, Word, Long, 0}[bits&3]
}
