package m68k

import "fmt"

// Mnemonic identifies a decoded instruction form. Separate byte/word/long
// variants of the same instruction get separate values so a caller never
// has to re-derive the size from the operand encoding.
type Mnemonic int

const (
	MnIllegal Mnemonic = iota
	MnLineA
	MnLineF
	MnUnknown

	MnORIb
	MnORIw
	MnORIl
	MnORItoCCR
	MnORItoSR
	MnANDIb
	MnANDIw
	MnANDIl
	MnANDItoCCR
	MnANDItoSR
	MnSUBIb
	MnSUBIw
	MnSUBIl
	MnADDIb
	MnADDIw
	MnADDIl
	MnEORIb
	MnEORIw
	MnEORIl
	MnEORItoCCR
	MnEORItoSR
	MnCMPIb
	MnCMPIw
	MnCMPIl
	MnADDQb
	MnADDQw
	MnADDQl
	MnSUBQb
	MnSUBQw
	MnSUBQl

	MnBTST
	MnBCHG
	MnBCLR
	MnBSET

	MnMOVEb
	MnMOVEw
	MnMOVEl
	MnMOVEAw
	MnMOVEAl
	MnMOVEtoCCR
	MnMOVEfromCCR
	MnMOVEtoSR
	MnMOVEfromSR
	MnMOVEtoUSP
	MnMOVEfromUSP
	MnMOVEQ
	MnMOVEPw
	MnMOVEPl
	MnMOVEMw
	MnMOVEMl
	MnLEA
	MnPEA
	MnEXG
	MnSWAP

	MnCLRb
	MnCLRw
	MnCLRl
	MnNEGb
	MnNEGw
	MnNEGl
	MnNEGXb
	MnNEGXw
	MnNEGXl
	MnNOTb
	MnNOTw
	MnNOTl
	MnTSTb
	MnTSTw
	MnTSTl
	MnTAS
	MnEXTw
	MnEXTl
	MnCHK

	MnANDb
	MnANDw
	MnANDl
	MnORb
	MnORw
	MnORl
	MnEORb
	MnEORw
	MnEORl

	MnADDb
	MnADDw
	MnADDl
	MnADDAw
	MnADDAl
	MnADDXb
	MnADDXw
	MnADDXl
	MnSUBb
	MnSUBw
	MnSUBl
	MnSUBAw
	MnSUBAl
	MnSUBXb
	MnSUBXw
	MnSUBXl
	MnCMPb
	MnCMPw
	MnCMPl
	MnCMPAw
	MnCMPAl
	MnCMPM

	MnMULU
	MnMULS
	MnDIVU
	MnDIVS

	MnABCD
	MnSBCD
	MnNBCD

	MnASLb
	MnASLw
	MnASLl
	MnASRb
	MnASRw
	MnASRl
	MnLSLb
	MnLSLw
	MnLSLl
	MnLSRb
	MnLSRw
	MnLSRl
	MnROLb
	MnROLw
	MnROLl
	MnRORb
	MnRORw
	MnRORl
	MnROXLb
	MnROXLw
	MnROXLl
	MnROXRb
	MnROXRw
	MnROXRl

	MnBRA
	MnBSR
	MnBcc
	MnDBcc
	MnScc
	MnJMP
	MnJSR
	MnRTS
	MnRTE
	MnRTR

	MnNOP
	MnSTOP
	MnRESET
	MnTRAP
	MnTRAPV
	MnLINK
	MnUNLK
)

var mnemonicNames = map[Mnemonic]string{
	MnIllegal: "ILLEGAL", MnLineA: "(lineA)", MnLineF: "(lineF)", MnUnknown: "(unknown)",
	MnORIb: "ORI.B", MnORIw: "ORI.W", MnORIl: "ORI.L", MnORItoCCR: "ORI", MnORItoSR: "ORI",
	MnANDIb: "ANDI.B", MnANDIw: "ANDI.W", MnANDIl: "ANDI.L", MnANDItoCCR: "ANDI", MnANDItoSR: "ANDI",
	MnSUBIb: "SUBI.B", MnSUBIw: "SUBI.W", MnSUBIl: "SUBI.L",
	MnADDIb: "ADDI.B", MnADDIw: "ADDI.W", MnADDIl: "ADDI.L",
	MnEORIb: "EORI.B", MnEORIw: "EORI.W", MnEORIl: "EORI.L", MnEORItoCCR: "EORI", MnEORItoSR: "EORI",
	MnCMPIb: "CMPI.B", MnCMPIw: "CMPI.W", MnCMPIl: "CMPI.L",
	MnADDQb: "ADDQ.B", MnADDQw: "ADDQ.W", MnADDQl: "ADDQ.L",
	MnSUBQb: "SUBQ.B", MnSUBQw: "SUBQ.W", MnSUBQl: "SUBQ.L",
	MnBTST: "BTST", MnBCHG: "BCHG", MnBCLR: "BCLR", MnBSET: "BSET",
	MnMOVEb: "MOVE.B", MnMOVEw: "MOVE.W", MnMOVEl: "MOVE.L",
	MnMOVEAw: "MOVEA.W", MnMOVEAl: "MOVEA.L",
	MnMOVEtoCCR: "MOVE", MnMOVEfromCCR: "MOVE", MnMOVEtoSR: "MOVE", MnMOVEfromSR: "MOVE",
	MnMOVEtoUSP: "MOVE", MnMOVEfromUSP: "MOVE",
	MnMOVEQ: "MOVEQ", MnMOVEPw: "MOVEP.W", MnMOVEPl: "MOVEP.L",
	MnMOVEMw: "MOVEM.W", MnMOVEMl: "MOVEM.L",
	MnLEA: "LEA", MnPEA: "PEA", MnEXG: "EXG", MnSWAP: "SWAP",
	MnCLRb: "CLR.B", MnCLRw: "CLR.W", MnCLRl: "CLR.L",
	MnNEGb: "NEG.B", MnNEGw: "NEG.W", MnNEGl: "NEG.L",
	MnNEGXb: "NEGX.B", MnNEGXw: "NEGX.W", MnNEGXl: "NEGX.L",
	MnNOTb: "NOT.B", MnNOTw: "NOT.W", MnNOTl: "NOT.L",
	MnTSTb: "TST.B", MnTSTw: "TST.W", MnTSTl: "TST.L",
	MnTAS: "TAS", MnEXTw: "EXT.W", MnEXTl: "EXT.L", MnCHK: "CHK",
	MnANDb: "AND.B", MnANDw: "AND.W", MnANDl: "AND.L",
	MnORb: "OR.B", MnORw: "OR.W", MnORl: "OR.L",
	MnEORb: "EOR.B", MnEORw: "EOR.W", MnEORl: "EOR.L",
	MnADDb: "ADD.B", MnADDw: "ADD.W", MnADDl: "ADD.L",
	MnADDAw: "ADDA.W", MnADDAl: "ADDA.L",
	MnADDXb: "ADDX.B", MnADDXw: "ADDX.W", MnADDXl: "ADDX.L",
	MnSUBb: "SUB.B", MnSUBw: "SUB.W", MnSUBl: "SUB.L",
	MnSUBAw: "SUBA.W", MnSUBAl: "SUBA.L",
	MnSUBXb: "SUBX.B", MnSUBXw: "SUBX.W", MnSUBXl: "SUBX.L",
	MnCMPb: "CMP.B", MnCMPw: "CMP.W", MnCMPl: "CMP.L",
	MnCMPAw: "CMPA.W", MnCMPAl: "CMPA.L", MnCMPM: "CMPM",
	MnMULU: "MULU", MnMULS: "MULS", MnDIVU: "DIVU", MnDIVS: "DIVS",
	MnABCD: "ABCD", MnSBCD: "SBCD", MnNBCD: "NBCD",
	MnASLb: "ASL.B", MnASLw: "ASL.W", MnASLl: "ASL.L",
	MnASRb: "ASR.B", MnASRw: "ASR.W", MnASRl: "ASR.L",
	MnLSLb: "LSL.B", MnLSLw: "LSL.W", MnLSLl: "LSL.L",
	MnLSRb: "LSR.B", MnLSRw: "LSR.W", MnLSRl: "LSR.L",
	MnROLb: "ROL.B", MnROLw: "ROL.W", MnROLl: "ROL.L",
	MnRORb: "ROR.B", MnRORw: "ROR.W", MnRORl: "ROR.L",
	MnROXLb: "ROXL.B", MnROXLw: "ROXL.W", MnROXLl: "ROXL.L",
	MnROXRb: "ROXR.B", MnROXRw: "ROXR.W", MnROXRl: "ROXR.L",
	MnBRA: "BRA", MnBSR: "BSR", MnBcc: "Bcc", MnDBcc: "DBcc", MnScc: "Scc",
	MnJMP: "JMP", MnJSR: "JSR", MnRTS: "RTS", MnRTE: "RTE", MnRTR: "RTR",
	MnNOP: "NOP", MnSTOP: "STOP", MnRESET: "RESET", MnTRAP: "TRAP", MnTRAPV: "TRAPV",
	MnLINK: "LINK", MnUNLK: "UNLK",
}

func (m Mnemonic) String() string {
	if s, ok := mnemonicNames[m]; ok {
		return s
	}
	return "???"
}

// conditionNames maps the 4-bit condition field to the suffix used when
// rendering Bcc/DBcc/Scc mnemonics (the table mnemonic itself is the
// generic MnBcc/MnDBcc/MnScc; this is purely for display).
var conditionNames = [16]string{
	"T", "F", "HI", "LS", "CC", "CS", "NE", "EQ",
	"VC", "VS", "PL", "MI", "GE", "LT", "GT", "LE",
}

// OperandKind tags the shape of an Operand value.
type OperandKind int

const (
	OpNone OperandKind = iota
	OpDN
	OpAN
	OpPAN     // (An)
	OpPANi    // (An)+
	OpPANd    // -(An)
	OpPD16AN  // d16(An)
	OpPD8ANXN // d8(An,Xn)
	OpPW      // abs.W
	OpPL      // abs.L
	OpPD16PC  // d16(PC)
	OpPD8PCXN // d8(PC,Xn)
	OpImmB
	OpImmW
	OpImmL
	OpSR
	OpCCR
	OpUSP
	OpVector
	OpList
	OpLabel
	OpDisp16
	OpCount
)

// Operand is a tagged decoded operand. Only the fields relevant to Kind
// are meaningful.
type Operand struct {
	Kind  OperandKind
	Reg   uint8  // register number, for Dn/An/index-register forms
	Index uint8  // index register number, for d8(An,Xn)/d8(PC,Xn)
	IndexIsAddr bool
	IndexIsLong bool
	Disp  int32  // displacement, for d16/d8 forms and branch targets
	Addr  uint32 // resolved absolute address, for abs.W/abs.L/PC-relative/labels
	Imm   uint32 // immediate value
	Mask  uint16 // MOVEM register list bitmap, raw encoding order
	Mode  uint8  // addressing mode the list mask was encoded under (for -(An) bit order)
}

func (o Operand) String() string {
	switch o.Kind {
	case OpNone:
		return ""
	case OpDN:
		return fmt.Sprintf("D%d", o.Reg)
	case OpAN:
		return fmt.Sprintf("A%d", o.Reg)
	case OpPAN:
		return fmt.Sprintf("(A%d)", o.Reg)
	case OpPANi:
		return fmt.Sprintf("(A%d)+", o.Reg)
	case OpPANd:
		return fmt.Sprintf("-(A%d)", o.Reg)
	case OpPD16AN:
		return fmt.Sprintf("%d(A%d)", o.Disp, o.Reg)
	case OpPD8ANXN:
		return fmt.Sprintf("%d(A%d,%s)", o.Disp, o.Reg, xnName(o))
	case OpPW:
		return fmt.Sprintf("$%X.W", o.Addr)
	case OpPL:
		return fmt.Sprintf("$%X.L", o.Addr)
	case OpPD16PC:
		return fmt.Sprintf("$%X(PC)", o.Addr)
	case OpPD8PCXN:
		return fmt.Sprintf("$%X(PC,%s)", o.Addr, xnName(o))
	case OpImmB, OpImmW, OpImmL:
		return fmt.Sprintf("#$%X", o.Imm)
	case OpSR:
		return "SR"
	case OpCCR:
		return "CCR"
	case OpUSP:
		return "USP"
	case OpVector:
		return fmt.Sprintf("#%d", o.Imm)
	case OpList:
		return movemListString(o.Mask, o.Mode)
	case OpLabel:
		return fmt.Sprintf("$%06X", o.Addr)
	case OpDisp16:
		return fmt.Sprintf("%d", o.Disp)
	}
	return ""
}

func xnName(o Operand) string {
	kind := "D"
	if o.IndexIsAddr {
		kind = "A"
	}
	size := ".W"
	if o.IndexIsLong {
		size = ".L"
	}
	return fmt.Sprintf("%s%d%s", kind, o.Index, size)
}

// movemListString renders a MOVEM register mask as comma-separated ranges,
// reversing the bit order when mode is the predecrement form (mode 4),
// matching how the executor itself reverses MOVEM.L -(An) masks.
func movemListString(mask uint16, mode uint8) string {
	names := make([]bool, 16)
	for i := 0; i < 16; i++ {
		bit := i
		if mode == 4 {
			bit = 15 - i
		}
		if mask&(1<<uint(bit)) != 0 {
			names[i] = true
		}
	}
	label := func(i int) string {
		if i < 8 {
			return fmt.Sprintf("D%d", i)
		}
		return fmt.Sprintf("A%d", i-8)
	}
	s := ""
	i := 0
	for i < 16 {
		if !names[i] {
			i++
			continue
		}
		start := i
		for i < 16 && names[i] {
			i++
		}
		end := i - 1
		if s != "" {
			s += "/"
		}
		if end == start {
			s += label(start)
		} else {
			s += label(start) + "-" + label(end)
		}
	}
	return s
}

// Inst is a single decoded instruction.
type Inst struct {
	Addr     uint32
	Mnemonic Mnemonic
	Cond     uint8 // condition field, valid for Bcc/DBcc/Scc
	Op1      Operand
	Op2      Operand
	Bytes    []byte
	Next     uint32
}

func (in Inst) String() string {
	mn := in.Mnemonic.String()
	switch in.Mnemonic {
	case MnBcc:
		mn = "B" + conditionNames[in.Cond]
	case MnDBcc:
		mn = "DB" + conditionNames[in.Cond]
	case MnScc:
		mn = "S" + conditionNames[in.Cond]
	}
	switch {
	case in.Op1.Kind == OpNone:
		return mn
	case in.Op2.Kind == OpNone:
		return fmt.Sprintf("%s %s", mn, in.Op1)
	default:
		return fmt.Sprintf("%s %s,%s", mn, in.Op1, in.Op2)
	}
}

// Disasm decodes instructions from a Bus without mutating CPU state. It
// shares the effective-address extension-word consumption rules with the
// executor so Decode's Next always agrees with where Step would leave PC.
type Disasm struct {
	bus Bus
	pc  uint32
	buf []byte
}

func newDisasm(bus Bus, addr uint32) *Disasm {
	return &Disasm{bus: bus, pc: addr}
}

func (d *Disasm) fetch() uint16 {
	v := uint16(d.bus.Read(Word, d.pc&0xFFFFFF))
	d.buf = append(d.buf, byte(v>>8), byte(v))
	d.pc += 2
	return v
}

func (d *Disasm) fetchLong() uint32 {
	hi := d.fetch()
	lo := d.fetch()
	return uint32(hi)<<16 | uint32(lo)
}

// decodeEA is the read-only twin of CPU.operand: it computes the same
// Operand a live EA resolution would touch, consuming exactly the same
// extension words, without reading or writing any register or memory cell
// other than the instruction stream itself.
func (d *Disasm) decodeEA(mode, reg uint8, sz Size) Operand {
	switch mode {
	case 0:
		return Operand{Kind: OpDN, Reg: reg}
	case 1:
		return Operand{Kind: OpAN, Reg: reg}
	case 2:
		return Operand{Kind: OpPAN, Reg: reg}
	case 3:
		return Operand{Kind: OpPANi, Reg: reg}
	case 4:
		return Operand{Kind: OpPANd, Reg: reg}
	case 5:
		disp := int16(d.fetch())
		return Operand{Kind: OpPD16AN, Reg: reg, Disp: int32(disp)}
	case 6:
		ext := d.fetch()
		return d.indexOperand(OpPD8ANXN, reg, ext)
	case 7:
		switch reg {
		case 0:
			addr := int16(d.fetch())
			return Operand{Kind: OpPW, Addr: uint32(int32(addr))}
		case 1:
			return Operand{Kind: OpPL, Addr: d.fetchLong()}
		case 2:
			base := d.pc
			disp := int16(d.fetch())
			return Operand{Kind: OpPD16PC, Addr: uint32(int32(base) + int32(disp))}
		case 3:
			base := d.pc
			ext := d.fetch()
			op := d.indexOperand(OpPD8PCXN, 0, ext)
			op.Addr = calcIndexValue(base, ext)
			return op
		case 4:
			switch sz {
			case Byte:
				return Operand{Kind: OpImmB, Imm: uint32(d.fetch() & 0xFF)}
			case Word:
				return Operand{Kind: OpImmW, Imm: uint32(d.fetch())}
			case Long:
				return Operand{Kind: OpImmL, Imm: d.fetchLong()}
			}
		}
	}
	return Operand{Kind: OpNone}
}

func (d *Disasm) indexOperand(kind OperandKind, reg uint8, ext uint16) Operand {
	disp := int8(ext & 0xFF)
	xn := uint8((ext >> 12) & 7)
	return Operand{
		Kind:        kind,
		Reg:         reg,
		Disp:        int32(disp),
		Index:       xn,
		IndexIsAddr: ext&0x8000 != 0,
		IndexIsLong: ext&0x0800 != 0,
	}
}

// calcIndexValue mirrors CPU.indexedAddr but only needs the displacement and
// register-number fields; register contents aren't known to a disassembler
// with no live CPU, so the rendered address uses the base (PC or An value)
// plus the 8-bit displacement only, same as objdump-style tools do when the
// index register's runtime value is unknown.
func calcIndexValue(base uint32, ext uint16) uint32 {
	disp := int32(int8(ext & 0xFF))
	return uint32(int32(base) + disp)
}

// Decode disassembles a single instruction at addr and returns the
// instruction plus the address immediately following it.
func Decode(bus Bus, addr uint32) (Inst, uint32) {
	d := newDisasm(bus, addr)
	op := d.fetch()

	in := Inst{Addr: addr}
	d.fillInst(&in, op)

	in.Bytes = d.buf
	in.Next = d.pc
	return in, d.pc
}

func (d *Disasm) fillInst(in *Inst, op uint16) {
	switch op >> 12 {
	case 0x0:
		d.decodeImmBitOps(in, op)
	case 0x1, 0x2, 0x3:
		d.decodeMove(in, op)
	case 0x4:
		d.decodeMisc(in, op)
	case 0x5:
		d.decodeAddqSubqScc(in, op)
	case 0x6:
		d.decodeBranch(in, op)
	case 0x7:
		in.Mnemonic = MnMOVEQ
		reg := uint8((op >> 9) & 7)
		in.Op1 = Operand{Kind: OpImmB, Imm: uint32(uint8(op & 0xFF))}
		in.Op2 = Operand{Kind: OpDN, Reg: reg}
	case 0x8:
		d.decodeOrDivSbcd(in, op)
	case 0x9:
		d.decodeSubFamily(in, op)
	case 0xB:
		d.decodeCmpEorFamily(in, op)
	case 0xC:
		d.decodeAndMulAbcdExg(in, op)
	case 0xD:
		d.decodeAddFamily(in, op)
	case 0xE:
		d.decodeShiftRotate(in, op)
	case 0xA:
		in.Mnemonic = MnLineA
	case 0xF:
		in.Mnemonic = MnLineF
	default:
		in.Mnemonic = MnUnknown
	}
}

func (d *Disasm) decodeImmBitOps(in *Inst, op uint16) {
	hi := (op >> 8) & 0xF
	mode := uint8((op >> 3) & 7)
	reg := uint8(op & 7)

	if op&0xF138 == 0x0108 {
		d.decodeMOVEP(in, op)
		return
	}

	switch {
	case hi == 0x0 || hi == 0x2 || hi == 0x4 || hi == 0x6 || hi == 0xA || hi == 0xC:
		szBits := (op >> 6) & 3
		var base Mnemonic
		var sz Size
		switch szBits {
		case 0:
			sz = Byte
		case 1:
			sz = Word
		case 2:
			sz = Long
		default:
			sz = Word
		}
		switch hi {
		case 0x0:
			base = pick3(MnORIb, MnORIw, MnORIl, szBits)
		case 0x2:
			base = pick3(MnANDIb, MnANDIw, MnANDIl, szBits)
		case 0x4:
			base = pick3(MnSUBIb, MnSUBIw, MnSUBIl, szBits)
		case 0x6:
			base = pick3(MnADDIb, MnADDIw, MnADDIl, szBits)
		case 0xA:
			base = pick3(MnEORIb, MnEORIw, MnEORIl, szBits)
		case 0xC:
			base = pick3(MnCMPIb, MnCMPIw, MnCMPIl, szBits)
		}
		if mode == 7 && reg == 4 {
			switch hi {
			case 0x0:
				if szBits == 0 {
					in.Mnemonic = MnORItoCCR
				} else {
					in.Mnemonic = MnORItoSR
				}
			case 0x2:
				if szBits == 0 {
					in.Mnemonic = MnANDItoCCR
				} else {
					in.Mnemonic = MnANDItoSR
				}
			case 0xA:
				if szBits == 0 {
					in.Mnemonic = MnEORItoCCR
				} else {
					in.Mnemonic = MnEORItoSR
				}
			default:
				in.Mnemonic = base
			}
			imm := d.decodeEA(7, 4, sz)
			in.Op1 = imm
			in.Op2 = Operand{Kind: OpSR}
			if szBits == 0 {
				in.Op2 = Operand{Kind: OpCCR}
			}
			return
		}
		imm := d.decodeEA(7, 4, sz)
		dst := d.decodeEA(mode, reg, sz)
		in.Mnemonic = base
		in.Op1 = imm
		in.Op2 = dst
		return
	}

	// Bit manipulation: static (#imm,EA) or dynamic (Dn,EA)
	dynamic := op&0x0100 != 0
	var bitOp Mnemonic
	switch (op >> 6) & 3 {
	case 0:
		bitOp = MnBTST
	case 1:
		bitOp = MnBCHG
	case 2:
		bitOp = MnBCLR
	case 3:
		bitOp = MnBSET
	}
	in.Mnemonic = bitOp
	if dynamic {
		dreg := uint8((op >> 9) & 7)
		dst := d.decodeEA(mode, reg, Byte)
		in.Op1 = Operand{Kind: OpDN, Reg: dreg}
		in.Op2 = dst
		return
	}
	imm := d.fetch()
	dst := d.decodeEA(mode, reg, Byte)
	in.Op1 = Operand{Kind: OpImmB, Imm: uint32(imm & 0xFF)}
	in.Op2 = dst
}

// decodeMOVEP mirrors opMOVEP's opmode field (bits 8-6): 4=W mem->reg,
// 5=L mem->reg, 6=W reg->mem, 7=L reg->mem.
func (d *Disasm) decodeMOVEP(in *Inst, op uint16) {
	dreg := uint8((op >> 9) & 7)
	an := uint8(op & 7)
	opmode := (op >> 6) & 7
	disp := int16(d.fetch())
	areaOp := Operand{Kind: OpPD16AN, Reg: an, Disp: int32(disp)}

	isLong := opmode == 5 || opmode == 7
	toMem := opmode == 6 || opmode == 7
	mn := MnMOVEPw
	if isLong {
		mn = MnMOVEPl
	}
	in.Mnemonic = mn
	if toMem {
		in.Op1 = Operand{Kind: OpDN, Reg: dreg}
		in.Op2 = areaOp
	} else {
		in.Op1 = areaOp
		in.Op2 = Operand{Kind: OpDN, Reg: dreg}
	}
}

func pick3(b, w, l Mnemonic, szBits uint16) Mnemonic {
	switch szBits {
	case 0:
		return b
	case 2:
		return l
	default:
		return w
	}
}

func (d *Disasm) decodeMove(in *Inst, op uint16) {
	szField := (op >> 12) & 3
	var sz Size
	switch szField {
	case 1:
		sz = Byte
	case 3:
		sz = Word
	case 2:
		sz = Long
	}
	dstReg := uint8((op >> 9) & 7)
	dstMode := uint8((op >> 6) & 7)
	srcMode := uint8((op >> 3) & 7)
	srcReg := uint8(op & 7)

	src := d.decodeEA(srcMode, srcReg, sz)
	dst := d.decodeEA(dstMode, dstReg, sz)

	if dstMode == 1 {
		if sz == Word {
			in.Mnemonic = MnMOVEAw
		} else {
			in.Mnemonic = MnMOVEAl
		}
	} else {
		switch sz {
		case Byte:
			in.Mnemonic = MnMOVEb
		case Word:
			in.Mnemonic = MnMOVEw
		case Long:
			in.Mnemonic = MnMOVEl
		}
	}
	in.Op1 = src
	in.Op2 = dst
}

func (d *Disasm) decodeMisc(in *Inst, op uint16) {
	mode := uint8((op >> 3) & 7)
	reg := uint8(op & 7)

	switch {
	case op == 0x4E71:
		in.Mnemonic = MnNOP
	case op == 0x4E72:
		in.Mnemonic = MnSTOP
		in.Op1 = Operand{Kind: OpImmW, Imm: uint32(d.fetch())}
	case op == 0x4E70:
		in.Mnemonic = MnRESET
	case op == 0x4E73:
		in.Mnemonic = MnRTE
	case op == 0x4E75:
		in.Mnemonic = MnRTS
	case op == 0x4E77:
		in.Mnemonic = MnRTR
	case op == 0x4AFC:
		in.Mnemonic = MnIllegal
	case op&0xFFF8 == 0x4E60:
		in.Mnemonic = MnMOVEtoUSP
		in.Op1 = Operand{Kind: OpAN, Reg: reg}
		in.Op2 = Operand{Kind: OpUSP}
	case op&0xFFF8 == 0x4E68:
		in.Mnemonic = MnMOVEfromUSP
		in.Op1 = Operand{Kind: OpUSP}
		in.Op2 = Operand{Kind: OpAN, Reg: reg}
	case op&0xFF00 == 0x4E00 && op&0xFFF0 == 0x4E40:
		in.Mnemonic = MnTRAP
		in.Op1 = Operand{Kind: OpVector, Imm: uint32(op & 0xF)}
	case op == 0x4E76:
		in.Mnemonic = MnTRAPV
	case op&0xFFF8 == 0x4E50:
		in.Mnemonic = MnLINK
		in.Op1 = Operand{Kind: OpAN, Reg: reg}
		in.Op2 = Operand{Kind: OpImmW, Imm: uint32(d.fetch())}
	case op&0xFFF8 == 0x4E58:
		in.Mnemonic = MnUNLK
		in.Op1 = Operand{Kind: OpAN, Reg: reg}
	case op&0xFF00 == 0x4000 && mode != 1 && (op>>6)&3 != 3:
		in.Mnemonic = pick3(MnNEGXb, MnNEGXw, MnNEGXl, (op>>6)&3)
		in.Op1 = d.decodeEA(mode, reg, sizeOf3((op>>6)&3))
	case (op&0xFF00) == 0x4200 && (op>>6)&3 != 3:
		in.Mnemonic = pick3(MnCLRb, MnCLRw, MnCLRl, (op>>6)&3)
		in.Op1 = d.decodeEA(mode, reg, sizeOf3((op>>6)&3))
	case (op&0xFF00) == 0x4400 && (op>>6)&3 != 3:
		in.Mnemonic = pick3(MnNEGb, MnNEGw, MnNEGl, (op>>6)&3)
		in.Op1 = d.decodeEA(mode, reg, sizeOf3((op>>6)&3))
	case (op&0xFFC0) == 0x44C0:
		in.Mnemonic = MnMOVEtoCCR
		in.Op1 = d.decodeEA(mode, reg, Word)
		in.Op2 = Operand{Kind: OpCCR}
	case (op&0xFFC0) == 0x46C0:
		in.Mnemonic = MnMOVEtoSR
		in.Op1 = d.decodeEA(mode, reg, Word)
		in.Op2 = Operand{Kind: OpSR}
	case (op&0xFFC0) == 0x40C0:
		in.Mnemonic = MnMOVEfromSR
		in.Op1 = Operand{Kind: OpSR}
		in.Op2 = d.decodeEA(mode, reg, Word)
	case (op&0xFF00) == 0x4600 && (op>>6)&3 != 3:
		in.Mnemonic = pick3(MnNOTb, MnNOTw, MnNOTl, (op>>6)&3)
		in.Op1 = d.decodeEA(mode, reg, sizeOf3((op>>6)&3))
	case (op & 0xFFC0) == 0x4800: // NBCD
		in.Mnemonic = MnNBCD
		in.Op1 = d.decodeEA(mode, reg, Byte)
	case (op & 0xFFF8) == 0x4840: // SWAP
		in.Mnemonic = MnSWAP
		in.Op1 = Operand{Kind: OpDN, Reg: reg}
	case (op & 0xFFC0) == 0x4840 && (op>>3)&7 != 0: // PEA
		in.Mnemonic = MnPEA
		in.Op1 = d.decodeEA(mode, reg, Long)
	case (op & 0xFFC0) == 0x4AC0: // TAS
		in.Mnemonic = MnTAS
		in.Op1 = d.decodeEA(mode, reg, Byte)
	case (op&0xFF00) == 0x4A00 && (op>>6)&3 != 3: // TST
		in.Mnemonic = pick3(MnTSTb, MnTSTw, MnTSTl, (op>>6)&3)
		in.Op1 = d.decodeEA(mode, reg, sizeOf3((op>>6)&3))
	case (op & 0xFFB8) == 0x4880: // EXT (mode field 000 separates it from MOVEM)
		if op&0x40 == 0 {
			in.Mnemonic = MnEXTw
		} else {
			in.Mnemonic = MnEXTl
		}
		in.Op1 = Operand{Kind: OpDN, Reg: reg}
	case (op & 0xF1C0) == 0x4180: // CHK
		in.Mnemonic = MnCHK
		in.Op1 = d.decodeEA(mode, reg, Word)
		in.Op2 = Operand{Kind: OpDN, Reg: uint8((op >> 9) & 7)}
	case (op & 0xF1C0) == 0x41C0: // LEA
		in.Mnemonic = MnLEA
		in.Op1 = d.decodeEA(mode, reg, Long)
		in.Op2 = Operand{Kind: OpAN, Reg: uint8((op >> 9) & 7)}
	case (op & 0xFB80) == 0x4880: // MOVEM
		isLong := op&0x40 != 0
		toMem := op&0x0400 == 0
		mn := MnMOVEMw
		sz := Word
		if isLong {
			mn = MnMOVEMl
			sz = Long
		}
		listMask := d.fetch()
		ea := d.decodeEA(mode, reg, sz)
		in.Mnemonic = mn
		listOp := Operand{Kind: OpList, Mask: listMask, Mode: mode}
		if toMem {
			in.Op1 = listOp
			in.Op2 = ea
		} else {
			in.Op1 = ea
			in.Op2 = listOp
		}
	case (op & 0xFFC0) == 0x4EC0: // JMP
		in.Mnemonic = MnJMP
		in.Op1 = d.decodeEA(mode, reg, Word)
	case (op & 0xFFC0) == 0x4E80: // JSR
		in.Mnemonic = MnJSR
		in.Op1 = d.decodeEA(mode, reg, Word)
	default:
		in.Mnemonic = MnUnknown
	}
}

func sizeOf3(szBits uint16) Size {
	switch szBits {
	case 0:
		return Byte
	case 1:
		return Word
	default:
		return Long
	}
}

func (d *Disasm) decodeAddqSubqScc(in *Inst, op uint16) {
	mode := uint8((op >> 3) & 7)
	reg := uint8(op & 7)

	if op&0xF0C0 == 0x50C0 {
		if mode == 1 {
			in.Mnemonic = MnDBcc
			in.Cond = uint8((op >> 8) & 0xF)
			in.Op1 = Operand{Kind: OpDN, Reg: reg}
			disp := int16(d.fetch())
			in.Op2 = Operand{Kind: OpDisp16, Disp: int32(disp)}
			return
		}
		in.Mnemonic = MnScc
		in.Cond = uint8((op >> 8) & 0xF)
		in.Op1 = d.decodeEA(mode, reg, Byte)
		return
	}

	szBits := (op >> 6) & 3
	data := (op >> 9) & 7
	if data == 0 {
		data = 8
	}
	sz := sizeOf3(szBits)

	isSub := op&0x0100 != 0
	in.Mnemonic = pick3(cond(isSub, MnSUBQb, MnADDQb), cond(isSub, MnSUBQw, MnADDQw), cond(isSub, MnSUBQl, MnADDQl), szBits)
	in.Op1 = Operand{Kind: OpImmB, Imm: uint32(data)}
	in.Op2 = d.decodeEA(mode, reg, sz)
}

func (d *Disasm) decodeBranch(in *Inst, op uint16) {
	cc := (op >> 8) & 0xF
	base := d.pc
	disp := int32(int8(op & 0xFF))
	if disp == 0 {
		disp = int32(int16(d.fetch()))
	}
	target := uint32(int32(base) + disp)

	switch cc {
	case 0:
		in.Mnemonic = MnBRA
	case 1:
		in.Mnemonic = MnBSR
	default:
		in.Mnemonic = MnBcc
		in.Cond = uint8(cc)
	}
	in.Op1 = Operand{Kind: OpLabel, Addr: target}
}

func (d *Disasm) decodeOrDivSbcd(in *Inst, op uint16) {
	reg := uint8((op >> 9) & 7)
	mode := uint8((op >> 3) & 7)
	rm := uint8(op & 7)
	sub := (op >> 6) & 7

	switch {
	case sub == 3:
		in.Mnemonic = MnDIVU
		in.Op1 = d.decodeEA(mode, rm, Word)
		in.Op2 = Operand{Kind: OpDN, Reg: reg}
	case sub == 7:
		in.Mnemonic = MnDIVS
		in.Op1 = d.decodeEA(mode, rm, Word)
		in.Op2 = Operand{Kind: OpDN, Reg: reg}
	case sub == 4 && mode < 2:
		if mode == 0 {
			in.Mnemonic = MnSBCD
			in.Op1 = Operand{Kind: OpDN, Reg: rm}
			in.Op2 = Operand{Kind: OpDN, Reg: reg}
		} else {
			in.Mnemonic = MnSBCD
			in.Op1 = Operand{Kind: OpPANd, Reg: rm}
			in.Op2 = Operand{Kind: OpPANd, Reg: reg}
		}
	default:
		sz := sizeOf3(sub & 3)
		in.Mnemonic = pick3(MnORb, MnORw, MnORl, sub&3)
		if sub&4 != 0 {
			in.Op1 = Operand{Kind: OpDN, Reg: reg}
			in.Op2 = d.decodeEA(mode, rm, sz)
		} else {
			in.Op1 = d.decodeEA(mode, rm, sz)
			in.Op2 = Operand{Kind: OpDN, Reg: reg}
		}
	}
}

func (d *Disasm) decodeSubFamily(in *Inst, op uint16) {
	reg := uint8((op >> 9) & 7)
	mode := uint8((op >> 3) & 7)
	rm := uint8(op & 7)
	opmode := (op >> 6) & 7

	switch opmode {
	case 3:
		in.Mnemonic = MnSUBAw
		in.Op1 = d.decodeEA(mode, rm, Word)
		in.Op2 = Operand{Kind: OpAN, Reg: reg}
	case 7:
		in.Mnemonic = MnSUBAl
		in.Op1 = d.decodeEA(mode, rm, Long)
		in.Op2 = Operand{Kind: OpAN, Reg: reg}
	default:
		sz := sizeOf3(opmode & 3)
		if mode == 0 && opmode >= 4 {
			in.Mnemonic = pick3(MnSUBXb, MnSUBXw, MnSUBXl, opmode&3)
			in.Op1 = Operand{Kind: OpDN, Reg: rm}
			in.Op2 = Operand{Kind: OpDN, Reg: reg}
			return
		}
		if mode == 1 && opmode >= 4 {
			in.Mnemonic = pick3(MnSUBXb, MnSUBXw, MnSUBXl, opmode&3)
			in.Op1 = Operand{Kind: OpPANd, Reg: rm}
			in.Op2 = Operand{Kind: OpPANd, Reg: reg}
			return
		}
		in.Mnemonic = pick3(MnSUBb, MnSUBw, MnSUBl, opmode&3)
		if opmode&4 != 0 {
			in.Op1 = Operand{Kind: OpDN, Reg: reg}
			in.Op2 = d.decodeEA(mode, rm, sz)
		} else {
			in.Op1 = d.decodeEA(mode, rm, sz)
			in.Op2 = Operand{Kind: OpDN, Reg: reg}
		}
	}
}

func (d *Disasm) decodeCmpEorFamily(in *Inst, op uint16) {
	reg := uint8((op >> 9) & 7)
	mode := uint8((op >> 3) & 7)
	rm := uint8(op & 7)
	opmode := (op >> 6) & 7

	switch opmode {
	case 3:
		in.Mnemonic = MnCMPAw
		in.Op1 = d.decodeEA(mode, rm, Word)
		in.Op2 = Operand{Kind: OpAN, Reg: reg}
	case 7:
		in.Mnemonic = MnCMPAl
		in.Op1 = d.decodeEA(mode, rm, Long)
		in.Op2 = Operand{Kind: OpAN, Reg: reg}
	default:
		sz := sizeOf3(opmode & 3)
		if opmode >= 4 {
			if mode == 1 {
				in.Mnemonic = MnCMPM
				in.Op1 = Operand{Kind: OpPANi, Reg: rm}
				in.Op2 = Operand{Kind: OpPANi, Reg: reg}
				return
			}
			in.Mnemonic = pick3(MnEORb, MnEORw, MnEORl, opmode&3)
			in.Op1 = Operand{Kind: OpDN, Reg: reg}
			in.Op2 = d.decodeEA(mode, rm, sz)
			return
		}
		in.Mnemonic = pick3(MnCMPb, MnCMPw, MnCMPl, opmode&3)
		in.Op1 = d.decodeEA(mode, rm, sz)
		in.Op2 = Operand{Kind: OpDN, Reg: reg}
	}
}

func (d *Disasm) decodeAndMulAbcdExg(in *Inst, op uint16) {
	reg := uint8((op >> 9) & 7)
	mode := uint8((op >> 3) & 7)
	rm := uint8(op & 7)
	sub := (op >> 6) & 7

	switch {
	case sub == 3:
		in.Mnemonic = MnMULU
		in.Op1 = d.decodeEA(mode, rm, Word)
		in.Op2 = Operand{Kind: OpDN, Reg: reg}
	case sub == 7:
		in.Mnemonic = MnMULS
		in.Op1 = d.decodeEA(mode, rm, Word)
		in.Op2 = Operand{Kind: OpDN, Reg: reg}
	case sub == 4 && mode == 0:
		in.Mnemonic = MnABCD
		in.Op1 = Operand{Kind: OpDN, Reg: rm}
		in.Op2 = Operand{Kind: OpDN, Reg: reg}
	case sub == 4 && mode == 1:
		in.Mnemonic = MnABCD
		in.Op1 = Operand{Kind: OpPANd, Reg: rm}
		in.Op2 = Operand{Kind: OpPANd, Reg: reg}
	case op&0xF1F8 == 0xC140: // EXG Dn,Dn
		in.Mnemonic = MnEXG
		in.Op1 = Operand{Kind: OpDN, Reg: reg}
		in.Op2 = Operand{Kind: OpDN, Reg: rm}
	case op&0xF1F8 == 0xC148: // EXG An,An
		in.Mnemonic = MnEXG
		in.Op1 = Operand{Kind: OpAN, Reg: reg}
		in.Op2 = Operand{Kind: OpAN, Reg: rm}
	case op&0xF1F8 == 0xC188: // EXG Dn,An
		in.Mnemonic = MnEXG
		in.Op1 = Operand{Kind: OpDN, Reg: reg}
		in.Op2 = Operand{Kind: OpAN, Reg: rm}
	case sub == 4 || sub == 5 || sub == 6:
		in.Mnemonic = pick3(MnANDb, MnANDw, MnANDl, sub&3)
		in.Op1 = Operand{Kind: OpDN, Reg: reg}
		in.Op2 = d.decodeEA(mode, rm, sizeOf3(sub&3))
	default:
		sz := sizeOf3(sub & 3)
		in.Mnemonic = pick3(MnANDb, MnANDw, MnANDl, sub&3)
		in.Op1 = d.decodeEA(mode, rm, sz)
		in.Op2 = Operand{Kind: OpDN, Reg: reg}
	}
}

func (d *Disasm) decodeAddFamily(in *Inst, op uint16) {
	reg := uint8((op >> 9) & 7)
	mode := uint8((op >> 3) & 7)
	rm := uint8(op & 7)
	opmode := (op >> 6) & 7

	switch opmode {
	case 3:
		in.Mnemonic = MnADDAw
		in.Op1 = d.decodeEA(mode, rm, Word)
		in.Op2 = Operand{Kind: OpAN, Reg: reg}
	case 7:
		in.Mnemonic = MnADDAl
		in.Op1 = d.decodeEA(mode, rm, Long)
		in.Op2 = Operand{Kind: OpAN, Reg: reg}
	default:
		sz := sizeOf3(opmode & 3)
		if mode == 0 && opmode >= 4 {
			in.Mnemonic = pick3(MnADDXb, MnADDXw, MnADDXl, opmode&3)
			in.Op1 = Operand{Kind: OpDN, Reg: rm}
			in.Op2 = Operand{Kind: OpDN, Reg: reg}
			return
		}
		if mode == 1 && opmode >= 4 {
			in.Mnemonic = pick3(MnADDXb, MnADDXw, MnADDXl, opmode&3)
			in.Op1 = Operand{Kind: OpPANd, Reg: rm}
			in.Op2 = Operand{Kind: OpPANd, Reg: reg}
			return
		}
		in.Mnemonic = pick3(MnADDb, MnADDw, MnADDl, opmode&3)
		if opmode&4 != 0 {
			in.Op1 = Operand{Kind: OpDN, Reg: reg}
			in.Op2 = d.decodeEA(mode, rm, sz)
		} else {
			in.Op1 = d.decodeEA(mode, rm, sz)
			in.Op2 = Operand{Kind: OpDN, Reg: reg}
		}
	}
}

func (d *Disasm) decodeShiftRotate(in *Inst, op uint16) {
	szBits := (op >> 6) & 3
	if szBits == 3 {
		// Memory-shift form: single-bit shift/rotate on an EA, word only.
		mode := uint8((op >> 3) & 7)
		rm := uint8(op & 7)
		dirLeft := op&0x0100 != 0
		kind := (op >> 9) & 3
		in.Op1 = d.decodeEA(mode, rm, Word)
		in.Mnemonic = memShiftMnemonic(kind, dirLeft)
		return
	}

	reg := uint8(op & 7)
	dreg := uint8((op >> 9) & 7)
	dirLeft := op&0x0100 != 0
	useReg := op&0x0020 != 0
	kind := (op >> 3) & 3

	in.Mnemonic = regShiftMnemonic(kind, dirLeft, szBits)
	if useReg {
		in.Op1 = Operand{Kind: OpDN, Reg: dreg}
	} else {
		count := dreg
		if count == 0 {
			count = 8
		}
		in.Op1 = Operand{Kind: OpImmB, Imm: uint32(count)}
	}
	in.Op2 = Operand{Kind: OpDN, Reg: reg}
}

func memShiftMnemonic(kind uint16, left bool) Mnemonic {
	switch kind {
	case 0:
		if left {
			return MnASLw
		}
		return MnASRw
	case 1:
		if left {
			return MnLSLw
		}
		return MnLSRw
	case 2:
		if left {
			return MnROXLw
		}
		return MnROXRw
	default:
		if left {
			return MnROLw
		}
		return MnRORw
	}
}

func regShiftMnemonic(kind uint16, left bool, szBits uint16) Mnemonic {
	switch kind {
	case 0:
		return pick3(cond(left, MnASLb, MnASRb), cond(left, MnASLw, MnASRw), cond(left, MnASLl, MnASRl), szBits)
	case 1:
		return pick3(cond(left, MnLSLb, MnLSRb), cond(left, MnLSLw, MnLSRw), cond(left, MnLSLl, MnLSRl), szBits)
	case 2:
		return pick3(cond(left, MnROXLb, MnROXRb), cond(left, MnROXLw, MnROXRw), cond(left, MnROXLl, MnROXRl), szBits)
	default:
		return pick3(cond(left, MnROLb, MnRORb), cond(left, MnROLw, MnRORw), cond(left, MnROLl, MnRORl), szBits)
	}
}

func cond(c bool, a, b Mnemonic) Mnemonic {
	if c {
		return a
	}
	return b
}

// StepPreview describes what CPU.Step would do next without performing it.
type StepPreview int

const (
	PreviewInst StepPreview = iota
	PreviewReset
	PreviewAutoVector
	PreviewStop
	PreviewHalted
)

// DecodeNextStep previews the next action Step would take: servicing a
// pending interrupt, reporting the STOP/halt latches, or disassembling the
// instruction at the current PC. It performs no bus writes and does not
// mutate CPU state.
func DecodeNextStep(c *CPU, bus Bus) (StepPreview, Inst) {
	if c.Halted() {
		return PreviewHalted, Inst{}
	}
	reg := c.Registers()
	mask := uint8((reg.SR >> 8) & 7)
	if c.pendingLevel > 0 && (c.pendingLevel > mask || c.pendingLevel == 7) {
		return PreviewAutoVector, Inst{}
	}
	if c.stopped {
		return PreviewStop, Inst{}
	}
	in, _ := Decode(bus, reg.PC)
	return PreviewInst, in
}
