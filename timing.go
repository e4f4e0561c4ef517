package m68k

// Operand-transfer cycle costs by addressing mode, charged on top of an
// instruction's base timing. Register-direct operands are free; the memory
// forms pay for their address calculation plus the data fetch, and -(An)
// reads cost two extra for the internal decrement before the access. The
// mode-7 sub-forms carry their own column. A long transfer through any
// paying form adds one more bus cycle (+4) for the second word.
var eaReadCost = [8]uint64{0, 0, 4, 4, 6, 8, 10, 0}
var eaReadCost7 = [5]uint64{8, 12, 8, 10, 4}

// The write side skips the read-modify step, so -(An) drops to 4 and the
// PC-relative/immediate columns vanish (nothing writes through them).
var eaWriteCost = [8]uint64{0, 0, 4, 4, 4, 8, 10, 0}
var eaWriteCost7 = [2]uint64{8, 12}

func eaOperandReadCycles(mode, reg uint8, sz Size) uint64 {
	n := eaReadCost[mode&7]
	if mode == 7 && int(reg) < len(eaReadCost7) {
		n = eaReadCost7[reg]
	}
	if sz == Long && n > 0 {
		n += 4
	}
	return n
}

func eaOperandWriteCycles(mode, reg uint8, sz Size) uint64 {
	n := eaWriteCost[mode&7]
	if mode == 7 && int(reg) < len(eaWriteCost7) {
		n = eaWriteCost7[reg]
	}
	if sz == Long && n > 0 {
		n += 4
	}
	return n
}
