package m68k

import "testing"

// opcodeRAM lays out a sequence of 16-bit instruction words starting at addr,
// expanding each into the big-endian byte pairs cpuState.RAM expects.
func opcodeRAM(addr uint32, words ...uint16) [][2]uint32 {
	var ram [][2]uint32
	for i, w := range words {
		a := addr + uint32(i*2)
		ram = append(ram, [2]uint32{a, uint32(w >> 8)}, [2]uint32{a + 1, uint32(w & 0xFF)})
	}
	return ram
}

// TestAddBoundary reproduces the documented ADD.B overflow case: adding two
// 0x80 bytes wraps to zero while setting every one of X, C, V and Z.
func TestAddBoundary(t *testing.T) {
	// ADDI.B #0x80,D0
	init := cpuState{
		D:   [8]uint32{0x00000080},
		PC:  0x1004,
		SR:  0x2000,
		RAM: opcodeRAM(0x1000, 0x0600, 0x0080),
	}
	want := cpuState{
		D:  [8]uint32{0x00000000},
		PC: 0x1008,
		SR: 0x2017, // S, X, V, C, Z
	}
	runTest(t, init, want)
}

// TestCmpEqual exercises a plain register-to-register CMP.L equality case.
func TestCmpEqual(t *testing.T) {
	// CMP.L D1,D0
	init := cpuState{
		D:   [8]uint32{5, 5},
		PC:  0x1004,
		SR:  0x2000,
		RAM: opcodeRAM(0x1000, 0xB081),
	}
	want := cpuState{
		D:  [8]uint32{5, 5},
		PC: 0x1006,
		SR: 0x2004, // Z set, operands unchanged
	}
	runTest(t, init, want)
}

// TestAddSubRoundTrip checks that ADD.L then SUB.L of the same register
// returns the destination to its original value.
func TestAddSubRoundTrip(t *testing.T) {
	bus := &testBus{}
	writeWord(bus, 0x1000, 0xD081) // ADD.L D1,D0
	writeWord(bus, 0x1002, 0x9081) // SUB.L D1,D0

	cpu := &CPU{bus: bus}
	cpu.SetState(Registers{D: [8]uint32{0x12345678, 0x0F0F0F0F}, PC: 0x1000, SR: 0x2700, SSP: 0x10000})

	cpu.Step()
	cpu.Step()

	got := cpu.Registers().D[0]
	if got != 0x12345678 {
		t.Errorf("D0 after ADD.L/SUB.L round trip = 0x%08X, want 0x12345678", got)
	}
}

// TestMoveLongLogicalFlags checks MOVE.L sets N/Z purely from the moved
// value, per the logical-flags rule shared with AND/OR/EOR/NOT.
func TestMoveLongLogicalFlags(t *testing.T) {
	// MOVE.L D1,D0
	init := cpuState{
		D:   [8]uint32{0, 0xDEADBEEF},
		PC:  0x1004,
		SR:  0x2000,
		RAM: opcodeRAM(0x1000, 0x2001),
	}
	want := cpuState{
		D:  [8]uint32{0xDEADBEEF, 0xDEADBEEF},
		PC: 0x1006,
		SR: 0x2008, // N set (top bit of 0xDEADBEEF)
	}
	runTest(t, init, want)
}

func TestAndOrEor(t *testing.T) {
	cases := []struct {
		name   string
		opcode uint16
		want   uint32
		wantSR uint16
	}{
		{"AND.L D1,D0", 0xC081, 0x0F000F00, 0x2000},
		{"OR.L D1,D0", 0x8081, 0xFF0FFF0F, 0x2008},
		{"EOR.L D1,D0", 0xB380, 0xF00FF00F, 0x2008},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			init := cpuState{
				D:   [8]uint32{0xFF00FF00, 0x0F0F0F0F},
				PC:  0x1004,
				SR:  0x2000,
				RAM: opcodeRAM(0x1000, c.opcode),
			}
			want := cpuState{
				D:  [8]uint32{c.want, 0x0F0F0F0F},
				PC: 0x1006,
				SR: c.wantSR,
			}
			runTest(t, init, want)
		})
	}
}

// TestClrSwapNotNegRoundTrip verifies the idempotence/involution invariants
// for CLR (stable at zero), SWAP (its own inverse), NOT and NEG (both
// involutions under two's-complement arithmetic).
func TestClrSwapNotNegRoundTrip(t *testing.T) {
	t.Run("CLR.L twice stays zero", func(t *testing.T) {
		bus := &testBus{}
		writeWord(bus, 0x1000, 0x4280) // CLR.L D0
		writeWord(bus, 0x1002, 0x4280) // CLR.L D0
		cpu := &CPU{bus: bus}
		cpu.SetState(Registers{D: [8]uint32{0xFFFFFFFF}, PC: 0x1000, SR: 0x2700, SSP: 0x10000})
		cpu.Step()
		cpu.Step()
		if got := cpu.Registers().D[0]; got != 0 {
			t.Errorf("D0 = 0x%08X, want 0", got)
		}
	})

	t.Run("SWAP twice restores value", func(t *testing.T) {
		bus := &testBus{}
		writeWord(bus, 0x1000, 0x4840) // SWAP D0
		writeWord(bus, 0x1002, 0x4840) // SWAP D0
		cpu := &CPU{bus: bus}
		cpu.SetState(Registers{D: [8]uint32{0x12345678}, PC: 0x1000, SR: 0x2700, SSP: 0x10000})
		cpu.Step()
		cpu.Step()
		if got := cpu.Registers().D[0]; got != 0x12345678 {
			t.Errorf("D0 = 0x%08X, want 0x12345678", got)
		}
	})

	t.Run("NOT.L twice restores value", func(t *testing.T) {
		bus := &testBus{}
		writeWord(bus, 0x1000, 0x4680) // NOT.L D0
		writeWord(bus, 0x1002, 0x4680) // NOT.L D0
		cpu := &CPU{bus: bus}
		cpu.SetState(Registers{D: [8]uint32{0x12345678}, PC: 0x1000, SR: 0x2700, SSP: 0x10000})
		cpu.Step()
		cpu.Step()
		if got := cpu.Registers().D[0]; got != 0x12345678 {
			t.Errorf("D0 = 0x%08X, want 0x12345678", got)
		}
	})

	t.Run("NEG.L twice restores value", func(t *testing.T) {
		bus := &testBus{}
		writeWord(bus, 0x1000, 0x4480) // NEG.L D0
		writeWord(bus, 0x1002, 0x4480) // NEG.L D0
		cpu := &CPU{bus: bus}
		cpu.SetState(Registers{D: [8]uint32{0x12345678}, PC: 0x1000, SR: 0x2700, SSP: 0x10000})
		cpu.Step()
		cpu.Step()
		if got := cpu.Registers().D[0]; got != 0x12345678 {
			t.Errorf("D0 = 0x%08X, want 0x12345678", got)
		}
	})
}

// TestShiftRotateBoundaries reproduces the documented boundary cases for
// arithmetic/logical shifts and rotate-through-extend.
func TestShiftRotateBoundaries(t *testing.T) {
	t.Run("ASR.W #1,D0=0x8000 -> 0xC000, C=0, N=1", func(t *testing.T) {
		init := cpuState{
			D:   [8]uint32{0x00008000},
			PC:  0x1004,
			SR:  0x2000,
			RAM: opcodeRAM(0x1000, 0xE240),
		}
		want := cpuState{
			D:  [8]uint32{0x0000C000},
			PC: 0x1006,
			SR: 0x2008, // N set, C/X clear
		}
		runTest(t, init, want)
	})

	t.Run("LSR.W #1,D0=0x0001 -> X=C=Z=1", func(t *testing.T) {
		init := cpuState{
			D:   [8]uint32{0x00000001},
			PC:  0x1004,
			SR:  0x2000,
			RAM: opcodeRAM(0x1000, 0xE248),
		}
		want := cpuState{
			D:  [8]uint32{0x00000000},
			PC: 0x1006,
			SR: 0x2015, // X, C, Z set
		}
		runTest(t, init, want)
	})

	t.Run("ROXL.B #1,0xFF with X=0 -> 0xFE, X=C=1", func(t *testing.T) {
		init := cpuState{
			D:   [8]uint32{0x000000FF},
			PC:  0x1004,
			SR:  0x2000,
			RAM: opcodeRAM(0x1000, 0xE310),
		}
		want := cpuState{
			D:  [8]uint32{0x000000FE},
			PC: 0x1006,
			SR: 0x2019, // X, C, N set
		}
		runTest(t, init, want)
	})

	t.Run("ROXL.B #1,0xFF with X=1 -> 0xFF, X=C=1", func(t *testing.T) {
		init := cpuState{
			D:   [8]uint32{0x000000FF},
			PC:  0x1004,
			SR:  0x2010, // X already set
			RAM: opcodeRAM(0x1000, 0xE310),
		}
		want := cpuState{
			D:  [8]uint32{0x000000FF},
			PC: 0x1006,
			SR: 0x2019, // X, C, N set
		}
		runTest(t, init, want)
	})
}

// TestAbcd covers plain decimal addition and the sticky-Z behavior on a
// BCD result of zero (Z is only ever cleared by ABCD, never set).
func TestAbcd(t *testing.T) {
	t.Run("9 + 1 = 10 (BCD)", func(t *testing.T) {
		// ABCD D0,D1 (Dy=D0 src, Dx=D1 dst)
		init := cpuState{
			D:   [8]uint32{0x09, 0x01},
			PC:  0x1004,
			SR:  0x2000,
			RAM: opcodeRAM(0x1000, 0xC300),
		}
		want := cpuState{
			D:  [8]uint32{0x09, 0x10},
			PC: 0x1006,
			SR: 0x2000,
		}
		runTest(t, init, want)
	})

	t.Run("99 + 1 wraps to 00 but Z stays sticky-clear", func(t *testing.T) {
		init := cpuState{
			D:   [8]uint32{0x99, 0x01},
			PC:  0x1004,
			SR:  0x2000, // Z starts clear
			RAM: opcodeRAM(0x1000, 0xC300),
		}
		want := cpuState{
			D:  [8]uint32{0x99, 0x00},
			PC: 0x1006,
			SR: 0x2011, // C, X set; Z left alone despite a zero result
		}
		runTest(t, init, want)
	})
}

// TestBccTaken verifies a taken conditional branch lands at
// instruction-address+2+displacement and leaves flags untouched.
func TestBccTaken(t *testing.T) {
	// BEQ *+6 (displacement 4)
	init := cpuState{
		PC:  0x1004,
		SR:  0x2004, // Z set
		RAM: opcodeRAM(0x1000, 0x6704),
	}
	want := cpuState{
		PC:     0x100A,
		SR:     0x2004,
		Cycles: 10,
	}
	runTest(t, init, want)
}

// TestDbccLoop verifies DBcc decrements and branches back when the
// condition is false and the counter has not expired.
func TestDbccLoop(t *testing.T) {
	// DBF D0,*  (branch back to itself: displacement -2)
	init := cpuState{
		D:   [8]uint32{5},
		PC:  0x1004,
		SR:  0x2000,
		RAM: opcodeRAM(0x1000, 0x51C8, 0xFFFE),
	}
	want := cpuState{
		D:      [8]uint32{4},
		PC:     0x1004, // branched back to the DBcc instruction itself
		SR:     0x2000,
		Cycles: 10,
	}
	runTest(t, init, want)
}

// TestAutoVectorInterrupt reproduces servicing a pending auto-vectored
// interrupt: the frame is pushed, S is forced on, and the interrupt mask
// in SR is left at its pre-service value.
func TestAutoVectorInterrupt(t *testing.T) {
	bus := &testBus{}
	// Auto-vector for level 5 is vector 29 (24+5), address 29*4 = 0x74.
	writeWord(bus, 0x74, 0x0000)
	writeWord(bus, 0x76, 0x2000)   // handler at 0x00002000
	writeWord(bus, 0x2000, 0x4E71) // NOP at the handler entry

	cpu := &CPU{bus: bus}
	cpu.SetState(Registers{PC: 0x00003000, SR: 0x2000, SSP: 0x00010000})
	cpu.RequestInterrupt(5, nil)

	// Servicing the interrupt is the whole Step; the handler's first
	// instruction (the NOP) is left for the next Step.
	cycles := cpu.Step()

	reg := cpu.Registers()
	if reg.PC != 0x00002000 {
		t.Errorf("PC = 0x%08X, want 0x00002000 (handler entry)", reg.PC)
	}
	if reg.SR != 0x2000 {
		t.Errorf("SR = 0x%04X, want 0x2000 (mask left unchanged)", reg.SR)
	}
	if reg.A[7] != 0x0000FFFA {
		t.Errorf("A7 = 0x%08X, want 0x0000FFFA (SSP - 6)", reg.A[7])
	}
	if cycles != 44 { // interrupt service only
		t.Errorf("cycles = %d, want 44", cycles)
	}

	// The pushed frame holds SR at the new stack top with the return PC
	// above it, the order RTE pops them back in.
	if got := bus.Read(Word, 0x0000FFFA); got != 0x2000 {
		t.Errorf("pushed SR = 0x%04X, want 0x2000", got)
	}
	if got := bus.Read(Long, 0x0000FFFC); got != 0x00003000 {
		t.Errorf("pushed PC = 0x%08X, want 0x00003000", got)
	}
}

// TestStopAndWake models the documented STOP/wakeup scenario: STOP loads SR
// and halts instruction fetch, subsequent Steps spend 4 cycles doing
// nothing but polling for a pending interrupt, and the next interrupt
// resumes execution through the normal servicing path.
func TestStopAndWake(t *testing.T) {
	bus := &testBus{}
	writeWord(bus, 0x1000, 0x4E72) // STOP #0x2700
	writeWord(bus, 0x1002, 0x2700)
	// Auto-vector for level 7 is vector 31, address 31*4 = 0x7C.
	writeWord(bus, 0x7C, 0x0000)
	writeWord(bus, 0x7E, 0x3000) // handler at 0x00003000

	cpu := &CPU{bus: bus}
	cpu.SetState(Registers{PC: 0x1000, SR: 0x2000, SSP: 0x00010000})

	cpu.Step() // executes STOP

	if cpu.Registers().SR != 0x2700 {
		t.Fatalf("SR after STOP = 0x%04X, want 0x2700", cpu.Registers().SR)
	}

	// While stopped, every Step just spends 4 cycles polling for an interrupt.
	for i := 0; i < 3; i++ {
		if cycles := cpu.Step(); cycles != 4 {
			t.Errorf("Step() while stopped = %d cycles, want 4", cycles)
		}
	}

	cpu.RequestInterrupt(7, nil)
	cycles := cpu.Step()

	// The stopped branch always spends 4 cycles polling before checking for
	// a pending interrupt, so servicing it here costs 4 + the usual 44.
	if cycles != 48 {
		t.Errorf("wake Step() = %d cycles, want 48", cycles)
	}
	reg := cpu.Registers()
	if reg.PC != 0x00003000 {
		t.Errorf("PC after wake = 0x%08X, want 0x00003000", reg.PC)
	}
	if cpu.Halted() {
		t.Errorf("CPU halted servicing the wake interrupt")
	}
}

func TestMoveqSignExtension(t *testing.T) {
	runTest(t,
		cpuState{PC: 0x1004, SR: 0x2700, RAM: opcodeRAM(0x1000, 0x70FF)}, // MOVEQ #-1,D0
		cpuState{D: [8]uint32{0xFFFFFFFF}, PC: 0x1006, SR: 0x2708, Cycles: 4},
	)
}

func TestAddqByteWraparound(t *testing.T) {
	runTest(t,
		cpuState{D: [8]uint32{0xFF}, PC: 0x1004, SR: 0x2700, RAM: opcodeRAM(0x1000, 0x5400)}, // ADDQ.B #2,D0
		cpuState{D: [8]uint32{0x01}, PC: 0x1006, SR: 0x2711, Cycles: 4},
	)
}

func TestResetFetchesInitialSPAndPC(t *testing.T) {
	bus := &testBus{}
	bus.Write(Long, 0, 0x00020000) // initial SSP
	bus.Write(Long, 4, 0x00004000) // initial PC
	fillNOPs(bus, 0x00004000, 4)

	cpu := &CPU{bus: bus}
	cpu.Reset()

	reg := cpu.Registers()
	if reg.PC != 0x00004000 {
		t.Errorf("PC after Reset = 0x%08X, want 0x00004000", reg.PC)
	}
	if reg.SSP != 0x00020000 || reg.A[7] != 0x00020000 {
		t.Errorf("SSP/A7 after Reset = 0x%08X/0x%08X, want 0x00020000", reg.SSP, reg.A[7])
	}
	if reg.SR != 0x2700 {
		t.Errorf("SR after Reset = 0x%04X, want 0x2700 (supervisor, mask 7)", reg.SR)
	}
	if cpu.Halted() {
		t.Errorf("CPU halted immediately after Reset")
	}
}
