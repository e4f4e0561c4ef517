package m68k

import "testing"

func TestCycleBusReceivesCycleStamp(t *testing.T) {
	bus := &spyBus{}
	bus.Write(Long, 0, 0x10000) // SSP
	bus.Write(Long, 4, 0x1000)  // PC
	fillNOPs(&bus.testBus, 0x1000, 2)

	cpu := New(bus)
	bus.cycles = nil // discard the reset reads

	cpu.Step()

	if len(bus.cycles) == 0 {
		t.Fatal("expected at least one timed bus access during Step")
	}
	for _, c := range bus.cycles {
		if c != 0 {
			t.Errorf("access cycle = %d, want 0 for the first instruction", c)
		}
	}
}
