package sim

import (
	"testing"

	"github.com/tinyproc/d16/isa"
)

func runTicks(s *Simulator, n int) []Event {
	var all []Event
	for i := 0; i < n; i++ {
		all = append(all, s.Tick()...)
	}
	return all
}

// TestResetVector is scenario S1 of spec.md §8.
func TestResetVector(t *testing.T) {
	s := NewSimulator(DefaultMemorySize)
	s.Memory.Load(0, 0x1000)

	events := runTicks(s, 5)
	if len(events) < 3 {
		t.Fatalf("got %d events in 5 ticks, want at least 3", len(events))
	}

	want := []Event{
		ReadEvent{Addr: 0, Data: 0x1000},
		WriteEvent{Addr: 0, Data: 0x1000},
		RegUpdateEvent{Name: "$pc", Old: 0, New: 0x1000},
	}
	for i, w := range want {
		if events[i] != w {
			t.Errorf("event %d = %#v, want %#v", i, events[i], w)
		}
	}

	if s.CPU.pc != 0x1000 {
		t.Errorf("$pc after reset = %#04x, want 0x1000", s.CPU.pc)
	}
}

// TestImmediateToRegisterAndHalt is scenario S2.
func TestImmediateToRegisterAndHalt(t *testing.T) {
	const origin = 0x0010
	s := NewSimulator(64)
	s.Memory.Load(0, origin)
	s.Load(origin, []uint16{
		isa.Encode(isa.OpMOV, 0, isa.RegSP, isa.OPBImm, 3),
		isa.Encode(isa.OpMOV, 0, isa.RegPC, isa.OPBRegPC, 0),
	})

	runTicks(s, 20)

	if s.CPU.sp != 3 {
		t.Errorf("$sp = %#04x, want 3", s.CPU.sp)
	}
}

// TestDestructiveReadRoundTrip is scenario S3.
func TestDestructiveReadRoundTrip(t *testing.T) {
	const origin = 0x0010
	s := NewSimulator(64)
	s.Memory.Load(0, origin)
	s.Memory.Load(5, 0x55)
	s.Load(origin, []uint16{
		isa.Encode(isa.OpMOV, 0, isa.RegR0, isa.OPBMemImm, 5), // $r0 <- [5]
		isa.Encode(isa.OpMOV, 1, isa.RegR0, isa.OPBMemImm, 5), // [5] <- $r0
		isa.Encode(isa.OpMOV, 0, isa.RegR0, isa.OPBMemImm, 5), // $r0 <- [5] again
	})

	runTicks(s, 3+6*3)

	if s.CPU.r0 != 0x55 {
		t.Errorf("$r0 = %#04x, want 0x55", s.CPU.r0)
	}
	if v := s.Memory.Snapshot()[5]; v != 0x55 {
		t.Errorf("mem[5] = %#04x, want 0x55", v)
	}
}

// TestPredicateSkip is scenario S4.
func TestPredicateSkip(t *testing.T) {
	const origin = 0x0010
	s := NewSimulator(64)
	s.Memory.Load(0, origin)
	s.Load(origin, []uint16{
		isa.Encode(isa.OpMOV, 0, isa.RegR0, isa.OPBImm, 4),
		isa.Encode(isa.OpEQ, 0, isa.RegR0, isa.OPBImm, 4),
		isa.Encode(isa.OpMOV, 0, isa.RegR0, isa.OPBImm, 20),
		isa.Encode(isa.OpMOV, 0, isa.RegPC, isa.OPBRegPC, 0),
	})

	runTicks(s, 3+6*4+6)

	if s.CPU.r0 != 4 {
		t.Errorf("$r0 = %d, want 4 (the skipped MOV must not have run)", s.CPU.r0)
	}
}

// TestSwapWithMemory is scenario S5.
func TestSwapWithMemory(t *testing.T) {
	const origin = 0x0010
	s := NewSimulator(64)
	s.Memory.Load(0, origin)
	s.Memory.Load(5, 0x0010)
	s.Load(origin, []uint16{
		isa.Encode(isa.OpMOV, 0, isa.RegSP, isa.OPBImm, 7),
		isa.Encode(isa.OpSWAP, 1, isa.RegSP, isa.OPBMemImm, 5),
	})

	runTicks(s, 3+6+7)

	if s.CPU.sp != 0x0010 {
		t.Errorf("$sp = %#04x, want 0x0010", s.CPU.sp)
	}
	if v := s.Memory.Snapshot()[5]; v != 7 {
		t.Errorf("mem[5] = %d, want 7", v)
	}
}

// TestSignedVsUnsignedComparison is scenario S6.
func TestSignedVsUnsignedComparison(t *testing.T) {
	sp := uint16(0xFFFC) // -4
	r0 := uint16(3)

	if _, taken := alu(isa.OpLTU, 0, sp, r0, false); taken {
		t.Error("IF_LTU $sp, $r0 with $sp=0xFFFC should not take (unsigned compare)")
	}
	if _, taken := alu(isa.OpLTS, 0, sp, r0, false); !taken {
		t.Error("IF_LTS $sp, $r0 with $sp=-4 should take (signed compare)")
	}
}

// TestISTAT pins spec.md §3's ISTAT result: OPA <- 2 when interrupts are
// enabled, 0 when disabled -- the opposite sense from
// original_source/rtl/sim.py's alu_result formula (see sim/alu.go).
func TestISTAT(t *testing.T) {
	const origin = 0x0010
	s := NewSimulator(64)
	s.Memory.Load(0, origin)
	s.Load(origin, []uint16{
		isa.Encode(isa.OpISTAT, 0, isa.RegR0, isa.OPBImm, 0),
	})
	runTicks(s, 3+6)
	if s.CPU.r0 != 0 {
		t.Errorf("$r0 after ISTAT with inten=false = %d, want 0", s.CPU.r0)
	}

	s2 := NewSimulator(64)
	s2.Memory.Load(0, origin)
	s2.CPU.inten = true
	s2.Load(origin, []uint16{
		isa.Encode(isa.OpISTAT, 0, isa.RegR0, isa.OPBImm, 0),
	})
	runTicks(s2, 3+6)
	if s2.CPU.r0 != 2 {
		t.Errorf("$r0 after ISTAT with inten=true = %d, want 2", s2.CPU.r0)
	}
}

// TestTerminateEventEmitted confirms a write to the Terminator device is
// followed by a TerminateEvent on the very next tick (spec.md §4.3, §6),
// rather than the run simply going silent.
func TestTerminateEventEmitted(t *testing.T) {
	const origin = 0x0010
	s := NewSimulator(64)
	s.Memory.Load(0, origin)
	s.Load(origin, []uint16{
		isa.Encode(isa.OpMOV, 0, isa.RegR0, isa.OPBImm, 0),
		isa.Encode(isa.OpMOV, 0, isa.RegSP, isa.OPBImm, -1),  // $sp = 0xFFFF
		isa.Encode(isa.OpMOV, 1, isa.RegR0, isa.OPBMemSP, 0), // MEM[$sp+0] = $r0
	})

	code, terminated := s.Run(40)
	if !terminated {
		t.Fatal("program did not terminate within the tick budget")
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}

	found := false
	for _, ev := range s.Events {
		if te, ok := ev.(TerminateEvent); ok {
			found = true
			if te.Code != 0 {
				t.Errorf("TerminateEvent.Code = %d, want 0", te.Code)
			}
		}
	}
	if !found {
		t.Error("no TerminateEvent appeared in the recorded event stream")
	}

	if events := s.Tick(); events != nil {
		t.Errorf("Tick after the TerminateEvent was emitted = %v, want nil", events)
	}
}

// TestPredicatesNeverMutateState is invariant 3 of spec.md §8.
func TestPredicatesNeverMutateState(t *testing.T) {
	const origin = 0x0010
	s := NewSimulator(64)
	s.Memory.Load(0, origin)
	s.Memory.Load(5, 0x42)
	s.Load(origin, []uint16{
		isa.Encode(isa.OpLTS, 0, isa.RegR0, isa.OPBMemImm, 5),
	})
	runTicks(s, 3+6)

	if s.CPU.r0 != 0 {
		t.Errorf("$r0 = %d, want 0 (predicate must not write a register)", s.CPU.r0)
	}
	if v := s.Memory.Snapshot()[5]; v != 0x42 {
		t.Errorf("mem[5] = %#04x, want unchanged 0x42", v)
	}
}

// TestIntenTogglesOnlyOnSwapI is invariant 6.
func TestIntenTogglesOnlyOnSwapI(t *testing.T) {
	const origin = 0x0010
	s := NewSimulator(64)
	s.Memory.Load(0, origin)
	s.Memory.Load(5, 0)
	s.Load(origin, []uint16{
		isa.Encode(isa.OpMOV, 0, isa.RegR0, isa.OPBImm, 1), // ordinary instruction
		isa.Encode(isa.OpSWAP, 0, isa.RegR0, isa.OPBMemImm, 5),
	})

	runTicks(s, 3+6)
	if s.CPU.inten {
		t.Fatal("inten toggled on a non-SWAP instruction")
	}

	runTicks(s, 7)
	if !s.CPU.inten {
		t.Error("inten did not toggle on a SWAPI (D=0 SWAP) instruction")
	}
}

// TestInterruptDispatchIsAtomic is invariant 8: an interrupt raised between
// instructions is taken as a whole synthetic SWAP, never partially applied.
func TestInterruptDispatchIsAtomic(t *testing.T) {
	const origin = 0x0010
	s := NewSimulator(64)
	s.Memory.Load(0, origin)
	s.Memory.Load(1, 0x2000) // interrupt vector
	s.CPU.inten = true
	s.Load(origin, []uint16{
		isa.Encode(isa.OpMOV, 0, isa.RegR0, isa.OPBImm, 1),
	})

	runTicks(s, 3) // consume reset
	s.Interrupt()
	runTicks(s, 7) // fetch..pcUpdate of the overridden SWAP

	if s.CPU.pc != 0x2000 {
		t.Errorf("$pc = %#04x, want 0x2000 (dispatched through the interrupt vector)", s.CPU.pc)
	}
	if s.CPU.inten {
		t.Error("inten should be cleared by the interrupt-dispatch SWAPI")
	}
}
