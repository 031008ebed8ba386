// Package sim is the cycle-accurate d16 simulator: a bus of addressable
// devices, a CPU that reproduces the six-phase (seven for SWAP) fetch/
// decode/execute micro-sequence, and the event stream both emit. Grounded
// on original_source/rtl/sim.py's Bus/Memory/Processor classes, restructured
// into an explicit phase-sequencer per spec.md §4.3 rather than sim.py's
// Python-generator-based cooperative scheduler, and adapted into the
// teacher's (jawr-mos6502) multi-cycle stepping idiom -- an explicit phase
// enum in place of the teacher's plain wait-counter, since each tick here
// must emit a precisely-shaped event batch rather than just "busy/idle".
package sim

import "fmt"

// Device is anything the Bus can route a word-addressed read or write to.
// A device may be registered at more than one base to alias it across
// multiple address ranges.
type Device interface {
	SetBase(addr uint16)
	Size() int
	Read(addr uint16) (uint16, error)
	Write(addr uint16, data uint16) error
}

// Bus maps the full 16-bit address space to devices. Addresses with no
// registered device panic on access -- an unmapped address is a program
// error, not a recoverable one.
type Bus struct {
	devices [65536]Device
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Register attaches device at addr, spanning device.Size() words. It panics
// if any word in that range is already claimed -- overlapping device
// registration is a wiring bug, caught at setup time rather than masked at
// run time.
func (b *Bus) Register(addr uint16, device Device) {
	size := device.Size()
	for i := 0; i < size; i++ {
		a := addr + uint16(i)
		if b.devices[a] != nil {
			panic(fmt.Sprintf("bus: address 0x%04x already claimed", a))
		}
		b.devices[a] = device
	}
	device.SetBase(addr)
}

func (b *Bus) deviceAt(addr uint16) Device {
	d := b.devices[addr]
	if d == nil {
		panic(fmt.Sprintf("bus: no device registered at address 0x%04x", addr))
	}
	return d
}

// Read routes a read to whichever device owns addr.
func (b *Bus) Read(addr uint16) (uint16, error) {
	return b.deviceAt(addr).Read(addr)
}

// Write routes a write to whichever device owns addr.
func (b *Bus) Write(addr uint16, data uint16) error {
	return b.deviceAt(addr).Write(addr, data)
}
