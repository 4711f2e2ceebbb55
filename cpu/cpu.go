// Package cpu implements a simple 32-bit load/store RISC-style processor:
// 31 general registers plus a hardwired-zero R31, a byte-addressable
// little-endian word memory split into program/video/kernel regions, and a
// single latched interrupt line.

package cpu

import (
	"errors"
	"fmt"

	"beta/mem"
)

// Register conventions. R27..R30 have assembler names; XP is where the
// interrupt entry saves the return PC.
const (
	BP = 27
	LP = 28
	SP = 29
	XP = 30
)

// Kernel-region layout. The handler vector and the interrupt mailbox are
// fixed byte offsets from the kernel base.
const (
	// HandlerOffset is where the interrupt handler begins.
	HandlerOffset = 400

	irqTypeOffset = 13 // interrupt type byte, published on entry
	irqCharOffset = 14 // interrupt payload byte, published on entry

	// Keyboard bookkeeping kept for handlers written against the original
	// firmware: a scancode ring with its counter byte, and a per-scancode
	// key-state table.
	keyCountOffset = 15
	keyQueueOffset = 16
	keyStateOffset = 272
)

// ErrImageTooLarge indicates a binary image that does not fit in its target
// region. The host decides whether this is fatal.
var ErrImageTooLarge = errors.New("cpu: image too large")

// The Computer owns the whole machine state: the memory slab (via mem), the
// register file, the program counter, the interrupt latch and the halt flag.
// It is strictly single-goroutine; Step and RaiseInterrupt must never run
// concurrently.
type Computer struct {
	Mem *mem.Memory

	// R31 is not stored: reads of it yield 0 and writes to it are
	// discarded. Use Register for reads that must honour that rule.
	Registers [31]int32

	// ProgramCounter is a byte offset into Mem. The host initialises it
	// (typically to 0) and must keep it inside the slab.
	ProgramCounter uint32

	// B is the second ALU operand of the current instruction, selected
	// during Step: Rb for the register forms, the sign-extended literal
	// for the *C forms.
	B int32

	// Single-slot interrupt mailbox. While InterruptLine is set, further
	// RaiseInterrupt calls are dropped.
	InterruptLine bool
	InterruptNb   byte
	InterruptChar byte

	// Halted is set by a successful HALT and cleared at every step entry.
	Halted bool

	// ProgramSize is the number of bytes loaded into the program region.
	ProgramSize uint32
}

// New constructs a Computer with the given region sizes. All state is zero:
// PC at 0, empty registers, no interrupt pending.
func New(program, video, kernel uint32) *Computer {
	return &Computer{Mem: mem.New(program, video, kernel)}
}

// Register reads register i (0..31). R31 always reads as 0.
func (c *Computer) Register(i int) int32 {
	if i == 31 {
		return 0
	}
	return c.Registers[i]
}

func (c *Computer) reg(i byte) int32 {
	if i == 31 {
		return 0
	}
	return c.Registers[i]
}

func (c *Computer) setReg(i byte, v int32) {
	if i == 31 {
		return // hardwired zero
	}
	c.Registers[i] = v
}

// Load copies a program image to offset 0 of memory and records its size.
func (c *Computer) Load(image []byte) error {
	region := c.Mem.ProgramSlice()
	if len(image) > len(region) {
		return fmt.Errorf("%w: %d byte program, %d byte program memory",
			ErrImageTooLarge, len(image), len(region))
	}
	copy(region, image)
	c.ProgramSize = uint32(len(image))
	return nil
}

// LoadInterruptHandler copies a handler image to the handler vector at
// kernel base + HandlerOffset. A nil image is a no-op.
func (c *Computer) LoadInterruptHandler(image []byte) error {
	if image == nil {
		return nil
	}
	region := c.Mem.KernelSlice()
	if len(image) > len(region)-HandlerOffset {
		return fmt.Errorf("%w: %d byte handler, %d bytes past the handler vector",
			ErrImageTooLarge, len(image), len(region)-HandlerOffset)
	}
	copy(region[HandlerOffset:], image)
	return nil
}

// RaiseInterrupt latches an event on the interrupt line. If one is already
// pending the call is dropped; there is no queue. Must not be called
// concurrently with Step — hosts with asynchronous sources queue events to
// the step loop.
func (c *Computer) RaiseInterrupt(nb, char byte) {
	if c.InterruptLine {
		return
	}
	c.InterruptNb = nb
	c.InterruptChar = char
	c.InterruptLine = true
}

// enterInterrupt performs the interrupt entry protocol: publish the mailbox
// bytes, save PC into XP so the handler can return, vector to the handler,
// drop the line. Key events (type 0) additionally go into the scancode ring
// and the key-state table.
func (c *Computer) enterInterrupt() {
	k := c.Mem.KernelSlice()
	poke(k, irqTypeOffset, c.InterruptNb)
	poke(k, irqCharOffset, c.InterruptChar)

	if c.InterruptNb == 0 { // key down
		count := byte(0)
		if keyCountOffset < len(k) {
			count = k[keyCountOffset]
		}
		poke(k, keyQueueOffset+int(count), c.InterruptChar)
		poke(k, keyCountOffset, count+1)
		poke(k, keyStateOffset+int(c.InterruptChar), 1)
	} else { // key up, or any non-keyboard event
		poke(k, keyStateOffset+int(c.InterruptChar), 0)
	}

	c.setReg(XP, int32(c.ProgramCounter))
	c.ProgramCounter = c.Mem.KernelBase() + HandlerOffset
	c.InterruptLine = false
}

// poke writes a byte if the offset is inside the region; a kernel region too
// small for the bookkeeping simply loses the bytes, like any other
// past-the-end store.
func poke(region []byte, i int, v byte) {
	if i >= 0 && i < len(region) {
		region[i] = v
	}
}

// Step runs a single fetch/decode/execute cycle.
//
// The order is fixed: clear the halt flag; test whether the PC is in the
// kernel region; enter a pending interrupt unless it is; fetch; decode;
// advance PC by 4; dispatch. The kernel-mode test comes before interrupt
// entry, so the handler instruction run in the entry step is still subject
// to the user-mode guard. Branches and jumps overwrite the advanced PC.
// Invalid and unassigned opcodes fall through as no-ops, so execution
// continues at the next word.
func (c *Computer) Step() {
	c.Halted = false

	kernelMode := c.ProgramCounter >= c.Mem.KernelBase()
	if c.InterruptLine && !kernelMode {
		c.enterInterrupt()
	}

	i := Decode(c.Mem.GetWord(c.ProgramCounter))
	c.ProgramCounter += 4

	op, ok := Opcodes[i.Opcode]
	if !ok {
		return // unassigned opcode
	}

	switch op.Format {
	case FormatOp:
		c.B = c.reg(i.Rb)
	case FormatOpC:
		c.B = i.Literal
	}

	if !kernelMode && c.touchesKernel(op.Format, i) {
		return // user code cannot reference the kernel region
	}

	op.Instruction(c, i)
}

// touchesKernel reports whether the instruction's effective target address
// lies in the kernel region. Only the memory-referencing formats are
// guarded; LDR/STR is exempt (reaching the kernel region is what turns it
// into a store).
func (c *Computer) touchesKernel(f Format, i Inst) bool {
	var addr uint32
	switch f {
	case FormatMem, FormatStore:
		addr = uint32(c.reg(i.Ra) + i.Literal)
	case FormatJump:
		addr = uint32(c.reg(i.Ra)) &^ 3
	case FormatBranch:
		addr = uint32(int32(c.ProgramCounter) + 4*i.Literal)
	default:
		return false
	}
	return addr >= c.Mem.KernelBase()
}
