// Package mem implements the machine's flat byte-addressable address space:
// one contiguous slab split into three regions (user program, video
// framebuffer, kernel) whose bases derive from the sizes fixed at
// construction.
//
//  0                programSize      programSize+videoSize          Size()
//  |----------------|----------------|------------------------------|
//   program          video            kernel
//
// Words are four bytes, little-endian. Accesses that run past the end of the
// slab are truncated rather than trapped: the instruction stream may
// legitimately sit right at the tail of program memory, and a fetch there
// must stay well-defined.
package mem

// A Memory owns the slab for the lifetime of the machine. The CPU holds a
// pointer to it; nothing else may alias the slab.
type Memory struct {
	slab []byte

	programSize uint32
	videoSize   uint32
	kernelSize  uint32

	// LatestAccessed is the last address touched by a word access. Debug
	// breadcrumb only; every GetWord/StoreWord call updates it, including
	// complete misses.
	LatestAccessed uint32
}

// New allocates a Memory with the given region sizes. The slab is zeroed.
func New(program, video, kernel uint32) *Memory {
	return &Memory{
		slab:        make([]byte, program+video+kernel),
		programSize: program,
		videoSize:   video,
		kernelSize:  kernel,
	}
}

// Size returns the total slab length in bytes.
func (m *Memory) Size() uint32 { return uint32(len(m.slab)) }

// VideoBase returns the byte offset of the video region.
func (m *Memory) VideoBase() uint32 { return m.programSize }

// KernelBase returns the byte offset of the kernel region. Outside the kernel
// region, the CPU skips LD, ST, JMP, BEQ and BNE that target addresses at or
// above it; the PC-relative LDR/STR form is not guarded and stores there.
func (m *Memory) KernelBase() uint32 { return m.programSize + m.videoSize }

// GetWord reads the little-endian word at addr. If fewer than four bytes
// remain before end-of-memory, the missing high bytes read as zero; at or
// beyond end-of-memory the result is 0.
func (m *Memory) GetWord(addr uint32) uint32 {
	m.LatestAccessed = addr

	if addr >= uint32(len(m.slab)) {
		return 0
	}
	n := uint32(len(m.slab)) - addr
	if n > 4 {
		n = 4
	}
	var w uint32
	for i := uint32(0); i < n; i++ {
		w |= uint32(m.slab[addr+i]) << (8 * i)
	}
	return w
}

// StoreWord writes up to four bytes of word at addr, little-endian, stopping
// silently at end-of-memory. A store entirely past the end is a no-op.
func (m *Memory) StoreWord(addr uint32, word uint32) {
	m.LatestAccessed = addr

	if addr >= uint32(len(m.slab)) {
		return
	}
	n := uint32(len(m.slab)) - addr
	if n > 4 {
		n = 4
	}
	for i := uint32(0); i < n; i++ {
		m.slab[addr+i] = byte(word >> (8 * i))
	}
}

// Byte reads the single byte at addr without disturbing LatestAccessed.
// Out-of-range reads return 0. Inspection only (debugger, tests).
func (m *Memory) Byte(addr uint32) byte {
	if addr >= uint32(len(m.slab)) {
		return 0
	}
	return m.slab[addr]
}

// ProgramSlice returns the user program region as a view into the slab.
func (m *Memory) ProgramSlice() []byte {
	return m.slab[:m.programSize:m.programSize]
}

// VideoSlice returns the video framebuffer region as a view into the slab.
func (m *Memory) VideoSlice() []byte {
	return m.slab[m.programSize : m.programSize+m.videoSize : m.programSize+m.videoSize]
}

// KernelSlice returns the kernel region as a view into the slab.
func (m *Memory) KernelSlice() []byte {
	return m.slab[m.programSize+m.videoSize:]
}
