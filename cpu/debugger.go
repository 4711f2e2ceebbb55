package cpu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
)

type model struct {
	c *Computer

	offset uint32 // only for drawing pageTable
	prevPC uint32
	steps  int
}

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (m model) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case " ", "j":
			m.prevPC = m.c.ProgramCounter
			m.c.Step()
			m.steps++
		}
	}
	return m, nil
}

// renderPage renders 16 bytes of memory as a line. Bytes of the word at the
// current PC are bracketed.
func (m model) renderPage(start uint32) string {
	if start%16 != 0 {
		panic("start must be a multiple of 16")
	}
	s := fmt.Sprintf("%08x | ", start)
	for i := uint32(0); i < 16; i++ {
		addr := start + i
		b := m.c.Mem.Byte(addr)
		if addr >= m.c.ProgramCounter && addr < m.c.ProgramCounter+4 {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (m model) status() string {
	var regs strings.Builder
	for r := 0; r < 31; r += 4 {
		for c := r; c < r+4 && c < 31; c++ {
			fmt.Fprintf(&regs, "%3s %08x  ", regName(byte(c)), uint32(m.c.Register(c)))
		}
		regs.WriteByte('\n')
	}

	return fmt.Sprintf(`
    PC: %08x (%08x)
 steps: %d
halted: %v
   irq: %v nb=%02x char=%02x
latest: %08x

%s`,
		m.c.ProgramCounter,
		m.prevPC,
		m.steps,
		m.c.Halted,
		m.c.InterruptLine, m.c.InterruptNb, m.c.InterruptChar,
		m.c.Mem.LatestAccessed,
		regs.String(),
	)
}

func (m model) pageTable() string {
	header := "    addr | "
	for b := 0; b < 16; b++ {
		header += fmt.Sprintf("  %01x  ", b)
	}

	pages := []string{header}

	pc := m.c.ProgramCounter &^ 15
	offsets := []uint32{
		m.offset,
		m.offset + 16,
		m.offset + 32,
	}
	if pc >= 16 {
		offsets = append(offsets, pc-16)
	}
	offsets = append(offsets, pc, pc+16, pc+32)
	for _, o := range offsets {
		pages = append(pages, m.renderPage(o))
	}
	return strings.Join(pages, "\n")
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (m model) View() string {
	// assemble the next word via Byte: the view must not move LatestAccessed
	w := uint32(0)
	for i := uint32(0); i < 4; i++ {
		w |= uint32(m.c.Mem.Byte(m.c.ProgramCounter+i)) << (8 * i)
	}
	text, _ := Disassemble(w)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		fmt.Sprintf("next: %s", text),
		spew.Sdump(Decode(w)),
	)
}

// Debug starts an interactive TUI over the machine: space or j steps one
// instruction, q quits. The program and handler images must already be
// loaded.
func (c *Computer) Debug() error {
	_, err := tea.NewProgram(model{
		c:      c,
		offset: c.ProgramCounter &^ 15,
	}).Run()
	return err
}
