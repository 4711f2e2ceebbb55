// Command beta runs a binary image on the emulated machine.
//
//	beta -program prog.bin [-handler irq.bin] [-debug] [-trace]
//
// The program image is copied to the bottom of program memory and executed
// from PC 0 until HALT (or the step bound). Keyboard input is delivered as
// key-down interrupts; the optional handler image is installed at the
// handler vector in kernel memory.
package main

import (
	"flag"
	"fmt"
	"os"

	"beta/cpu"
)

func main() {
	program := flag.String("program", "", "program binary image (required)")
	handler := flag.String("handler", "", "interrupt handler binary image")
	psize := flag.Uint("psize", 4096, "program memory size in bytes")
	vsize := flag.Uint("vsize", 4096, "video memory size in bytes")
	ksize := flag.Uint("ksize", 4096, "kernel memory size in bytes")
	debug := flag.Bool("debug", false, "step interactively instead of running")
	trace := flag.Bool("trace", false, "disassemble each instruction as it runs")
	maxSteps := flag.Uint("max-steps", 0, "stop after this many steps (0 = run to HALT)")
	flag.Parse()

	if *program == "" {
		flag.Usage()
		os.Exit(2)
	}

	c := allocate(uint32(*psize), uint32(*vsize), uint32(*ksize))

	image, err := os.ReadFile(*program)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := c.Load(image); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(-2)
	}

	if *handler != "" {
		image, err := os.ReadFile(*handler)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if err := c.LoadInterruptHandler(image); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(-2)
		}
	}

	if *debug {
		if err := c.Debug(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		dumpState(c)
		return
	}

	keys, stop := startKeyboard()
	defer stop()

	steps := uint(0)
	for *maxSteps == 0 || steps < *maxSteps {
		// Interrupts are latched only at step boundaries: the keyboard
		// goroutine never touches the machine, it just queues bytes here.
		select {
		case b, ok := <-keys:
			if !ok { // stdin closed; run on without a keyboard
				keys = nil
				break
			}
			if b == 0x03 { // ctrl-c
				stop()
				fmt.Fprintln(os.Stderr, "interrupted")
				dumpState(c)
				return
			}
			c.RaiseInterrupt(0, b)
		default:
		}

		if *trace {
			pc := c.ProgramCounter
			if c.InterruptLine && pc < c.Mem.KernelBase() {
				pc = c.Mem.KernelBase() + cpu.HandlerOffset // Step enters the handler first
			}
			text, _ := cpu.Disassemble(c.Mem.GetWord(pc))
			fmt.Fprintf(os.Stderr, "%08x  %s\n", pc, text)
		}

		c.Step()
		steps++
		if c.Halted {
			break
		}
	}

	stop()
	dumpState(c)
}

// allocate builds the machine, converting an out-of-memory panic into the
// allocation-failure exit code.
func allocate(p, v, k uint32) *cpu.Computer {
	defer func() {
		if recover() != nil {
			fmt.Fprintln(os.Stderr, "cannot allocate machine memory")
			os.Exit(-1)
		}
	}()
	return cpu.New(p, v, k)
}

func dumpState(c *cpu.Computer) {
	fmt.Printf("halted=%v pc=%08x latest=%08x\n",
		c.Halted, c.ProgramCounter, c.Mem.LatestAccessed)
	for i := 0; i < 31; i++ {
		if v := c.Register(i); v != 0 {
			fmt.Printf("  R%-2d = %-11d (%08x)\n", i, v, uint32(v))
		}
	}
}
