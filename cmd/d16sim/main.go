// Command d16sim runs and interactively steps d16 programs. The run
// subcommand is plain cobra wiring; debug adapts the teacher
// (jawr-mos6502)'s cmd/tests/main.go termbox step-mode loop to the d16
// simulator's tick-at-a-time Step.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	term "github.com/nsf/termbox-go"

	"github.com/tinyproc/d16/asm"
	"github.com/tinyproc/d16/sim"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "d16sim",
		Short: "Simulator for the d16 instruction set",
	}

	var ticks int
	var memSize int
	var quiet bool

	runCmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Assemble and run a program to completion or a tick budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, start, words, err := loadProgram(args[0], memSize)
			if err != nil {
				return err
			}
			s.Memory.Load(0, start)
			s.Load(start, words)

			for i := 0; ticks == 0 || i < ticks; i++ {
				wasTerminated := s.CPU.Terminated()
				events := s.Tick()
				if !quiet {
					for _, ev := range events {
						fmt.Println(ev.String())
					}
				}
				if wasTerminated {
					break
				}
			}

			if s.CPU.Terminated() {
				fmt.Printf("terminated: exit code %d\n", s.Terminator.Code())
				os.Exit(int(s.Terminator.Code()))
			}
			fmt.Println("tick budget exhausted without termination")
			return nil
		},
	}
	runCmd.Flags().IntVar(&ticks, "ticks", 0, "tick budget (0 = unbounded)")
	runCmd.Flags().IntVar(&memSize, "mem", sim.DefaultMemorySize, "memory size in words")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the per-tick event trace")

	debugCmd := &cobra.Command{
		Use:   "debug [file]",
		Short: "Single-step a program, one tick per keypress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, start, words, err := loadProgram(args[0], memSize)
			if err != nil {
				return err
			}
			s.Memory.Load(0, start)
			s.Load(start, words)
			return runDebugger(s)
		},
	}
	debugCmd.Flags().IntVar(&memSize, "mem", sim.DefaultMemorySize, "memory size in words")

	rootCmd.AddCommand(runCmd, debugCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadProgram(path string, memSize int) (*sim.Simulator, uint16, []uint16, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, nil, err
	}
	start, words, err := asm.Assemble(string(src))
	if err != nil {
		return nil, 0, nil, err
	}
	return sim.NewSimulator(memSize), start, words, nil
}

// runDebugger drives the simulator one tick per Enter keypress, printing
// the register file and the tick's events. Ctrl-C quits, matching the
// teacher's cmd/tests/main.go step-mode key bindings.
func runDebugger(s *sim.Simulator) error {
	if err := term.Init(); err != nil {
		return fmt.Errorf("initializing termbox: %w", err)
	}
	defer term.Close()

	printStatus(s)

	for {
		ev := term.PollEvent()
		if ev.Type != term.EventKey {
			continue
		}
		switch ev.Key {
		case term.KeyCtrlC, term.KeyEsc:
			return nil
		case term.KeyEnter:
			wasTerminated := s.CPU.Terminated()
			events := s.Tick()
			term.Sync()
			for _, e := range events {
				fmt.Println(e.String())
			}
			if wasTerminated {
				// this tick only emitted the TerminateEvent above; nothing
				// left to step.
				return nil
			}
			printStatus(s)
		}
	}
}

func printStatus(s *sim.Simulator) {
	fmt.Println(s.CPU.Status().String())
}
