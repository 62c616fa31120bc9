/*
   Diagnostic console: a liner-based REPL for single-stepping the FP11
   core, inspecting its architectural state and loading accumulator
   presets without a host CPU driving it.

   Modeled on a liner-based console reader + line-dispatch pattern
   common to emulator debuggers, trimmed from a ~40-command CPU/device
   debugger down to the handful fp11pp needs: step, run, show and set.
*/

package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/rcornwell/fp11pp/internal/bus"
	"github.com/rcornwell/fp11pp/internal/fpp"
	"github.com/rcornwell/fp11pp/internal/fpphex"
)

// Console drives a Bus+State pair interactively.
type Console struct {
	Bus   *bus.Bus
	State *fpp.State
	// Fetch returns the next instruction word and advances R7, or ok=false
	// on a fault (used by step/run; a diagnostic rig with no loaded image
	// can leave this nil and rely only on show/set).
	Fetch func() (instr uint16, ok bool)
}

var commands = []string{"step", "run", "show", "set", "quit", "help"}

// Run starts the interactive prompt loop; it returns when the user quits
// or aborts with Ctrl-D.
func (c *Console) Run() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var out []string
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, partial) {
				out = append(out, cmd)
			}
		}
		return out
	})

	for {
		input, err := line.Prompt("fp11pp> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			fmt.Println("error reading line:", err)
			return
		}
		line.AppendHistory(input)

		quit, err := c.dispatch(input)
		if err != nil {
			fmt.Println("error:", err)
		}
		if quit {
			return
		}
	}
}

func (c *Console) dispatch(input string) (quit bool, err error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, nil
	}
	switch strings.ToLower(fields[0]) {
	case "step":
		return false, c.cmdStep(fields[1:])
	case "run":
		return false, c.cmdRun(fields[1:])
	case "show":
		return false, c.cmdShow(fields[1:])
	case "set":
		return false, c.cmdSet(fields[1:])
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Println("commands: step [n], run [max], show fps|fec|fea|regs|ac<N>, set ac<N> <w0> <w1> <w2> <w3>, quit")
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
}

func (c *Console) cmdStep(args []string) error {
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("step: %w", err)
		}
		count = n
	}
	for i := 0; i < count; i++ {
		if err := c.stepOnce(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) cmdRun(args []string) error {
	max := 1 << 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		max = n
	}
	for i := 0; i < max; i++ {
		if err := c.stepOnce(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) stepOnce() error {
	if c.Fetch == nil {
		return errors.New("no image loaded: nothing to fetch")
	}
	instr, ok := c.Fetch()
	if !ok {
		return errors.New("fetch failed")
	}
	trap := c.State.Execute(instr)
	switch trap {
	case 0:
		fmt.Printf("executed %#o, no trap\n", instr)
	case fpp.FaultAbort:
		fmt.Printf("executed %#o, bus fault\n", instr)
	default:
		fmt.Printf("executed %#o, trap fec=%d\n", instr, trap)
	}
	return nil
}

func (c *Console) cmdShow(args []string) error {
	if len(args) == 0 {
		return errors.New("show: requires an argument")
	}
	switch strings.ToLower(args[0]) {
	case "fps":
		fmt.Printf("FPS = %#06x\n", c.State.FPS)
	case "fec":
		fmt.Printf("FEC = %d\n", c.State.FEC)
	case "fea":
		fmt.Printf("FEA = %#o\n", c.State.FEA)
	case "regs":
		for i := 0; i < 8; i++ {
			fmt.Printf("R%d = %#06o\n", i, c.Bus.Reg(i))
		}
	default:
		idx, err := accumIndex(args[0])
		if err != nil {
			return err
		}
		n := c.State.AC[idx]
		fmt.Printf("AC%d = %s\n", idx, fpphex.FormatNumber(n))
	}
	return nil
}

func (c *Console) cmdSet(args []string) error {
	if len(args) == 0 {
		return errors.New("set: requires an argument")
	}
	idx, err := accumIndex(args[0])
	if err != nil {
		return err
	}
	if len(args) != 5 {
		return fmt.Errorf("set ac%d: requires 4 hex words", idx)
	}
	var n fpp.Number
	for i, tok := range args[1:] {
		v, err := strconv.ParseUint(tok, 16, 16)
		if err != nil {
			return fmt.Errorf("set ac%d word %d: %w", idx, i, err)
		}
		n[i] = uint16(v)
	}
	c.State.AC[idx] = n
	return nil
}

func accumIndex(name string) (int, error) {
	name = strings.ToLower(name)
	if !strings.HasPrefix(name, "ac") {
		return 0, fmt.Errorf("unknown target %q", name)
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(name, "ac"))
	if err != nil || idx < 0 || idx >= 6 {
		return 0, fmt.Errorf("invalid accumulator %q", name)
	}
	return idx, nil
}
