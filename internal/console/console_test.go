package console

import (
	"strings"
	"testing"

	"github.com/rcornwell/fp11pp/internal/bus"
	"github.com/rcornwell/fp11pp/internal/fpp"
)

func newConsole() *Console {
	b := bus.New()
	return &Console{Bus: b, State: fpp.NewState(b)}
}

func TestSetAndShowAccumulator(t *testing.T) {
	c := newConsole()
	if err := c.cmdSet([]string{"ac2", "4080", "0000", "0000", "0000"}); err != nil {
		t.Fatalf("cmdSet: %v", err)
	}
	if c.State.AC[2][0] != 0x4080 {
		t.Fatalf("AC2 word0 = %#x", c.State.AC[2][0])
	}
	if err := c.cmdShow([]string{"ac2"}); err != nil {
		t.Fatalf("cmdShow: %v", err)
	}
}

func TestSetRejectsAccum6And7(t *testing.T) {
	c := newConsole()
	if err := c.cmdSet([]string{"ac6", "0", "0", "0", "0"}); err == nil {
		t.Fatalf("expected error setting ac6")
	}
	if err := c.cmdSet([]string{"ac7", "0", "0", "0", "0"}); err == nil {
		t.Fatalf("expected error setting ac7")
	}
}

func TestStepWithoutFetchErrors(t *testing.T) {
	c := newConsole()
	if err := c.cmdStep(nil); err == nil {
		t.Fatalf("expected error stepping with no Fetch configured")
	}
}

func TestDispatchQuit(t *testing.T) {
	c := newConsole()
	quit, err := c.dispatch("quit")
	if err != nil || !quit {
		t.Fatalf("dispatch(quit) = %v, %v", quit, err)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	c := newConsole()
	_, err := c.dispatch("frobnicate")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown-command error, got %v", err)
	}
}

func TestStepExecutesAndAdvancesViaFetch(t *testing.T) {
	c := newConsole()
	// CLRF AC0, register-direct form targeting AC0 itself: family=1
	// (single-operand, bits 11-8), ac field=0 (CLRF sub-opcode), mode=0
	// (register direct, register 0).
	instr := uint16(0x0100 | (0 << 6) | 0)
	called := false
	c.Fetch = func() (uint16, bool) {
		called = true
		return instr, true
	}
	if err := c.cmdStep(nil); err != nil {
		t.Fatalf("cmdStep: %v", err)
	}
	if !called {
		t.Fatalf("Fetch was not invoked")
	}
}
