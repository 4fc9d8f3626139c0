package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestIsRunning_FindsOwnTestBinary(t *testing.T) {
	p := NewProcessProbe(zap.NewNop())

	// The test binary itself is always in the process table.
	self := filepath.Base(os.Args[0])
	if !p.IsRunning(context.Background(), self) {
		t.Errorf("IsRunning(%q) = false, want true for own test binary", self)
	}
}

func TestIsRunning_UnknownProcess(t *testing.T) {
	p := NewProcessProbe(zap.NewNop())

	if p.IsRunning(context.Background(), "no-such-process-zq9x7k") {
		t.Error("IsRunning returned true for a process that cannot exist")
	}
}

func TestIsRunning_Idempotent(t *testing.T) {
	p := NewProcessProbe(zap.NewNop())
	ctx := context.Background()

	names := []string{filepath.Base(os.Args[0]), "no-such-process-zq9x7k"}
	for _, name := range names {
		first := p.IsRunning(ctx, name)
		second := p.IsRunning(ctx, name)
		if first != second {
			t.Errorf("IsRunning(%q) not idempotent: %v then %v", name, first, second)
		}
	}
}
