package kfmt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"rvos/kernel"
)

func TestPanic(t *testing.T) {
	defer func(origHalt func()) {
		cpuHaltFn = origHalt
		outputSink = nil
	}(cpuHaltFn)

	var halted bool
	cpuHaltFn = func() { halted = true }

	specs := []struct {
		cause interface{}
		exp   string
	}{
		{&kernel.Error{Module: "mm", Message: "out of memory"}, "[mm] unrecoverable error: out of memory"},
		{"something went wrong", "[rt] unrecoverable error: something went wrong"},
		{errors.New("wrapped cause"), "[rt] unrecoverable error: wrapped cause"},
	}

	for specIndex, spec := range specs {
		var buf bytes.Buffer
		outputSink = &buf
		halted = false

		Panic(spec.cause)

		if !halted {
			t.Errorf("[spec %d] expected panic to halt the cpu", specIndex)
		}
		if got := buf.String(); !strings.Contains(got, spec.exp) {
			t.Errorf("[spec %d] expected output to contain %q; got %q", specIndex, spec.exp, got)
		}
		if got := buf.String(); !strings.Contains(got, "*** kernel panic: system halted ***") {
			t.Errorf("[spec %d] expected output to contain the panic banner; got %q", specIndex, got)
		}
	}
}
