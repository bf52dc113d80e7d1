package fs

import (
	"bytes"
	"testing"

	"rvos/kernel/sbi"
)

func TestStdStreams(t *testing.T) {
	defer sbi.Register(nil)

	var out bytes.Buffer
	fw := sbi.NewHostFirmware(&out)
	sbi.Register(fw)

	files := NewStdDescriptors()
	if len(files) != 3 || files[FdStdin] != Stdin || files[FdStdout] != Stdout || files[FdStderr] != Stdout {
		t.Fatal("expected the standard descriptor layout stdin/stdout/stdout")
	}

	if Stdin.Writable() || !Stdin.Readable() {
		t.Fatal("expected stdin to be read-only")
	}
	if Stdout.Readable() || !Stdout.Writable() {
		t.Fatal("expected stdout to be write-only")
	}

	if n, err := Stdout.Write([]byte("hi user\n")); n != 8 || err != nil {
		t.Fatalf("expected (8, nil); got (%d, %v)", n, err)
	}
	if exp, got := "hi user\n", out.String(); exp != got {
		t.Fatalf("expected console output %q; got %q", exp, got)
	}

	buf := make([]byte, 4)
	if _, err := Stdin.Read(buf); err != ErrWouldBlock {
		t.Fatalf("expected ErrWouldBlock with no pending input; got %v", err)
	}

	fw.QueueInput([]byte("ab"))
	n, err := Stdin.Read(buf)
	if n != 1 || err != nil {
		t.Fatalf("expected a single byte per read; got (%d, %v)", n, err)
	}
	if buf[0] != 'a' {
		t.Fatalf("expected to read 'a'; got %q", buf[0])
	}

	if _, err := Stdin.Write([]byte("x")); err == nil {
		t.Fatal("expected writing to stdin to fail")
	}
	if _, err := Stdout.Read(buf); err == nil {
		t.Fatal("expected reading from stdout to fail")
	}
}
