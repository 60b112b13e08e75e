package streamhal

import (
	"net"
	"testing"
	"time"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	a := New(c1)
	b := New(c2)
	if err := a.Open(); err != nil {
		t.Fatalf("a.Open: %v", err)
	}
	if err := b.Open(); err != nil {
		t.Fatalf("b.Open: %v", err)
	}
	defer a.Close()
	defer b.Close()

	want := []byte{0x07, 0x00, 0x02, 0x00, 0x01, 0x02, 0x03}
	n, err := a.Write(want)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(want) {
		t.Fatalf("Write returned n=%d, want %d", n, len(want))
	}

	buf := make([]byte, b.MaxTransferIn())
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n, _, err := b.Read(buf)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if n > 0 {
			got := buf[:n]
			if string(got) != string(want) {
				t.Fatalf("Read = %v, want %v", got, want)
			}
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for frame")
}

func TestRead_NoDataIsNonBlocking(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	b := New(c2)
	if err := b.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	buf := make([]byte, b.MaxTransferIn())
	n, _, err := b.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 0 {
		t.Fatalf("Read returned n=%d with nothing written, want 0", n)
	}
}
