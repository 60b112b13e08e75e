package shtp

import "testing"

func TestPutHeader(t *testing.T) {
	tests := []struct {
		name         string
		length       uint16
		continuation bool
		channel      uint8
		sequence     uint8
		want         [HeaderSize]byte
	}{
		{
			name: "S1 single fragment",
			length: 7, continuation: false, channel: 2, sequence: 0,
			want: [HeaderSize]byte{0x07, 0x00, 0x02, 0x00},
		},
		{
			name: "S2 frame 1 (non-continuation, full chunk)",
			length: 64, continuation: false, channel: 3, sequence: 0,
			want: [HeaderSize]byte{0x40, 0x00, 0x03, 0x00},
		},
		{
			name: "S2 frame 2 (continuation)",
			length: 24, continuation: true, channel: 3, sequence: 1,
			want: [HeaderSize]byte{0x18, 0x80, 0x03, 0x01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, HeaderSize)
			putHeader(buf, tt.length, tt.continuation, tt.channel, tt.sequence)
			for i := range buf {
				if buf[i] != tt.want[i] {
					t.Errorf("byte %d = 0x%02x, want 0x%02x", i, buf[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseHeader_RoundTrip(t *testing.T) {
	tests := []struct {
		name         string
		length       uint16
		continuation bool
		channel      uint8
		sequence     uint8
	}{
		{"short", 7, false, 2, 0},
		{"full chunk non-continuation", 64, false, 3, 0},
		{"continuation", 24, true, 3, 1},
		{"max length", 0x7FFF, true, 255, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, HeaderSize)
			putHeader(buf, tt.length, tt.continuation, tt.channel, tt.sequence)
			hdr := parseHeader(buf)
			if hdr.length != tt.length {
				t.Errorf("length = %d, want %d", hdr.length, tt.length)
			}
			if hdr.continuation != tt.continuation {
				t.Errorf("continuation = %v, want %v", hdr.continuation, tt.continuation)
			}
			if hdr.channel != tt.channel {
				t.Errorf("channel = %d, want %d", hdr.channel, tt.channel)
			}
			if hdr.sequence != tt.sequence {
				t.Errorf("sequence = %d, want %d", hdr.sequence, tt.sequence)
			}
		})
	}
}
