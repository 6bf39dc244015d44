package binary

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func reader(b ...byte) *Reader {
	return NewReader(bytes.NewReader(b))
}

func TestUnsignedLEB128(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, math.MaxUint32},
	}
	for _, tt := range tests {
		w := NewWriter()
		w.WriteU32(tt.want)
		if !bytes.Equal(w.Bytes(), tt.encoded) {
			t.Errorf("WriteU32(%d) = %x, want %x", tt.want, w.Bytes(), tt.encoded)
		}

		r := reader(tt.encoded...)
		got, err := r.ReadU32()
		if err != nil {
			t.Errorf("ReadU32(%x): %v", tt.encoded, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadU32(%x) = %d, want %d", tt.encoded, got, tt.want)
		}
		if r.Position() != len(tt.encoded) {
			t.Errorf("ReadU32(%x) consumed %d bytes", tt.encoded, r.Position())
		}
	}
}

func TestSignedLEB128(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x3f}, 63},
		{[]byte{0x40}, -64},
		{[]byte{0xc0, 0x00}, 64},
		{[]byte{0x7f}, -1},
		{[]byte{0x80, 0x7f}, -128},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x78}, math.MinInt32},
	}
	for _, tt := range tests {
		w := NewWriter()
		w.WriteS64(tt.want)
		if !bytes.Equal(w.Bytes(), tt.encoded) {
			t.Errorf("WriteS64(%d) = %x, want %x", tt.want, w.Bytes(), tt.encoded)
		}

		got, err := reader(tt.encoded...).ReadS32()
		if err != nil {
			t.Errorf("ReadS32(%x): %v", tt.encoded, err)
			continue
		}
		if int64(got) != tt.want {
			t.Errorf("ReadS32(%x) = %d, want %d", tt.encoded, got, tt.want)
		}
	}
}

func TestSignedLEB128Wide(t *testing.T) {
	for _, v := range []int64{math.MinInt64, math.MaxInt64, 1 << 40, -(1 << 40)} {
		w := NewWriter()
		w.WriteS64(v)
		got, err := reader(w.Bytes()...).ReadS64()
		if err != nil {
			t.Fatalf("ReadS64: %v", err)
		}
		if got != v {
			t.Errorf("round trip %d = %d", v, got)
		}
	}
}

func TestLEB128Overflow(t *testing.T) {
	_, err := reader(0x80, 0x80, 0x80, 0x80, 0x80, 0x01).ReadU32()
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("ReadU32 = %v, want overflow", err)
	}
	_, err = reader(0x80, 0x80, 0x80, 0x80, 0x80, 0x80).ReadS32()
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("ReadS32 = %v, want overflow", err)
	}
	_, err = reader(0x80, 0x80).ReadU32()
	if !errors.Is(err, io.EOF) {
		t.Errorf("truncated ReadU32 = %v, want EOF", err)
	}
}

func TestFloats(t *testing.T) {
	w := NewWriter()
	w.WriteF32(1.5)
	w.WriteF64(-2.25)
	r := reader(w.Bytes()...)

	f32, err := r.ReadF32()
	if err != nil || f32 != 1.5 {
		t.Errorf("ReadF32 = %v, %v", f32, err)
	}
	f64, err := r.ReadF64()
	if err != nil || f64 != -2.25 {
		t.Errorf("ReadF64 = %v, %v", f64, err)
	}
}

func TestNames(t *testing.T) {
	w := NewWriter()
	w.WriteName("memory")
	name, err := reader(w.Bytes()...).ReadName()
	if err != nil || name != "memory" {
		t.Errorf("ReadName = %q, %v", name, err)
	}

	if _, err := reader(0x02, 0xff, 0xfe).ReadName(); err == nil {
		t.Error("invalid UTF-8 accepted")
	}
	if _, err := reader(0x05, 'a').ReadName(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated name = %v", err)
	}
}

func TestHeader(t *testing.T) {
	w := NewWriter()
	w.WriteU32LE(0x6D736100)
	if !bytes.Equal(w.Bytes(), []byte("\x00asm")) {
		t.Errorf("WriteU32LE = %x", w.Bytes())
	}
	v, err := reader(w.Bytes()...).ReadU32LE()
	if err != nil || v != 0x6D736100 {
		t.Errorf("ReadU32LE = %x, %v", v, err)
	}
}

func TestParseError(t *testing.T) {
	r := reader(0x01, 0x02)
	_, _ = r.ReadByte()
	err := r.WrapError("code", io.ErrUnexpectedEOF)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("WrapError returned %T", err)
	}
	if pe.Position != 1 || pe.Section != "code" {
		t.Errorf("ParseError = %+v", pe)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("ParseError does not unwrap")
	}
	if got := err.Error(); got != "wasm: code at position 1: unexpected EOF" {
		t.Errorf("Error() = %q", got)
	}
}
