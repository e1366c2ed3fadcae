package memory

import "testing"

func TestContinuousReadWriteWord(t *testing.T) {
	c := NewContinuous(16)

	if !c.WriteWord(4, 0x01020304) {
		t.Fatal("write failed")
	}

	v, ok := c.ReadWord(4)
	if !ok || v != 0x01020304 {
		t.Fatalf("got %#x, %v", v, ok)
	}

	b0, _ := c.ReadByte(4)
	b3, _ := c.ReadByte(7)

	if b0 != 0x04 || b3 != 0x01 {
		t.Fatalf("not little-endian: b0=%#x b3=%#x", b0, b3)
	}
}

func TestContinuousOutOfBounds(t *testing.T) {
	c := NewContinuous(4)

	if _, ok := c.ReadByte(4); ok {
		t.Fatal("expected out-of-bounds read to fail")
	}

	if c.WriteByte(4, 1) {
		t.Fatal("expected out-of-bounds write to fail")
	}
}

func TestSegmentedZeroOnFirstTouch(t *testing.T) {
	s := NewSegmented()

	v, ok := s.ReadWord(100000)
	if !ok || v != 0 {
		t.Fatalf("expected zero on first touch, got %#x, %v", v, ok)
	}
}

func TestSegmentedAllocatesOnWrite(t *testing.T) {
	s := NewSegmented()

	s.WriteWord(0x1000, 0xdeadbeef)

	v, ok := s.ReadWord(0x1000)
	if !ok || v != 0xdeadbeef {
		t.Fatalf("got %#x, %v", v, ok)
	}

	// A distant address stays zero; it must not share a frame.
	v2, _ := s.ReadWord(0x1000 + frameSize*4)
	if v2 != 0 {
		t.Fatalf("expected zero at distant frame, got %#x", v2)
	}
}

func TestSegmentedCrossesFrameBoundary(t *testing.T) {
	s := NewSegmented()

	addr := uint32(frameSize - 2)
	s.WriteWord(addr, 0x11223344)

	v, ok := s.ReadWord(addr)
	if !ok || v != 0x11223344 {
		t.Fatalf("boundary-crossing word mismatch: got %#x, %v", v, ok)
	}
}

func TestHybridSpanAndFallback(t *testing.T) {
	h := NewHybrid()
	h.InsertContinuous(0, []byte{0x01, 0x02, 0x03, 0x04})

	v, ok := h.ReadWord(0)
	if !ok || v != 0x04030201 {
		t.Fatalf("span read mismatch: got %#x, %v", v, ok)
	}

	// Outside the span, falls back to the sparse store; unread is zero.
	v2, ok := h.ReadByte(1000)
	if !ok || v2 != 0 {
		t.Fatalf("fallback read mismatch: got %#x, %v", v2, ok)
	}

	if !h.WriteByte(1000, 0x42) {
		t.Fatal("fallback write failed")
	}

	v3, _ := h.ReadByte(1000)
	if v3 != 0x42 {
		t.Fatalf("fallback write not observed: got %#x", v3)
	}
}

func TestHybridReadSpanningSpanAndFallback(t *testing.T) {
	h := NewHybrid()
	h.InsertContinuous(0, []byte{0xAA, 0xBB})
	h.WriteByte(2, 0xCC)
	h.WriteByte(3, 0xDD)

	v, ok := h.ReadWord(0)
	if !ok || v != 0xDDCCBBAA {
		t.Fatalf("spanning read mismatch: got %#x, %v", v, ok)
	}
}

func TestMapClassifiesSections(t *testing.T) {
	cases := []struct {
		addr uint32
		want Section
	}{
		{0x00400000, Text},
		{0x0FFFFFFF, Text},
		{0x10000000, Extern},
		{0x10010000, Data},
		{0x10040000, Heap},
		{0x80000000, KText},
		{0x90000000, KData},
		{0xFFFFFFFF, KData},
	}

	for _, c := range cases {
		got, ok := classify(c.addr)
		if !ok || got != c.want {
			t.Errorf("classify(%#x) = %v, %v; want %v, true", c.addr, got, ok, c.want)
		}
	}
}

func TestMapUserCannotAccessKernelSections(t *testing.T) {
	m := NewMap()

	if _, ok := m.LoadWord(ContextUser, 0x80000000); ok {
		t.Fatal("expected user access to ktext to be denied")
	}

	if _, ok := m.LoadWord(ContextKernel, 0x80000000); !ok {
		t.Fatal("expected kernel access to ktext to succeed")
	}
}

func TestMapMisalignedAccessDenied(t *testing.T) {
	m := NewMap()

	if _, ok := m.LoadWord(ContextUser, 0x10010001); ok {
		t.Fatal("expected misaligned word load to be denied")
	}

	if _, ok := m.LoadHalfword(ContextUser, 0x10010001); ok {
		t.Fatal("expected misaligned halfword load to be denied")
	}
}

func TestMapLoadStoreRoundTrip(t *testing.T) {
	m := NewMap()

	if !m.StoreWord(ContextUser, 0x10010000, 0xCAFEBABE) {
		t.Fatal("store failed")
	}

	v, ok := m.LoadWord(ContextUser, 0x10010000)
	if !ok || v != 0xCAFEBABE {
		t.Fatalf("got %#x, %v", v, ok)
	}
}

func TestMapOutOfRangeAddressDenied(t *testing.T) {
	m := NewMap()

	if _, ok := m.LoadByte(ContextUser, 0x00000000); ok {
		t.Fatal("expected address below .text to be denied")
	}
}
