package memory

import "sort"

// span is a contiguous, densely-packed region of a Hybrid store.
type span struct {
	index uint32 // offset this span starts at
	data  []byte
}

func (s span) end() uint32 { return s.index + uint32(len(s.data)) }
func (s span) contains(offset uint32) bool {
	return offset >= s.index && offset < s.end()
}

// Hybrid composes one or more Continuous spans with a Segmented fallback. It
// suits sections that are usually loaded as one contiguous blob (code) but
// must still tolerate sparse or self-modifying writes outside that blob
// without pre-allocating the whole address range for it.
type Hybrid struct {
	spans    []span // kept sorted by index, non-overlapping
	fallback *Segmented
}

// NewHybrid creates an empty Hybrid store.
func NewHybrid() *Hybrid {
	return &Hybrid{fallback: NewSegmented()}
}

// InsertContinuous adds a contiguous span of bytes starting at origin. It is
// the mechanism a loader uses to place a program image's code directly into
// the store instead of trickling it in byte by byte through the segmented
// fallback.
func (h *Hybrid) InsertContinuous(origin uint32, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)

	s := span{index: origin, data: cp}

	i := sort.Search(len(h.spans), func(i int) bool { return h.spans[i].index >= origin })
	h.spans = append(h.spans, span{})
	copy(h.spans[i+1:], h.spans[i:])
	h.spans[i] = s
}

func (h *Hybrid) findSpan(offset uint32) (span, bool) {
	for _, s := range h.spans {
		if s.contains(offset) {
			return s, true
		}
	}

	return span{}, false
}

// ReadByte returns the byte at offset, preferring a continuous span and
// falling back to the sparse store.
func (h *Hybrid) ReadByte(offset uint32) (byte, bool) {
	if s, ok := h.findSpan(offset); ok {
		return s.data[offset-s.index], true
	}

	return h.fallback.ReadByte(offset)
}

// ReadHalfword returns the little-endian halfword at offset, byte-composed
// so that a read straddling a span/fallback boundary is always correct.
func (h *Hybrid) ReadHalfword(offset uint32) (uint16, bool) {
	lo, ok := h.ReadByte(offset)
	if !ok {
		return 0, false
	}

	hi, ok := h.ReadByte(offset + 1)
	if !ok {
		return 0, false
	}

	return uint16(lo) | uint16(hi)<<8, true
}

// ReadWord returns the little-endian word at offset, byte-composed.
func (h *Hybrid) ReadWord(offset uint32) (uint32, bool) {
	lo, ok := h.ReadHalfword(offset)
	if !ok {
		return 0, false
	}

	hi, ok := h.ReadHalfword(offset + 2)
	if !ok {
		return 0, false
	}

	return uint32(lo) | uint32(hi)<<16, true
}

// WriteByte stores a byte at offset, into its span if one covers it,
// otherwise into the sparse fallback.
func (h *Hybrid) WriteByte(offset uint32, b byte) bool {
	for i := range h.spans {
		if h.spans[i].contains(offset) {
			h.spans[i].data[offset-h.spans[i].index] = b
			return true
		}
	}

	return h.fallback.WriteByte(offset, b)
}

// WriteHalfword stores a little-endian halfword at offset.
func (h *Hybrid) WriteHalfword(offset uint32, v uint16) bool {
	return h.WriteByte(offset, byte(v)) && h.WriteByte(offset+1, byte(v>>8))
}

// WriteWord stores a little-endian word at offset.
func (h *Hybrid) WriteWord(offset uint32, v uint32) bool {
	return h.WriteHalfword(offset, uint16(v)) && h.WriteHalfword(offset+2, uint16(v>>16))
}
