// Package memory implements the interpreter's storage backends and the
// address-space map that routes a guest address to one of them.
package memory

import "fmt"

// Context is the privilege level an access is made under. It gates which
// sections of the address space a Map will serve.
type Context int

const (
	ContextUser Context = iota
	ContextKernel
	ContextExternal
)

func (c Context) String() string {
	switch c {
	case ContextUser:
		return "user"
	case ContextKernel:
		return "kernel"
	case ContextExternal:
		return "external"
	default:
		return fmt.Sprintf("context(%d)", int(c))
	}
}

// Section names one of the six regions of the address space.
type Section int

const (
	Text Section = iota
	Extern
	Data
	Heap
	KText
	KData
)

func (s Section) String() string {
	switch s {
	case Text:
		return "text"
	case Extern:
		return "extern"
	case Data:
		return "data"
	case Heap:
		return "heap"
	case KText:
		return "ktext"
	case KData:
		return "kdata"
	default:
		return fmt.Sprintf("section(%d)", int(s))
	}
}

// classify returns the section an address belongs to, and whether the
// address is within the address space at all.
func classify(addr uint32) (Section, bool) {
	switch {
	case addr >= 0x00400000 && addr < 0x10000000:
		return Text, true
	case addr >= 0x10000000 && addr < 0x10010000:
		return Extern, true
	case addr >= 0x10010000 && addr < 0x10040000:
		return Data, true
	case addr >= 0x10040000 && addr < 0x80000000:
		return Heap, true
	case addr >= 0x80000000 && addr < 0x90000000:
		return KText, true
	case addr >= 0x90000000:
		return KData, true
	default:
		return 0, false
	}
}

// ReadWriter is the common contract every storage backend implements: a
// value is either present (absent addresses read as zero, per each
// backend's own rule) or the access falls outside the backend's bound.
type ReadWriter interface {
	ReadByte(offset uint32) (byte, bool)
	ReadHalfword(offset uint32) (uint16, bool)
	ReadWord(offset uint32) (uint32, bool)
	WriteByte(offset uint32, b byte) bool
	WriteHalfword(offset uint32, v uint16) bool
	WriteWord(offset uint32, v uint32) bool
}

// SectionOrigin is the address section's storage is relative to. Loaders
// use it to convert an absolute guest address into a section-relative
// offset before writing to that section's backend directly.
func SectionOrigin(s Section) uint32 {
	return sectionOrigin(s)
}

// sectionOrigin is the address each section's storage is relative to.
func sectionOrigin(s Section) uint32 {
	switch s {
	case Text:
		return 0x00400000
	case Extern:
		return 0x10000000
	case Data:
		return 0x10010000
	case Heap:
		return 0x10040000
	case KText:
		return 0x80000000
	case KData:
		return 0x90000000
	default:
		return 0
	}
}

// Map routes guest addresses to the backing store of the section they fall
// in, enforcing alignment and the section's access policy.
type Map struct {
	Text, Extern, Data, Heap, KText, KData ReadWriter
}

// NewMap creates a Map with the storage backend the specification
// prescribes for each section: Text and KText are densely-loaded-but-sparse
// Hybrid stores, Extern and Data are small Continuous stores, Heap and
// KData are sparse Segmented stores.
func NewMap() *Map {
	return &Map{
		Text:   NewHybrid(),
		Extern: NewContinuous(0x10000),
		Data:   NewContinuous(0x30000),
		Heap:   NewSegmented(),
		KText:  NewHybrid(),
		KData:  NewSegmented(),
	}
}

// StoreFor returns the storage backend for section, regardless of access
// policy. Loaders use it to place bytes directly; ordinary loads and stores
// go through LoadWord/StoreWord instead, which also enforce the policy.
func (m *Map) StoreFor(section Section) ReadWriter {
	return m.store(section)
}

func (m *Map) store(section Section) ReadWriter {
	switch section {
	case Text:
		return m.Text
	case Extern:
		return m.Extern
	case Data:
		return m.Data
	case Heap:
		return m.Heap
	case KText:
		return m.KText
	case KData:
		return m.KData
	default:
		return nil
	}
}

// allowed reports whether ctx may access section.
func allowed(ctx Context, section Section) bool {
	switch section {
	case KText, KData:
		return ctx == ContextKernel
	case Extern:
		return ctx == ContextUser || ctx == ContextKernel || ctx == ContextExternal
	default:
		return ctx == ContextUser || ctx == ContextKernel
	}
}

// resolve classifies addr, checks alignment and the access policy, and
// returns the backend and section-relative offset to read or write at.
// ok is false if the access must raise an architectural exception.
func (m *Map) resolve(ctx Context, addr uint32, align uint32) (ReadWriter, uint32, bool) {
	if addr&(align-1) != 0 {
		return nil, 0, false
	}

	section, inRange := classify(addr)
	if !inRange || !allowed(ctx, section) {
		return nil, 0, false
	}

	return m.store(section), addr - sectionOrigin(section), true
}

// LoadByte, LoadHalfword and LoadWord read from the address space under the
// given context. ok is false if the address is unmapped, misaligned, or
// denied by the access policy for ctx — the caller raises AddrLoadFetch.
func (m *Map) LoadByte(ctx Context, addr uint32) (byte, bool) {
	rw, off, ok := m.resolve(ctx, addr, 1)
	if !ok {
		return 0, false
	}

	v, _ := rw.ReadByte(off)

	return v, true
}

func (m *Map) LoadHalfword(ctx Context, addr uint32) (uint16, bool) {
	rw, off, ok := m.resolve(ctx, addr, 2)
	if !ok {
		return 0, false
	}

	v, _ := rw.ReadHalfword(off)

	return v, true
}

func (m *Map) LoadWord(ctx Context, addr uint32) (uint32, bool) {
	rw, off, ok := m.resolve(ctx, addr, 4)
	if !ok {
		return 0, false
	}

	v, _ := rw.ReadWord(off)

	return v, true
}

// StoreByte, StoreHalfword and StoreWord write to the address space under
// the given context. ok is false if the address is unmapped, misaligned, or
// denied — the caller raises AddrStore. A denied store never partially
// writes: resolve fails before any backend is touched.
func (m *Map) StoreByte(ctx Context, addr uint32, b byte) bool {
	rw, off, ok := m.resolve(ctx, addr, 1)
	if !ok {
		return false
	}

	return rw.WriteByte(off, b)
}

func (m *Map) StoreHalfword(ctx Context, addr uint32, v uint16) bool {
	rw, off, ok := m.resolve(ctx, addr, 2)
	if !ok {
		return false
	}

	return rw.WriteHalfword(off, v)
}

func (m *Map) StoreWord(ctx Context, addr uint32, v uint32) bool {
	rw, off, ok := m.resolve(ctx, addr, 4)
	if !ok {
		return false
	}

	return rw.WriteWord(off, v)
}
