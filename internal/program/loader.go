package program

import "github.com/arvandi/mips32/internal/memory"

// Loader places raw bytes into an Image's sections. There is no textual or
// object-file encoding here: callers supply the bytes a section should
// hold, already decoded by whatever produced them.
type Loader struct {
	image *Image
}

// NewLoader creates a Loader that writes into image.
func NewLoader(image *Image) *Loader {
	return &Loader{image: image}
}

// Load writes bytes into section starting at the absolute guest address
// origin. For Text and KText — the two Hybrid-backed sections — the bytes
// are placed as one contiguous span, the fast path a loader exists for.
// For the other sections the bytes are copied in one at a time through the
// section's own backend.
func (l *Loader) Load(section memory.Section, origin uint32, bytes []byte) {
	offset := origin - memory.SectionOrigin(section)

	switch rw := l.image.Map.StoreFor(section).(type) {
	case *memory.Hybrid:
		rw.InsertContinuous(offset, bytes)
	case *memory.Continuous:
		rw.Load(offset, bytes)
	default:
		for i, b := range bytes {
			rw.WriteByte(offset+uint32(i), b)
		}
	}
}

// LoadLabeled is Load plus recording a symbolic name for origin.
func (l *Loader) LoadLabeled(section memory.Section, origin uint32, bytes []byte, name string) {
	l.Load(section, origin, bytes)
	l.image.AddLabel(section, origin, name)
}
