// Package program holds a loaded guest image: its six labeled sections and
// the symbolic names a loader may attach to offsets within them.
package program

import "github.com/arvandi/mips32/internal/memory"

// Label names a position within a section. Labels are metadata only; they
// are never consulted by the execution engine. Loaders record them and
// Image.Labels returns them.
type Label struct {
	Position uint32
	Name     string
}

// Image is a complete, loaded guest program: a memory map plus the symbolic
// labels a loader recorded while placing code and data into it.
type Image struct {
	Map    *memory.Map
	labels map[memory.Section][]Label
}

// NewImage creates an empty Image with freshly allocated section storage.
func NewImage() *Image {
	return &Image{
		Map:    memory.NewMap(),
		labels: make(map[memory.Section][]Label),
	}
}

// AddLabel records a symbolic name at a position within section.
func (img *Image) AddLabel(section memory.Section, position uint32, name string) {
	img.labels[section] = append(img.labels[section], Label{Position: position, Name: name})
}

// Labels returns the labels recorded for section, in the order they were added.
func (img *Image) Labels(section memory.Section) []Label {
	return img.labels[section]
}
