package program

import (
	"testing"

	"github.com/arvandi/mips32/internal/memory"
)

func TestLoaderPlacesTextContiguously(t *testing.T) {
	img := NewImage()
	loader := NewLoader(img)

	code := []byte{0x01, 0x02, 0x03, 0x04}
	loader.Load(memory.Text, 0x00400000, code)

	v, ok := img.Map.LoadWord(memory.ContextUser, 0x00400000)
	if !ok || v != 0x04030201 {
		t.Fatalf("got %#x, %v", v, ok)
	}
}

func TestLoaderLabeled(t *testing.T) {
	img := NewImage()
	loader := NewLoader(img)

	loader.LoadLabeled(memory.Text, 0x00400000, []byte{0, 0, 0, 0}, "main")

	labels := img.Labels(memory.Text)
	if len(labels) != 1 || labels[0].Name != "main" || labels[0].Position != 0x00400000 {
		t.Fatalf("unexpected labels: %+v", labels)
	}
}

func TestImageDeniesUserFromKernelSections(t *testing.T) {
	img := NewImage()

	if _, ok := img.Map.LoadWord(memory.ContextUser, 0x80000000); ok {
		t.Fatal("expected user context to be denied access to ktext")
	}

	if _, ok := img.Map.LoadWord(memory.ContextKernel, 0x80000000); !ok {
		t.Fatal("expected kernel context to be permitted access to ktext")
	}
}
