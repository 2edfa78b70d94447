package mesh

import "fmt"

// maxUint16Vertices is the last vertex index representable in a 16-bit index
// buffer. Renderers commonly switch index width at this boundary; the switch
// must be explicit, never a silent truncation.
const maxUint16Vertices = 1 << 16

// IndexFormat identifies the index buffer width a renderer should use.
type IndexFormat int

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

func (f IndexFormat) String() string {
	if f == IndexFormatUint16 {
		return "uint16"
	}
	return "uint32"
}

// PreferredIndexFormat returns the narrowest index format that can address
// every vertex of the mesh.
func (m *Mesh) PreferredIndexFormat() IndexFormat {
	if m.VertexCount() <= maxUint16Vertices {
		return IndexFormatUint16
	}
	return IndexFormatUint32
}

// Indices16 converts the index buffer to 16-bit width. It fails if any index
// does not fit rather than truncating.
func (m *Mesh) Indices16() ([]uint16, error) {
	out := make([]uint16, len(m.Indices))
	for i, idx := range m.Indices {
		if idx >= maxUint16Vertices {
			return nil, fmt.Errorf("index %d at position %d exceeds uint16 range", idx, i)
		}
		out[i] = uint16(idx)
	}
	return out, nil
}
