package scene

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
)

// Range locates one mesh inside a packed Geometry. Offsets are in bytes.
type Range struct {
	VertexOffset int
	IndexOffset  int
	IndexCount   int
}

// Geometry is every mesh packed into one byte image: all vertices first,
// then all indices starting at a 4 byte boundary.
type Geometry struct {
	Bytes  []byte
	Ranges []Range
}

const indexAlignment = 4

func Pack(meshes ...*Mesh) (*Geometry, error) {
	vertices := &bytes.Buffer{}
	indices := &bytes.Buffer{}
	g := &Geometry{}

	for _, m := range meshes {
		g.Ranges = append(g.Ranges, Range{
			VertexOffset: vertices.Len(),
			IndexOffset:  indices.Len(),
			IndexCount:   len(m.Indices),
		})
		if err := binary.Write(vertices, common.ByteOrder, m.Vertices); err != nil {
			return nil, errors.Wrap(err, "scene: pack vertices")
		}
		if err := binary.Write(indices, common.ByteOrder, m.Indices); err != nil {
			return nil, errors.Wrap(err, "scene: pack indices")
		}
		// keep every mesh's indices aligned
		if pad := indices.Len() % indexAlignment; pad != 0 {
			indices.Write(make([]byte, indexAlignment-pad))
		}
	}

	base := vertices.Len()
	if pad := base % indexAlignment; pad != 0 {
		base += indexAlignment - pad
	}
	for i := range g.Ranges {
		g.Ranges[i].IndexOffset += base
	}

	g.Bytes = make([]byte, base+indices.Len())
	copy(g.Bytes, vertices.Bytes())
	copy(g.Bytes[base:], indices.Bytes())
	return g, nil
}
