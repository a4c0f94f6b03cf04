package gltfscene

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// buildFaces splits a primitive's index stream into per-face index lists.
// Triangle strips and fans become independent triangle faces when the
// Triangulate step is requested; otherwise the whole strip stays a single
// face. Line and point modes always produce 2- and 1-index faces.
func buildFaces(mode gltf.PrimitiveMode, indices []uint32, flags PostProcess) (PrimitiveKind, [][]uint32, error) {
	switch mode {
	case gltf.PrimitiveTriangles:
		if len(indices)%3 != 0 {
			return 0, nil, errors.Errorf("triangle index count %d not divisible by 3", len(indices))
		}
		faces := make([][]uint32, 0, len(indices)/3)
		for i := 0; i+2 < len(indices); i += 3 {
			faces = append(faces, []uint32{indices[i], indices[i+1], indices[i+2]})
		}
		return KindTriangle, faces, nil

	case gltf.PrimitiveTriangleStrip:
		if flags&Triangulate == 0 {
			return KindTriangle, [][]uint32{indices}, nil
		}
		var faces [][]uint32
		for i := 0; i+2 < len(indices); i++ {
			// Strip winding alternates per triangle.
			if i%2 == 0 {
				faces = append(faces, []uint32{indices[i], indices[i+1], indices[i+2]})
			} else {
				faces = append(faces, []uint32{indices[i+1], indices[i], indices[i+2]})
			}
		}
		return KindTriangle, faces, nil

	case gltf.PrimitiveTriangleFan:
		if flags&Triangulate == 0 {
			return KindTriangle, [][]uint32{indices}, nil
		}
		var faces [][]uint32
		for i := 1; i+1 < len(indices); i++ {
			faces = append(faces, []uint32{indices[0], indices[i], indices[i+1]})
		}
		return KindTriangle, faces, nil

	case gltf.PrimitiveLines:
		if len(indices)%2 != 0 {
			return 0, nil, errors.Errorf("line index count %d not divisible by 2", len(indices))
		}
		faces := make([][]uint32, 0, len(indices)/2)
		for i := 0; i+1 < len(indices); i += 2 {
			faces = append(faces, []uint32{indices[i], indices[i+1]})
		}
		return KindLine, faces, nil

	case gltf.PrimitiveLineStrip:
		var faces [][]uint32
		for i := 0; i+1 < len(indices); i++ {
			faces = append(faces, []uint32{indices[i], indices[i+1]})
		}
		return KindLine, faces, nil

	case gltf.PrimitiveLineLoop:
		var faces [][]uint32
		for i := 0; i+1 < len(indices); i++ {
			faces = append(faces, []uint32{indices[i], indices[i+1]})
		}
		if len(indices) > 2 {
			faces = append(faces, []uint32{indices[len(indices)-1], indices[0]})
		}
		return KindLine, faces, nil

	case gltf.PrimitivePoints:
		faces := make([][]uint32, 0, len(indices))
		for _, idx := range indices {
			faces = append(faces, []uint32{idx})
		}
		return KindPoint, faces, nil

	default:
		return 0, nil, errors.Errorf("unsupported primitive mode %d", mode)
	}
}
