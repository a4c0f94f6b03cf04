package gltfscene

import (
	"encoding/binary"
	"math"
)

// joinIdenticalVertices merges vertices whose position, normal, and every
// UV channel match bit-for-bit, then remaps face indices. Tangents are not
// part of the key; they are computed after joining.
func joinIdenticalVertices(rec *MeshRecord) {
	count := rec.VertexCount()
	if count == 0 {
		return
	}

	seen := make(map[string]uint32, count)
	remap := make([]uint32, count)
	var kept []uint32

	key := make([]byte, 0, (3+3+2*len(rec.TexCoords))*4)
	for v := 0; v < count; v++ {
		key = key[:0]
		key = appendVec(key, rec.Positions[v*3:v*3+3])
		if len(rec.Normals) >= (v+1)*3 {
			key = appendVec(key, rec.Normals[v*3:v*3+3])
		}
		for _, uv := range rec.TexCoords {
			if len(uv) >= (v+1)*2 {
				key = appendVec(key, uv[v*2:v*2+2])
			}
		}

		if existing, ok := seen[string(key)]; ok {
			remap[v] = existing
			continue
		}
		idx := uint32(len(kept))
		seen[string(key)] = idx
		remap[v] = idx
		kept = append(kept, uint32(v))
	}

	if len(kept) == count {
		return
	}

	rec.Positions = gatherVec(rec.Positions, kept, 3)
	if rec.Normals != nil {
		rec.Normals = gatherVec(rec.Normals, kept, 3)
	}
	for i, uv := range rec.TexCoords {
		rec.TexCoords[i] = gatherVec(uv, kept, 2)
	}
	for _, face := range rec.Faces {
		for i, idx := range face {
			face[i] = remap[idx]
		}
	}
}

func appendVec(key []byte, v []float32) []byte {
	for _, f := range v {
		key = binary.LittleEndian.AppendUint32(key, math.Float32bits(f))
	}
	return key
}

func gatherVec(src []float32, kept []uint32, stride int) []float32 {
	out := make([]float32, 0, len(kept)*stride)
	for _, v := range kept {
		out = append(out, src[int(v)*stride:int(v)*stride+stride]...)
	}
	return out
}

// calcTangents accumulates per-triangle tangents and orthonormalizes them
// against the vertex normals. Requires normals and a first UV channel;
// records without either keep a nil tangent buffer.
func calcTangents(rec *MeshRecord) {
	count := rec.VertexCount()
	if rec.Kind != KindTriangle || count == 0 || len(rec.Normals) < count*3 || rec.NumUVChannels() == 0 {
		return
	}
	uv := rec.TexCoords[0]
	if len(uv) < count*2 {
		return
	}

	acc := make([]float32, count*3)
	for _, face := range rec.Faces {
		if len(face) != 3 {
			continue
		}
		i0, i1, i2 := int(face[0]), int(face[1]), int(face[2])

		e1x := rec.Positions[i1*3] - rec.Positions[i0*3]
		e1y := rec.Positions[i1*3+1] - rec.Positions[i0*3+1]
		e1z := rec.Positions[i1*3+2] - rec.Positions[i0*3+2]
		e2x := rec.Positions[i2*3] - rec.Positions[i0*3]
		e2y := rec.Positions[i2*3+1] - rec.Positions[i0*3+1]
		e2z := rec.Positions[i2*3+2] - rec.Positions[i0*3+2]

		du1 := uv[i1*2] - uv[i0*2]
		dv1 := uv[i1*2+1] - uv[i0*2+1]
		du2 := uv[i2*2] - uv[i0*2]
		dv2 := uv[i2*2+1] - uv[i0*2+1]

		det := du1*dv2 - du2*dv1
		if det == 0 {
			continue
		}
		r := 1.0 / det

		tx := (e1x*dv2 - e2x*dv1) * r
		ty := (e1y*dv2 - e2y*dv1) * r
		tz := (e1z*dv2 - e2z*dv1) * r

		for _, vi := range []int{i0, i1, i2} {
			acc[vi*3] += tx
			acc[vi*3+1] += ty
			acc[vi*3+2] += tz
		}
	}

	tangents := make([]float32, count*3)
	for v := 0; v < count; v++ {
		nx := rec.Normals[v*3]
		ny := rec.Normals[v*3+1]
		nz := rec.Normals[v*3+2]
		tx := acc[v*3]
		ty := acc[v*3+1]
		tz := acc[v*3+2]

		// Gram-Schmidt against the normal.
		d := nx*tx + ny*ty + nz*tz
		tx -= nx * d
		ty -= ny * d
		tz -= nz * d

		mag := float32(math.Sqrt(float64(tx*tx + ty*ty + tz*tz)))
		if mag < 1e-6 {
			tx, ty, tz = 1, 0, 0
		} else {
			tx /= mag
			ty /= mag
			tz /= mag
		}
		tangents[v*3] = tx
		tangents[v*3+1] = ty
		tangents[v*3+2] = tz
	}
	rec.Tangents = tangents
}
