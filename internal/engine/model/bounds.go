package model

import "github.com/go-gl/mathgl/mgl32"

// Bounds returns the axis-aligned bounding box over every loaded mesh.
// ok is false when the model has no vertices.
func (m *Model) Bounds() (min, max mgl32.Vec3, ok bool) {
	for _, mesh := range m.meshes {
		if mesh.record == nil {
			continue
		}
		pos := mesh.record.Positions
		for i := 0; i+2 < len(pos); i += 3 {
			v := mgl32.Vec3{pos[i], pos[i+1], pos[i+2]}
			if !ok {
				min, max = v, v
				ok = true
				continue
			}
			for axis := 0; axis < 3; axis++ {
				if v[axis] < min[axis] {
					min[axis] = v[axis]
				}
				if v[axis] > max[axis] {
					max[axis] = v[axis]
				}
			}
		}
	}
	return min, max, ok
}
