package model

import (
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/logger"
)

// Draw renders every mesh under the world transform mat, in load order.
// An empty Model draws nothing.
func (m *Model) Draw(mat mgl32.Mat4) {
	for i := range m.meshes {
		m.drawMesh(&m.meshes[i], mat)
	}
}

// drawMesh issues one indexed draw call from the record's client-side
// arrays. Texture coordinate attributes stay enabled through the draw
// call and are disabled with the rest afterwards.
func (m *Model) drawMesh(mesh *Mesh, mat mgl32.Mat4) {
	rec := mesh.record
	if rec == nil {
		logger.Warn("null mesh encountered during draw")
		return
	}
	if len(mesh.indices) == 0 || len(rec.Positions) == 0 {
		return
	}

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)

	gl.UniformMatrix4fv(m.sp.U("M"), 1, false, &mat[0])

	vertexAttr := m.sp.A("vertex")
	if vertexAttr >= 0 {
		gl.EnableVertexAttribArray(uint32(vertexAttr))
		gl.VertexAttribPointer(uint32(vertexAttr), 3, gl.FLOAT, false, 0, gl.Ptr(rec.Positions))
	}

	for _, attr := range mesh.texCoordAttribs {
		if attr < 0 || rec.NumUVChannels() == 0 {
			continue
		}
		gl.EnableVertexAttribArray(uint32(attr))
		gl.VertexAttribPointer(uint32(attr), 2, gl.FLOAT, false, 0, gl.Ptr(rec.TexCoords[0]))
	}

	for i, tex := range mesh.textures {
		gl.ActiveTexture(uint32(gl.TEXTURE0 + i))
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.Uniform1i(m.sp.U(fmt.Sprintf("textureMap%d", i)), int32(i))
	}

	normalAttr := m.sp.A("normal")
	if normalAttr >= 0 && len(rec.Normals) > 0 {
		gl.EnableVertexAttribArray(uint32(normalAttr))
		gl.VertexAttribPointer(uint32(normalAttr), 3, gl.FLOAT, false, 0, gl.Ptr(rec.Normals))
	}

	gl.DrawElements(gl.TRIANGLES, int32(len(mesh.indices)), gl.UNSIGNED_INT, gl.Ptr(mesh.indices))

	if vertexAttr >= 0 {
		gl.DisableVertexAttribArray(uint32(vertexAttr))
	}
	for _, attr := range mesh.texCoordAttribs {
		if attr >= 0 {
			gl.DisableVertexAttribArray(uint32(attr))
		}
	}
	if normalAttr >= 0 && len(rec.Normals) > 0 {
		gl.DisableVertexAttribArray(uint32(normalAttr))
	}
}
