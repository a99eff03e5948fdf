// Package quad provides the shared fullscreen quad used by every
// screen-space pass.
package quad

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Quad is a two-triangle fullscreen quad in NDC with texcoords.
type Quad struct {
	vao uint32
	vbo uint32
}

// New uploads the quad geometry.
func New() *Quad {
	// pos.xy, uv.xy
	vertices := []float32{
		-1, -1, 0, 0,
		1, -1, 1, 0,
		1, 1, 1, 1,
		-1, -1, 0, 0,
		1, 1, 1, 1,
		-1, 1, 0, 1,
	}

	q := &Quad{}
	gl.GenVertexArrays(1, &q.vao)
	gl.BindVertexArray(q.vao)

	gl.GenBuffers(1, &q.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return q
}

// Draw issues the six vertices. The caller binds the program and its
// input textures first.
func (q *Quad) Draw() {
	gl.BindVertexArray(q.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// Destroy releases the quad's buffers.
func (q *Quad) Destroy() {
	if q.vao != 0 {
		gl.DeleteVertexArrays(1, &q.vao)
		q.vao = 0
	}
	if q.vbo != 0 {
		gl.DeleteBuffers(1, &q.vbo)
		q.vbo = 0
	}
}
