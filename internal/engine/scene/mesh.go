package scene

import (
	gomath "math"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/helioscene/helios/internal/engine/shader"
)

// Material holds the surface parameters the geometry and forward passes read.
type Material struct {
	Albedo      mgl32.Vec3
	Emissive    float32 // emissive factor stored in the albedo alpha channel
	Alpha       float32 // 1 = opaque
	Transparent bool
}

// Mesh is an uploaded triangle mesh with a world transform and material.
// Vertex layout: position(3) normal(3) texcoord(2), interleaved.
type Mesh struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32

	Position mgl32.Vec3
	Scale    float32
	Yaw      float32 // rotation around Y, radians

	Material Material

	baseRadius float32
}

const vertexStride = 8 * 4

// newMesh uploads interleaved vertex data and an index buffer.
func newMesh(vertices []float32, indices []uint32, baseRadius float32) *Mesh {
	m := &Mesh{
		Scale:      1,
		Material:   Material{Albedo: mgl32.Vec3{0.8, 0.8, 0.8}, Alpha: 1},
		baseRadius: baseRadius,
		indexCount: int32(len(indices)),
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, vertexStride, nil)
	gl.EnableVertexAttribArray(0)

	// Normal attribute (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, vertexStride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	// Texcoord attribute (location = 2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, vertexStride, gl.PtrOffset(6*4))
	gl.EnableVertexAttribArray(2)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return m
}

// ModelMatrix returns translate * rotateY * scale.
func (m *Mesh) ModelMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(m.Position.X(), m.Position.Y(), m.Position.Z()).
		Mul4(mgl32.HomogRotate3DY(m.Yaw)).
		Mul4(mgl32.Scale3D(m.Scale, m.Scale, m.Scale))
}

// WorldPosition returns the mesh origin in world space.
func (m *Mesh) WorldPosition() mgl32.Vec3 { return m.Position }

// BoundingRadius returns the world-space bounding sphere radius.
func (m *Mesh) BoundingRadius() float32 { return m.baseRadius * m.Scale }

// Transparent reports whether the mesh belongs in the forward blend pass.
func (m *Mesh) Transparent() bool { return m.Material.Transparent }

// Render binds transform and material onto the program and draws.
func (m *Mesh) Render(program *shader.Program) {
	program.SetMat4("uModel", m.ModelMatrix())
	program.SetVec3("uAlbedo", m.Material.Albedo)
	program.SetFloat("uEmissive", m.Material.Emissive)
	program.SetFloat("uAlpha", m.Material.Alpha)

	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// Destroy releases the mesh's GPU buffers.
func (m *Mesh) Destroy() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
}

// NewCube creates a unit cube centered on the origin.
func NewCube() *Mesh {
	faces := []struct {
		normal mgl32.Vec3
		a, b   mgl32.Vec3 // in-plane basis
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}

	var vertices []float32
	var indices []uint32
	for fi, f := range faces {
		for _, corner := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := f.normal.Mul(0.5).
				Add(f.a.Mul(corner[0] * 0.5)).
				Add(f.b.Mul(corner[1] * 0.5))
			vertices = append(vertices,
				p.X(), p.Y(), p.Z(),
				f.normal.X(), f.normal.Y(), f.normal.Z(),
				corner[0]*0.5+0.5, corner[1]*0.5+0.5,
			)
		}
		base := uint32(fi * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	// Half-diagonal of a unit cube.
	return newMesh(vertices, indices, float32(gomath.Sqrt(3))/2)
}

// NewPlane creates a flat quad of the given half-extent in the XZ plane.
func NewPlane(halfExtent float32) *Mesh {
	e := halfExtent
	vertices := []float32{
		-e, 0, -e, 0, 1, 0, 0, 0,
		e, 0, -e, 0, 1, 0, 1, 0,
		e, 0, e, 0, 1, 0, 1, 1,
		-e, 0, e, 0, 1, 0, 0, 1,
	}
	indices := []uint32{0, 2, 1, 0, 3, 2}
	return newMesh(vertices, indices, e*float32(gomath.Sqrt2))
}

// NewSphere creates a UV sphere of radius 0.5.
func NewSphere(stacks, sectors int) *Mesh {
	if stacks < 3 {
		stacks = 3
	}
	if sectors < 3 {
		sectors = 3
	}

	var vertices []float32
	var indices []uint32
	radius := float32(0.5)

	for i := 0; i <= stacks; i++ {
		phi := gomath.Pi/2 - gomath.Pi*float64(i)/float64(stacks)
		y := float32(gomath.Sin(phi))
		r := float32(gomath.Cos(phi))
		for j := 0; j <= sectors; j++ {
			theta := 2 * gomath.Pi * float64(j) / float64(sectors)
			x := r * float32(gomath.Cos(theta))
			z := r * float32(gomath.Sin(theta))
			vertices = append(vertices,
				x*radius, y*radius, z*radius,
				x, y, z,
				float32(j)/float32(sectors), float32(i)/float32(stacks),
			)
		}
	}

	ring := uint32(sectors + 1)
	for i := 0; i < stacks; i++ {
		for j := 0; j < sectors; j++ {
			a := uint32(i)*ring + uint32(j)
			b := a + ring
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}

	return newMesh(vertices, indices, radius)
}
