// Package shader provides OpenGL shader compilation and load-time uniform
// reflection.
package shader

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Program is a linked shader program plus its capability descriptor: the set
// of active uniforms discovered once at link time. Passes query the
// descriptor at setup instead of probing uniform names per draw call.
type Program struct {
	id       uint32
	uniforms map[string]int32
}

// Load compiles and links a program and reflects its active uniforms.
func Load(vertexSrc, fragmentSrc string) (*Program, error) {
	id, err := CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}

	p := &Program{
		id:       id,
		uniforms: make(map[string]int32),
	}
	p.reflectUniforms()
	return p, nil
}

// reflectUniforms builds the uniform location table from the linked program.
func (p *Program) reflectUniforms() {
	var count int32
	gl.GetProgramiv(p.id, gl.ACTIVE_UNIFORMS, &count)

	buf := make([]byte, 256)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(p.id, uint32(i), int32(len(buf)), &length, &size, &xtype, &buf[0])
		name := string(buf[:length])

		// Arrays reflect as "name[0]"; register the bare name as well.
		base := strings.TrimSuffix(name, "[0]")
		loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
		p.uniforms[name] = loc
		if base != name {
			p.uniforms[base] = loc
		}
	}
}

// ID returns the underlying GL program object.
func (p *Program) ID() uint32 { return p.id }

// Use binds the program for rendering.
func (p *Program) Use() { gl.UseProgram(p.id) }

// Uniform returns the location for a uniform, or -1 if it is not active.
// Setting location -1 is silently ignored by GL, which is exactly the
// disabled/fallback path optional resources need.
func (p *Program) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

// SetMat4 uploads a matrix uniform.
func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(p.Uniform(name), 1, false, &m[0])
}

// SetVec3 uploads a vec3 uniform.
func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	gl.Uniform3f(p.Uniform(name), v.X(), v.Y(), v.Z())
}

// SetVec2 uploads a vec2 uniform.
func (p *Program) SetVec2(name string, v mgl32.Vec2) {
	gl.Uniform2f(p.Uniform(name), v.X(), v.Y())
}

// SetFloat uploads a float uniform.
func (p *Program) SetFloat(name string, v float32) {
	gl.Uniform1f(p.Uniform(name), v)
}

// SetInt uploads an int (or sampler unit) uniform.
func (p *Program) SetInt(name string, v int32) {
	gl.Uniform1i(p.Uniform(name), v)
}

// SetBool uploads a bool uniform as 0/1.
func (p *Program) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	gl.Uniform1i(p.Uniform(name), i)
}

// SetVec3Slice uploads an array of vec3 uniforms.
func (p *Program) SetVec3Slice(name string, vs []mgl32.Vec3) {
	if len(vs) == 0 {
		return
	}
	gl.Uniform3fv(p.Uniform(name), int32(len(vs)), &vs[0][0])
}

// SetIntSlice uploads an array of int uniforms.
func (p *Program) SetIntSlice(name string, vs []int32) {
	if len(vs) == 0 {
		return
	}
	gl.Uniform1iv(p.Uniform(name), int32(len(vs)), &vs[0])
}

// SetFloatSlice uploads an array of float uniforms.
func (p *Program) SetFloatSlice(name string, vs []float32) {
	if len(vs) == 0 {
		return
	}
	gl.Uniform1fv(p.Uniform(name), int32(len(vs)), &vs[0])
}

// Destroy deletes the GL program.
func (p *Program) Destroy() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}

// CompileProgram compiles vertex and fragment shaders and links them into a
// raw program object. Returns the program ID or an error if compilation or
// linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", string(log))
	}

	return program, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}

	return shader, nil
}
