package glbackend

import (
	"embed"
	"fmt"
	"strconv"
	"strings"

	"voxel-render/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
)

//go:embed shaders/*.vert shaders/*.frag
var shaderFS embed.FS

// Shader is a linked OpenGL program.
type Shader struct {
	ID       uint32
	uniforms map[string]int32
}

// loadMeshSources returns the mesh shaders with the palette size filled in.
func loadMeshSources() (vert, frag string, err error) {
	v, err := shaderFS.ReadFile("shaders/mesh.vert")
	if err != nil {
		return "", "", fmt.Errorf("read vertex shader: %w", err)
	}
	f, err := shaderFS.ReadFile("shaders/mesh.frag")
	if err != nil {
		return "", "", fmt.Errorf("read fragment shader: %w", err)
	}
	size := strconv.Itoa(int(world.NumBlockTypes))
	return strings.ReplaceAll(string(v), "PALETTE_SIZE", size), string(f), nil
}

// NewShader compiles and links a program from GLSL sources.
func NewShader(vertexSrc, fragmentSrc string) (*Shader, error) {
	vs, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(msg))
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("failed to link program: %s", strings.TrimRight(msg, "\x00"))
	}
	return &Shader{ID: program, uniforms: make(map[string]int32)}, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(msg))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %s", strings.TrimRight(msg, "\x00"))
	}
	return shader, nil
}

func (s *Shader) Use() {
	gl.UseProgram(s.ID)
}

func (s *Shader) location(name string) int32 {
	if loc, ok := s.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(s.ID, gl.Str(name+"\x00"))
	s.uniforms[name] = loc
	return loc
}

func (s *Shader) SetVector3(name string, x, y, z float32) {
	gl.Uniform3f(s.location(name), x, y, z)
}

// SetVector3Array uploads consecutive RGB/XYZ triples.
func (s *Shader) SetVector3Array(name string, values []float32) {
	if len(values) < 3 {
		return
	}
	gl.Uniform3fv(s.location(name), int32(len(values)/3), &values[0])
}

func (s *Shader) SetMatrix4(name string, value *float32) {
	gl.UniformMatrix4fv(s.location(name), 1, false, value)
}

func (s *Shader) Delete() {
	gl.DeleteProgram(s.ID)
}
