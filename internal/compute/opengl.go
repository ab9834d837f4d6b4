package compute

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// jacobiShader relaxes interior pressure cells against the divergence
// field. One dispatch is one Jacobi iteration; the host swaps buffer
// bindings between iterations.
const jacobiShader = `#version 430
layout(local_size_x = 16, local_size_y = 16) in;

layout(std430, binding = 0) readonly buffer PIn { float pIn[]; };
layout(std430, binding = 1) writeonly buffer POut { float pOut[]; };
layout(std430, binding = 2) readonly buffer Div { float div[]; };

uniform int width;
uniform int height;

void main() {
    int x = int(gl_GlobalInvocationID.x);
    int y = int(gl_GlobalInvocationID.y);
    if (x >= width || y >= height) return;
    int i = y * width + x;
    if (x == 0 || y == 0 || x == width - 1 || y == height - 1) {
        pOut[i] = 0.0;
        return;
    }
    float sum = pIn[i-1] + pIn[i+1] + pIn[i-width] + pIn[i+width];
    pOut[i] = (div[i] + sum) * 0.25;
}
`

// OpenGLBackend accelerates the pressure solve with a compute shader.
// Init must run on the thread that owns the GL context; until then the
// backend reports unavailable and every dispatch falls through to the
// CPU. Generic row dispatch always stays on the CPU — only the Jacobi
// solve is worth the transfer cost.
type OpenGLBackend struct {
	Program     uint32
	SSBOA       uint32
	SSBOB       uint32
	SSBODiv     uint32
	Initialized bool

	capacity int
	cpu      *CPUBackend
}

func NewOpenGLBackend() *OpenGLBackend {
	return &OpenGLBackend{cpu: NewCPUBackend()}
}

func (c *OpenGLBackend) Name() string {
	if c.Initialized {
		return "opengl"
	}
	return "opengl (not initialized)"
}

func (c *OpenGLBackend) Available() bool { return c.Initialized }

func (c *OpenGLBackend) ForRows(y0, y1 int, fn func(yStart, yEnd int)) {
	c.cpu.ForRows(y0, y1, fn)
}

// Init compiles the Jacobi program and allocates SSBOs for up to
// maxCells pressure cells. Requires a current GL 4.3 context.
func (c *OpenGLBackend) Init(maxCells int) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("compute: opengl init: %w", err)
	}

	program, err := createComputeProgram(jacobiShader)
	if err != nil {
		return err
	}
	c.Program = program
	c.capacity = maxCells

	size := maxCells * 4
	for _, ssbo := range []*uint32{&c.SSBOA, &c.SSBOB, &c.SSBODiv} {
		gl.GenBuffers(1, ssbo)
		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, *ssbo)
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	}

	c.Initialized = true
	return nil
}

func (c *OpenGLBackend) Cleanup() {
	if !c.Initialized {
		return
	}
	gl.DeleteBuffers(1, &c.SSBOA)
	gl.DeleteBuffers(1, &c.SSBOB)
	gl.DeleteBuffers(1, &c.SSBODiv)
	gl.DeleteProgram(c.Program)
	c.Initialized = false
}

// SolvePressure uploads the pressure and divergence fields, ping-pongs
// the Jacobi dispatch for the requested iteration count, and reads the
// result back into pressure. Returns false when the backend is not
// ready or the grid exceeds the allocated SSBO capacity.
func (c *OpenGLBackend) SolvePressure(pressure, div []float64, w, h, iterations int) bool {
	n := w * h
	if !c.Initialized || n > c.capacity || iterations < 1 {
		return false
	}

	pF := make([]float32, n)
	divF := make([]float32, n)
	for i := 0; i < n; i++ {
		pF[i] = float32(pressure[i])
		divF[i] = float32(div[i])
	}

	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, c.SSBOA)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, n*4, gl.Ptr(pF))
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, c.SSBODiv)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, n*4, gl.Ptr(divF))

	gl.UseProgram(c.Program)
	gl.Uniform1i(gl.GetUniformLocation(c.Program, gl.Str("width\x00")), int32(w))
	gl.Uniform1i(gl.GetUniformLocation(c.Program, gl.Str("height\x00")), int32(h))
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 2, c.SSBODiv)

	src, dst := c.SSBOA, c.SSBOB
	groupsX := uint32((w + 15) / 16)
	groupsY := uint32((h + 15) / 16)
	for i := 0; i < iterations; i++ {
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, src)
		gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 1, dst)
		gl.DispatchCompute(groupsX, groupsY, 1)
		gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
		src, dst = dst, src
	}

	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, src)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, n*4, unsafe.Pointer(&pF[0]))

	for i := 0; i < n; i++ {
		pressure[i] = float64(pF[i])
	}
	return true
}

func createComputeProgram(source string) (uint32, error) {
	content := source + "\x00"

	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csources, free := gl.Strs(content)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("compute: compile jacobi shader: %v", log)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		return 0, fmt.Errorf("compute: link jacobi program")
	}

	gl.DeleteShader(shader)
	return program, nil
}
