package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies which entry point of a shader source is being
// addressed.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage, marked @vertex in WGSL.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage, marked @fragment in WGSL.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
// It holds the parsed WGSL source and the module descriptor used for
// pipeline creation.
type shader struct {
	key           string
	source        string
	vertexEntry   string
	fragmentEntry string
	module        *wgpu.ShaderModuleDescriptor
}

// Shader defines the interface for a loaded and parsed WGSL shader. Each
// shader carries one source with both a @vertex and a @fragment entry point,
// so a single module serves a whole render pipeline.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// EntryPoint returns the entry point function name for the given stage.
	//
	// Parameters:
	//   - shaderType: the stage to look up (ShaderTypeVertex or ShaderTypeFragment)
	//
	// Returns:
	//   - string: the entry point name parsed from the source
	EntryPoint(shaderType ShaderType) string

	// Module returns the wgpu.ShaderModuleDescriptor for this shader, which is built from the NewShader function.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader creates a new Shader from embedded WGSL source. The vertex and
// fragment entry point names are parsed from the source; both must be
// present since every pipeline renders.
//
// Panics when the source is empty or either entry point is missing, since
// sources are embedded at build time and a miss is a programming error.
//
// Parameters:
//   - key: a unique identifier for the shader, used as the module label and for caching
//   - source: the WGSL source code containing one @vertex and one @fragment function
//
// Returns:
//   - Shader: a new Shader instance with the parsed entry points
func NewShader(key, source string) Shader {
	if source == "" {
		panic(fmt.Sprintf("shader: %s must have WGSL source", key))
	}
	s := &shader{
		key:    key,
		source: source,
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: source,
			},
		},
	}
	s.vertexEntry = parseEntryPoint(source, ShaderTypeVertex)
	s.fragmentEntry = parseEntryPoint(source, ShaderTypeFragment)
	if s.vertexEntry == "" || s.fragmentEntry == "" {
		panic(fmt.Sprintf("shader: %s must declare both a @vertex and a @fragment entry point", key))
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint(shaderType ShaderType) string {
	switch shaderType {
	case ShaderTypeVertex:
		return s.vertexEntry
	case ShaderTypeFragment:
		return s.fragmentEntry
	default:
		return ""
	}
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
