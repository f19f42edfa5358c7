package compositor

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/composite.wgsl
var compositeShaderSource string

// Shader entry points.
const (
	vertexEntry   = "vs_main"
	fragmentEntry = "fs_main"
)

// compileComposite validates the composite shader and returns its SPIR-V.
func compileComposite() ([]uint32, error) {
	if compositeShaderSource == "" {
		return nil, fmt.Errorf("composite shader source is empty")
	}
	spirv, err := naga.Compile(compositeShaderSource)
	if err != nil {
		return nil, fmt.Errorf("compile composite shader: %w", err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("compile composite shader: SPIR-V length %d is not word aligned", len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}
