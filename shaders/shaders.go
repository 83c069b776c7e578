// Package shaders holds the triangle shader and compiles it to SPIR-V.
package shaders

import (
	_ "embed"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/naga"
)

const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"

	// SPIRVMagic is the first word of every SPIR-V module.
	SPIRVMagic uint32 = 0x07230203
)

//go:embed triangle.wgsl
var triangleSource string

// Compile translates the triangle shader to SPIR-V words. Both entry points
// live in the same module.
func Compile() ([]uint32, error) {
	return CompileWGSL(triangleSource)
}

func CompileWGSL(source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, errors.Wrap(err, "compile shader")
	}
	if len(spirv)%4 != 0 {
		return nil, errors.Errorf("compile shader: SPIR-V length %d is not a multiple of 4", len(spirv))
	}

	return bytesToBytecode(spirv), nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}
