// Package mesh loads the geometry drawn by the windowed frame.
package mesh

import (
	"embed"
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
)

//go:embed triangle.obj triangle.mtl
var fileSystem embed.FS

// Vertex is a 2D position in normalized device coordinates. Its memory layout
// is the vertex layout the pipeline consumes.
type Vertex struct {
	Position mgl32.Vec2
}

// Stride is the size in bytes of one Vertex in a vertex buffer.
var Stride = binary.Size(Vertex{})

// LoadTriangle decodes the embedded triangle mesh.
func LoadTriangle() ([]Vertex, error) {
	meshFile, err := fileSystem.Open("triangle.obj")
	if err != nil {
		return nil, err
	}
	defer meshFile.Close()

	matFile, err := fileSystem.Open("triangle.mtl")
	if err != nil {
		return nil, err
	}
	defer matFile.Close()

	return Decode(meshFile, matFile)
}

// Decode reads an OBJ mesh and returns its faces as a triangle list,
// dropping the z coordinate. Polygons are fanned into triangles.
func Decode(meshReader, matReader io.Reader) ([]Vertex, error) {
	decoder, err := obj.DecodeReader(meshReader, matReader)
	if err != nil {
		return nil, errors.Wrap(err, "decode mesh")
	}

	var vertices []Vertex
	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				for _, corner := range []int{0, i - 1, i} {
					vertInd := face.Vertices[corner]
					if vertInd < 0 || vertInd*3+2 >= len(decoder.Vertices) {
						return nil, errors.Errorf("decode mesh: vertex index %d out of range", vertInd)
					}
					vertices = append(vertices, Vertex{Position: mgl32.Vec2{
						decoder.Vertices[vertInd*3],
						decoder.Vertices[vertInd*3+1],
					}})
				}
			}
		}
	}

	if len(vertices) == 0 {
		return nil, errors.New("decode mesh: no faces")
	}
	return vertices, nil
}
