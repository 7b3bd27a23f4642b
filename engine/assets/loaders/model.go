package loaders

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/math"
	"github.com/spaghettifunk/sdengine/engine/resources"
)

// ModelLoader parses Wavefront OBJ files. Every object, group or material
// switch starts a new mesh; polygons are triangulated as fans.
type ModelLoader struct{}

func NewModelLoader() *ModelLoader {
	return &ModelLoader{}
}

func (ml *ModelLoader) Load(path string) (any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	p := &objParser{name: textureName(path), skipped: make(map[string]int)}
	scanner := bufio.NewScanner(file)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		if err := p.parseLine(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filepath.Base(path), lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for statement, n := range p.skipped {
		core.LogDebug("model '%s': skipped %d '%s' statements", p.name, n, statement)
	}
	return p.model()
}

func (ml *ModelLoader) Unload(payload any) error {
	if _, ok := payload.(*resources.Model); !ok {
		return fmt.Errorf("model loader cannot unload %T", payload)
	}
	return nil
}

type objVertexKey struct {
	position, texcoord, normal int
}

type objMesh struct {
	mesh    *resources.Mesh
	lookup  map[objVertexKey]uint32
	normals bool
}

type objParser struct {
	name      string
	positions []math.Vec3
	texcoords []math.Vec2
	normals   []math.Vec3

	skipped  map[string]int
	meshes   []*objMesh
	current  *objMesh
	group    string
	material string
}

func (p *objParser) parseLine(line string) error {
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, math.NewVec3(v[0], v[1], v[2]))
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.texcoords = append(p.texcoords, math.NewVec2(v[0], v[1]))
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, math.NewVec3(v[0], v[1], v[2]))
	case "o", "g":
		p.group = strings.Join(fields[1:], " ")
		p.current = nil
	case "usemtl":
		p.material = strings.Join(fields[1:], " ")
		p.current = nil
	case "f":
		return p.parseFace(fields[1:])
	default:
		// smoothing groups, material libraries, lines, curves
		p.skipped[fields[0]]++
	}
	return nil
}

func (p *objParser) parseFace(corners []string) error {
	if len(corners) < 3 {
		return fmt.Errorf("face needs at least 3 vertices, got %d", len(corners))
	}
	m := p.mesh()

	indices := make([]uint32, len(corners))
	for i, corner := range corners {
		key, err := p.parseCorner(corner)
		if err != nil {
			return err
		}
		idx, ok := m.lookup[key]
		if !ok {
			vert := math.Vertex3D{
				Position: p.positions[key.position],
				Colour:   math.NewVec4One(),
			}
			if key.texcoord >= 0 {
				vert.Texcoord = p.texcoords[key.texcoord]
			}
			if key.normal >= 0 {
				vert.Normal = p.normals[key.normal]
				m.normals = true
			}
			idx = uint32(len(m.mesh.Vertices))
			m.mesh.Vertices = append(m.mesh.Vertices, vert)
			m.lookup[key] = idx
		}
		indices[i] = idx
	}

	for i := 1; i+1 < len(indices); i++ {
		m.mesh.Indices = append(m.mesh.Indices, indices[0], indices[i], indices[i+1])
	}
	return nil
}

// parseCorner resolves "v", "v/vt", "v//vn" or "v/vt/vn" into zero-based
// indices; -1 marks a missing component. Negative OBJ indices count back
// from the end.
func (p *objParser) parseCorner(corner string) (objVertexKey, error) {
	parts := strings.Split(corner, "/")
	key := objVertexKey{position: -1, texcoord: -1, normal: -1}

	counts := []int{len(p.positions), len(p.texcoords), len(p.normals)}
	targets := []*int{&key.position, &key.texcoord, &key.normal}
	for i, part := range parts {
		if i > 2 {
			return key, fmt.Errorf("malformed face vertex '%s'", corner)
		}
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return key, fmt.Errorf("malformed face vertex '%s': %w", corner, err)
		}
		if n < 0 {
			n = counts[i] + n
		} else {
			n--
		}
		if n < 0 || n >= counts[i] {
			return key, fmt.Errorf("face vertex '%s' index out of range", corner)
		}
		*targets[i] = n
	}
	if key.position < 0 {
		return key, fmt.Errorf("face vertex '%s' has no position", corner)
	}
	return key, nil
}

func (p *objParser) mesh() *objMesh {
	if p.current != nil {
		return p.current
	}
	name := p.group
	if name == "" {
		name = fmt.Sprintf("%s_%d", p.name, len(p.meshes))
	}
	p.current = &objMesh{
		mesh:   &resources.Mesh{Name: name, MaterialName: p.material},
		lookup: make(map[objVertexKey]uint32),
	}
	p.meshes = append(p.meshes, p.current)
	return p.current
}

func (p *objParser) model() (*resources.Model, error) {
	model := &resources.Model{Name: p.name}
	for _, m := range p.meshes {
		if len(m.mesh.Indices) == 0 {
			continue
		}
		if !m.normals {
			math.GenerateNormals(m.mesh.Vertices, m.mesh.Indices)
		}
		m.mesh.Extents = math.CalculateExtents(m.mesh.Vertices)
		m.mesh.Center = m.mesh.Extents.Min.Add(m.mesh.Extents.Max).MulScalar(0.5)
		model.Meshes = append(model.Meshes, m.mesh)
	}
	if len(model.Meshes) == 0 {
		return nil, fmt.Errorf("model '%s' has no faces", p.name)
	}

	model.Extents = model.Meshes[0].Extents
	for _, m := range model.Meshes[1:] {
		model.Extents.Min = math.NewVec3(min(model.Extents.Min.X, m.Extents.Min.X), min(model.Extents.Min.Y, m.Extents.Min.Y), min(model.Extents.Min.Z, m.Extents.Min.Z))
		model.Extents.Max = math.NewVec3(max(model.Extents.Max.X, m.Extents.Max.X), max(model.Extents.Max.Y, m.Extents.Max.Y), max(model.Extents.Max.Z, m.Extents.Max.Z))
	}
	return model, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number '%s'", fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}
