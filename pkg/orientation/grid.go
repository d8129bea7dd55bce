package orientation

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// DefaultDensity is the number of subdivisions of the octahedron edge used
// when none is configured.
const DefaultDensity = 70

// ErrInvalidDensity is returned for a non-positive integration density.
var ErrInvalidDensity = errors.New("orientation: integration density must be positive")

// Volume is the solid angle covered by a grid.
type Volume int

const (
	Octant Volume = iota
	Hemisphere
	Sphere
)

func (v Volume) String() string {
	switch v {
	case Octant:
		return "octant"
	case Hemisphere:
		return "hemisphere"
	case Sphere:
		return "sphere"
	}
	return fmt.Sprintf("Volume(%d)", int(v))
}

// ParseVolume parses "octant", "hemisphere" or "sphere".
func ParseVolume(s string) (Volume, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "octant":
		return Octant, nil
	case "hemisphere":
		return Hemisphere, nil
	case "sphere":
		return Sphere, nil
	}
	return Octant, fmt.Errorf("orientation: unknown integration volume %q", s)
}

func (v Volume) octants() [][3]float64 {
	signs := [][3]float64{{1, 1, 1}}
	if v >= Hemisphere {
		signs = append(signs, [3]float64{-1, 1, 1}, [3]float64{-1, -1, 1}, [3]float64{1, -1, 1})
	}
	if v == Sphere {
		for _, s := range signs[:4] {
			signs = append(signs, [3]float64{s[0], s[1], -1})
		}
	}
	return signs
}

// Node is one crystallite orientation: the azimuth Alpha and polar angle Beta
// of the rotor axis in the crystal frame, in radians, with its quadrature weight.
type Node struct {
	Alpha  float64
	Beta   float64
	Weight float64
}

// Grid is a set of weighted orientations whose weights sum to one.
type Grid struct {
	Density int
	Volume  Volume
	Nodes   []Node
}

// NewGrid builds an octahedral grid: the face of the octahedron in each
// covered octant is divided into density steps per edge, and every lattice
// point (i, j, k) with i+j+k = density is projected onto the unit sphere with
// weight proportional to 1/r³. Points on an octant edge carry half the weight
// of interior points and octahedron vertices a sixth, matching the share of
// lattice triangles they touch.
func NewGrid(density int, volume Volume) (*Grid, error) {
	if density <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDensity, density)
	}
	if volume < Octant || volume > Sphere {
		return nil, fmt.Errorf("orientation: invalid volume %v", volume)
	}

	octants := volume.octants()
	perOctant := (density + 1) * (density + 2) / 2
	nodes := make([]Node, 0, perOctant*len(octants))

	total := 0.0
	for _, sign := range octants {
		for i := 0; i <= density; i++ {
			for j := 0; j <= density-i; j++ {
				k := density - i - j
				x, y, z := sign[0]*float64(i), sign[1]*float64(j), sign[2]*float64(k)
				r2 := x*x + y*y + z*z
				r := math.Sqrt(r2)
				w := boundaryFactor(i, j, k) / (r2 * r)
				nodes = append(nodes, Node{
					Alpha:  math.Atan2(y, x),
					Beta:   math.Acos(z / r),
					Weight: w,
				})
				total += w
			}
		}
	}
	for i := range nodes {
		nodes[i].Weight /= total
	}
	return &Grid{Density: density, Volume: volume, Nodes: nodes}, nil
}

func boundaryFactor(i, j, k int) float64 {
	zeros := 0
	for _, n := range [3]int{i, j, k} {
		if n == 0 {
			zeros++
		}
	}
	switch zeros {
	case 1:
		return 0.5
	case 2:
		return 1.0 / 6
	}
	return 1
}

// Len returns the number of nodes.
func (g *Grid) Len() int { return len(g.Nodes) }

// TotalWeight returns the sum of node weights.
func (g *Grid) TotalWeight() float64 {
	sum := 0.0
	for _, n := range g.Nodes {
		sum += n.Weight
	}
	return sum
}

// Chunks splits the nodes into contiguous runs of at most size nodes.
func (g *Grid) Chunks(size int) [][]Node {
	if size <= 0 {
		size = len(g.Nodes)
	}
	var out [][]Node
	for start := 0; start < len(g.Nodes); start += size {
		end := min(start+size, len(g.Nodes))
		out = append(out, g.Nodes[start:end])
	}
	return out
}
