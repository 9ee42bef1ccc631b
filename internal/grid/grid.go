package grid

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/kula-app/farmware-plant-grid/internal/config"
)

// cellWidth is the width of every cell in the rendered coordinate table
const cellWidth = 6

// Point is a single plant position in the farm designer coordinate system
type Point struct {
	X int
	Y int
}

// Grid holds the generated points of a configuration together with the distinct axis values
type Grid struct {
	Points  []Point
	UniqueX []int
	UniqueY []int
}

// New generates the grid for the given configuration
func New(cfg *config.Config) *Grid {
	points := Generate(cfg)

	xs := sets.New[int]()
	ys := sets.New[int]()
	for _, p := range points {
		xs.Insert(p.X)
		ys.Insert(p.Y)
	}

	return &Grid{
		Points:  points,
		UniqueX: sets.List(xs),
		UniqueY: sets.List(ys),
	}
}

// Generate returns XNum*YNum points, iterating y fastest:
// (x0,y0), (x0,y1), ..., (x1,y0), ...
// Zero steps produce duplicate points, which are kept.
func Generate(cfg *config.Config) []Point {
	if cfg.XNum <= 0 || cfg.YNum <= 0 {
		return []Point{}
	}

	points := make([]Point, 0, cfg.XNum*cfg.YNum)
	for i := range cfg.XNum {
		x := cfg.XStart + i*cfg.XStep
		for j := range cfg.YNum {
			points = append(points, Point{
				X: x,
				Y: cfg.YStart + j*cfg.YStep,
			})
		}
	}
	return points
}

// Render writes a table of the grid: the x values as header, then a row of markers per y value
func (g *Grid) Render(w io.Writer) error {
	var b strings.Builder

	b.WriteString(center(""))
	for _, x := range g.UniqueX {
		b.WriteString(center(strconv.Itoa(x)))
	}
	b.WriteByte('\n')

	marker := strings.Repeat(center("*"), len(g.UniqueX))
	for _, y := range g.UniqueY {
		b.WriteString(center(strconv.Itoa(y)))
		b.WriteString(marker)
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write grid: %w", err)
	}
	return nil
}

// center pads s to cellWidth, putting the odd space on the right
func center(s string) string {
	pad := cellWidth - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
