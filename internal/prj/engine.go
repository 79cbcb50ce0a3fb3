package prj

import (
	"fmt"

	"github.com/twpayne/go-proj/v10"
)

// target is the output CRS of every transform
const target = "EPSG:4326"

// ProjEngine builds transforms with the PROJ library.
//
// PROJ accepts EPSG codes, PROJ strings and WKT (including ESRI WKT as found
// in .prj files).
type ProjEngine struct{}

// NewProjEngine returns an engine backed by PROJ's default context.
func NewProjEngine() *ProjEngine {
	return &ProjEngine{}
}

// New creates a source → WGS84 transform with longitude-first axis order.
func (e *ProjEngine) New(definition string) (Transform, error) {
	pj, err := proj.NewCRSToCRS(definition, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create transform: %w", err)
	}
	normalized, err := pj.NormalizeForVisualization()
	if err != nil {
		return nil, fmt.Errorf("normalize axis order: %w", err)
	}
	return &projTransform{pj: normalized, definition: definition}, nil
}

type projTransform struct {
	pj         *proj.PJ
	definition string
}

func (t *projTransform) Inverse(x, y float64) (float64, float64, error) {
	coord, err := t.pj.Forward(proj.NewCoord(x, y, 0, 0))
	if err != nil {
		return 0, 0, err
	}
	return coord.X(), coord.Y(), nil
}

func (t *projTransform) Definition() string {
	return t.definition
}
