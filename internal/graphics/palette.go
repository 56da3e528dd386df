package graphics

import (
	"fmt"
	"image/color"

	"voxel-render/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Palette maps a vertex tag to a linear RGB colour in [0, 1].
type Palette [world.NumBlockTypes]mgl32.Vec3

// fallbackColor marks tags the palette does not know.
var fallbackColor = mgl32.Vec3{1, 0, 1}

// DefaultPalette returns the built-in block colours.
func DefaultPalette() Palette {
	var p Palette
	p[world.BlockTypeAir] = mgl32.Vec3{0, 0, 0}
	p[world.BlockTypeGrass] = mgl32.Vec3{0.36, 0.62, 0.25}
	p[world.BlockTypeDirt] = mgl32.Vec3{0.47, 0.33, 0.21}
	p[world.BlockTypeStone] = mgl32.Vec3{0.5, 0.5, 0.52}
	p[world.BlockTypeSand] = mgl32.Vec3{0.86, 0.8, 0.55}
	p[world.BlockTypeWood] = mgl32.Vec3{0.4, 0.28, 0.15}
	p[world.BlockTypeLeaves] = mgl32.Vec3{0.2, 0.45, 0.15}
	p[world.BlockTypeBrick] = mgl32.Vec3{0.62, 0.25, 0.2}
	return p
}

// WithOverrides returns a copy of p with the named entries replaced.
// Names are block type names as accepted by world.ParseBlockType.
func (p Palette) WithOverrides(overrides map[string][3]float32) (Palette, error) {
	out := p
	for name, rgb := range overrides {
		bt, err := world.ParseBlockType(name)
		if err != nil {
			return p, fmt.Errorf("palette override: %w", err)
		}
		out[bt] = mgl32.Vec3{rgb[0], rgb[1], rgb[2]}
	}
	return out, nil
}

// Color returns the colour for tag.
func (p *Palette) Color(tag world.BlockType) mgl32.Vec3 {
	if !tag.Valid() {
		return fallbackColor
	}
	return p[tag]
}

// RGBA returns the colour for tag scaled by shade, as an opaque 8-bit colour.
func (p *Palette) RGBA(tag world.BlockType, shade float32) color.RGBA {
	c := p.Color(tag).Mul(mgl32.Clamp(shade, 0, 1))
	return color.RGBA{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: 0xff}
}

func to8(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}

// Flat returns the palette as consecutive RGB triples for uniform upload.
func (p *Palette) Flat() []float32 {
	out := make([]float32, 0, len(p)*3)
	for _, c := range p {
		out = append(out, c[0], c[1], c[2])
	}
	return out
}
