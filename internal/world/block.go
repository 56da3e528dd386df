package world

import "fmt"

// BlockType identifies the kind of voxel occupying a cell. BlockTypeAir is
// the empty cell; every other kind is solid and occludes its neighbours.
type BlockType uint8

const (
	BlockTypeAir BlockType = iota
	BlockTypeGrass
	BlockTypeDirt
	BlockTypeStone
	BlockTypeSand
	BlockTypeWood
	BlockTypeLeaves
	BlockTypeBrick

	// NumBlockTypes is the number of defined kinds, air included.
	NumBlockTypes
)

var blockNames = [NumBlockTypes]string{
	BlockTypeAir:    "air",
	BlockTypeGrass:  "grass",
	BlockTypeDirt:   "dirt",
	BlockTypeStone:  "stone",
	BlockTypeSand:   "sand",
	BlockTypeWood:   "wood",
	BlockTypeLeaves: "leaves",
	BlockTypeBrick:  "brick",
}

// String returns the lowercase name of the block kind.
func (b BlockType) String() string {
	if b < NumBlockTypes {
		return blockNames[b]
	}
	return fmt.Sprintf("block(%d)", uint8(b))
}

// Valid reports whether b is one of the defined kinds.
func (b BlockType) Valid() bool {
	return b < NumBlockTypes
}

// IsSolid reports whether the block occupies its cell.
func (b BlockType) IsSolid() bool {
	return b != BlockTypeAir
}

// ParseBlockType maps a name produced by String back to its kind.
func ParseBlockType(name string) (BlockType, error) {
	for i, n := range blockNames {
		if n == name {
			return BlockType(i), nil
		}
	}
	return BlockTypeAir, fmt.Errorf("unknown block type %q", name)
}
