package physics_test

import (
	"testing"

	"voxel-render/internal/physics"
	"voxel-render/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaycast(t *testing.T) {
	w := world.NewEmpty()
	w.Set(5, 0, 0, world.BlockTypeStone)

	start := mgl32.Vec3{0.5, 0.5, 0.5}
	dir := mgl32.Vec3{1, 0, 0}

	result := physics.Raycast(start, dir, 0.1, 10, w)
	require.True(t, result.Hit)
	assert.Equal(t, [3]int{5, 0, 0}, result.HitPosition)
	assert.Equal(t, [3]int{4, 0, 0}, result.AdjacentPosition)
	// enters x = 5 after 4.5 units
	assert.InDelta(t, 4.5, result.Distance, 0.03)

	assert.False(t, physics.Raycast(start, dir, 0.1, 4, w).Hit, "beyond max distance")
	assert.False(t, physics.Raycast(start, mgl32.Vec3{0, 1, 0}, 0.1, 10, w).Hit)
	assert.False(t, physics.Raycast(start, mgl32.Vec3{}, 0.1, 10, w).Hit, "zero direction")

	w.Set(2, 2, 2, world.BlockTypeStone)
	diag := physics.Raycast(start, mgl32.Vec3{3, 3, 3}, 0.1, 10, w)
	require.True(t, diag.Hit)
	assert.Equal(t, [3]int{2, 2, 2}, diag.HitPosition)
}

func TestRaycastNegativeCoordinates(t *testing.T) {
	w := world.New(4)
	w.Set(-3, -1, -7, world.BlockTypeBrick)
	start := mgl32.Vec3{-2.5, -0.5, 0.5}
	dir := mgl32.Vec3{0, 0, -1}

	r := physics.Raycast(start, dir, 0, 20, w)
	require.True(t, r.Hit)
	assert.Equal(t, [3]int{-3, -1, -7}, r.HitPosition)
	assert.Equal(t, [3]int{-3, -1, -6}, r.AdjacentPosition)

	require.True(t, w.Remove(-3, -1, -7))
	assert.False(t, physics.Raycast(start, dir, 0, 20, w).Hit)
}
