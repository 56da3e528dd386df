package input

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
)

func TestKeyEdgesLastOneFrame(t *testing.T) {
	m := NewManager()

	m.HandleKeyEvent(glfw.KeyX, glfw.Press)
	assert.True(t, m.IsActive(ActionRemoveBlock))
	assert.True(t, m.JustPressed(ActionRemoveBlock))

	m.PostUpdate()
	assert.True(t, m.IsActive(ActionRemoveBlock))
	assert.False(t, m.JustPressed(ActionRemoveBlock))

	m.HandleKeyEvent(glfw.KeyX, glfw.Repeat)
	assert.False(t, m.JustPressed(ActionRemoveBlock), "repeat is not a new press")

	m.HandleKeyEvent(glfw.KeyX, glfw.Release)
	assert.False(t, m.IsActive(ActionRemoveBlock))
	assert.True(t, m.JustReleased(ActionRemoveBlock))
}

func TestAlternateBindingsShareAction(t *testing.T) {
	m := NewManager()
	m.HandleKeyEvent(glfw.KeyLeft, glfw.Press)
	assert.True(t, m.IsActive(ActionOrbitLeft))
	m.HandleKeyEvent(glfw.KeyLeft, glfw.Release)

	m.UnbindKey(glfw.KeyA)
	m.HandleKeyEvent(glfw.KeyA, glfw.Press)
	assert.False(t, m.IsActive(ActionOrbitLeft))
}

func TestMouseButtonsAndBounds(t *testing.T) {
	m := NewManager()
	m.HandleMouseButtonEvent(glfw.MouseButtonLeft, glfw.Press)
	assert.True(t, m.IsActive(ActionDrag))
	m.HandleMouseButtonEvent(glfw.MouseButtonRight, glfw.Press)

	m.BindKey(glfw.KeyQ, ActionCount)
	assert.False(t, m.IsActive(ActionCount))
	assert.False(t, m.JustPressed(Action(-1)))
}
