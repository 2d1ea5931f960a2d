package ebitenhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/canopy"
)

func TestNewHost_FitsCamera(t *testing.T) {
	scene := canopy.NewScene()
	cfg := DefaultRunConfig()
	cfg.Width, cfg.Height = 320, 200

	h, err := NewHost(scene, cfg)
	require.NoError(t, err)
	assert.Same(t, scene, h.Scene())
	assert.Equal(t, canopy.NewBounds(0, 0, 320, 200), scene.Camera().Bounds())
}

func TestNewHost_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Width = 0
	_, err := NewHost(canopy.NewScene(), cfg)
	assert.ErrorIs(t, err, canopy.ErrInvalidConfig)
}

func TestNewHost_SnapshotQueuesScreenshot(t *testing.T) {
	scene := canopy.NewScene()
	h, err := NewHost(scene, DefaultRunConfig())
	require.NoError(t, err)
	require.NotNil(t, scene.OnSnapshot)

	scene.OnSnapshot("first")
	assert.Equal(t, []string{"first"}, h.screenshotQueue)
}

func TestNewHost_LoadsTestScript(t *testing.T) {
	path := writeFile(t, "script.json", `{"steps": [{"action": "click", "x": 5, "y": 5}]}`)
	cfg := DefaultRunConfig()
	cfg.TestScript = path

	h, err := NewHost(canopy.NewScene(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, h.runner)
}

func TestNewHost_BadTestScript(t *testing.T) {
	path := writeFile(t, "script.json", `{"steps": [{"action": "teleport"}]}`)
	cfg := DefaultRunConfig()
	cfg.TestScript = path

	_, err := NewHost(canopy.NewScene(), cfg)
	assert.ErrorIs(t, err, canopy.ErrInvalidConfig)
}

func TestLayout_ResizableFollowsWindow(t *testing.T) {
	scene := canopy.NewScene()
	cfg := DefaultRunConfig()
	cfg.Resizable = true
	h, err := NewHost(scene, cfg)
	require.NoError(t, err)

	w, ht := h.Layout(1000, 700)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 700, ht)
	assert.Equal(t, canopy.NewBounds(0, 0, 1000, 700), scene.Camera().Bounds())
}

func TestLayout_FixedSize(t *testing.T) {
	scene := canopy.NewScene()
	cfg := DefaultRunConfig()
	h, err := NewHost(scene, cfg)
	require.NoError(t, err)

	w, ht := h.Layout(1000, 700)
	assert.Equal(t, cfg.Width, w)
	assert.Equal(t, cfg.Height, ht)
}

func TestMouseButton(t *testing.T) {
	pressed, b := mouseButton(false, false, false)
	assert.False(t, pressed)
	assert.Equal(t, canopy.MouseButtonLeft, b)

	pressed, b = mouseButton(false, true, true)
	assert.True(t, pressed)
	assert.Equal(t, canopy.MouseButtonRight, b)

	_, b = mouseButton(false, false, true)
	assert.Equal(t, canopy.MouseButtonMiddle, b)
}

func TestFormatFPS(t *testing.T) {
	assert.Equal(t, "FPS: 60.0\nTPS: 59.5\nnodes: 3/5", formatFPS(60, 59.5, 3, 2))
}
