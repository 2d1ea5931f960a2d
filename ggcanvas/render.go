package ggcanvas

import (
	"image"

	"github.com/phanxgames/canopy"
)

// RenderScene paints every root-level camera of scene into a new
// width×height image.
func RenderScene(scene *canopy.Scene, width, height int) *image.RGBA {
	c := NewImage(width, height)
	defer c.Close()
	scene.Render(c)
	return c.Image()
}

// RenderCamera paints cam into a new image sized to its bounds, with the
// camera's top-left corner at the image origin.
func RenderCamera(cam *canopy.Camera) *image.RGBA {
	b := cam.Bounds()
	c := NewImage(max(1, int(b.Width+0.5)), max(1, int(b.Height+0.5)))
	defer c.Close()
	c.Concat(canopy.NewTranslation(-b.X, -b.Y))
	cam.Render(c)
	return c.Image()
}

// SavePNG renders scene into a width×height PNG file at path.
func SavePNG(scene *canopy.Scene, path string, width, height int) error {
	c := NewImage(width, height)
	defer c.Close()
	scene.Render(c)
	return c.SavePNG(path)
}
