package ebitenhost

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsOverlay draws FPS, TPS and scene counters in the top-left corner,
// refreshed about twice a second.
type fpsOverlay struct {
	img     *ebiten.Image
	elapsed float64
	painted int
	culled  int
}

func newFPSOverlay() *fpsOverlay {
	// 120x48 is enough for "FPS: 60.0\nTPS: 60.0\nnodes: 9999/9999"
	return &fpsOverlay{img: ebiten.NewImage(120, 48)}
}

// update records the last frame's paint counters and redraws the text when
// due. dt is in seconds.
func (o *fpsOverlay) update(dt float64, painted, culled int) {
	o.painted, o.culled = painted, culled
	o.elapsed += dt
	if o.elapsed < 0.5 {
		return
	}
	o.elapsed = 0

	o.img.Clear()
	// Semi-transparent background for readability
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, formatFPS(ebiten.ActualFPS(), ebiten.ActualTPS(), o.painted, o.culled))
}

func (o *fpsOverlay) draw(screen *ebiten.Image) {
	screen.DrawImage(o.img, nil)
}

func formatFPS(fps, tps float64, painted, culled int) string {
	return fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nnodes: %d/%d", fps, tps, painted, painted+culled)
}
