// Package ebitenhost runs a canopy scene in an Ebitengine window: it owns
// the game loop, decodes mouse, touch, wheel and keyboard input into scene
// samples and paints root-level cameras with an ebiten-backed Canvas.
package ebitenhost

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/canopy"
)

const maxTouches = 9 // pointer slots 1-9; slot 0 is the mouse

// Host implements ebiten.Game for a scene.
type Host struct {
	scene  *canopy.Scene
	cfg    RunConfig
	bg     color.NRGBA
	canvas *Canvas
	fps    *fpsOverlay
	runner *canopy.TestRunner
	update func() error
	clock  func() time.Time

	width, height int

	// input scratch
	touchIDs  []ebiten.TouchID
	touchMap  [maxTouches + 1]ebiten.TouchID
	touchUsed [maxTouches + 1]bool
	touchLast [maxTouches + 1][2]float64
	keys      []ebiten.Key
	runes     []rune

	screenshotQueue []string
}

var _ ebiten.Game = (*Host)(nil)

// NewHost prepares a host for scene. It applies the scene-related settings
// of cfg and loads cfg.TestScript when set.
func NewHost(scene *canopy.Scene, cfg RunConfig) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bg, _ := ParseColor(cfg.Background)
	h := &Host{
		scene:  scene,
		cfg:    cfg,
		bg:     bg.RGBA(),
		canvas: NewCanvas(),
		clock:  time.Now,
	}
	scene.SetDebugMode(cfg.DebugMode)
	scene.SetPickHalo(cfg.PickHalo)
	scene.SetDragDeadZone(cfg.DragDeadZone)
	scene.OnSnapshot = h.Screenshot
	if cfg.FitCamera {
		h.resize(cfg.Width, cfg.Height)
	}
	if cfg.TestScript != "" {
		data, err := os.ReadFile(cfg.TestScript)
		if err != nil {
			return nil, fmt.Errorf("read test script: %w", err)
		}
		runner, err := canopy.LoadTestScript(data)
		if err != nil {
			return nil, err
		}
		scene.SetTestRunner(runner)
		h.runner = runner
	}
	return h, nil
}

// Run opens a window and runs scene until the window closes.
func Run(scene *canopy.Scene, cfg RunConfig) error {
	h, err := NewHost(scene, cfg)
	if err != nil {
		return err
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	return ebiten.RunGame(h)
}

// Scene returns the hosted scene.
func (h *Host) Scene() *canopy.Scene { return h.scene }

// SetUpdateFunc sets a function called every tick before the scene steps.
// A non-nil error ends the loop.
func (h *Host) SetUpdateFunc(fn func() error) { h.update = fn }

// Update implements ebiten.Game.
func (h *Host) Update() error {
	h.readInput()
	if h.update != nil {
		if err := h.update(); err != nil {
			return err
		}
	}
	h.scene.Step(h.clock())
	if h.cfg.ExitWhenDone && h.runner != nil && h.runner.Done() && len(h.screenshotQueue) == 0 {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(h.bg)
	h.canvas.Begin(screen)
	ctx := h.scene.Render(h.canvas)
	if h.cfg.ShowFPS {
		if h.fps == nil {
			h.fps = newFPSOverlay()
		}
		h.fps.update(1/float64(ebiten.TPS()), ctx.NodesPainted(), ctx.NodesCulled())
		h.fps.draw(screen)
	}
	h.flushScreenshots(screen)
}

// Layout implements ebiten.Game.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, ht := h.cfg.Width, h.cfg.Height
	if h.cfg.Resizable {
		w, ht = outsideWidth, outsideHeight
	}
	if h.cfg.FitCamera && (w != h.width || ht != h.height) {
		h.resize(w, ht)
	}
	return w, ht
}

func (h *Host) resize(w, ht int) {
	h.width, h.height = w, ht
	h.scene.Camera().SetBoundsRect(0, 0, float64(w), float64(ht))
}

// --- Input ---

func (h *Host) readInput() {
	mods := readModifiers()
	h.readMouse(mods)
	h.readTouches(mods)
	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		mx, my := ebiten.CursorPosition()
		h.scene.ProcessWheel(canopy.WheelSample{
			X: float64(mx), Y: float64(my),
			DeltaX: wx, DeltaY: wy,
			Modifiers: mods,
		})
	}
	h.readKeys(mods)
}

func (h *Host) readMouse(mods canopy.KeyModifiers) {
	mx, my := ebiten.CursorPosition()
	pressed, button := mouseButton(
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight),
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle),
	)
	h.scene.ProcessPointer(canopy.PointerSample{
		PointerID: 0,
		X:         float64(mx),
		Y:         float64(my),
		Pressed:   pressed,
		Button:    button,
		Modifiers: mods,
	})
}

// mouseButton picks the button reported for a pointer sample, preferring
// left, then right, then middle.
func mouseButton(left, right, middle bool) (pressed bool, button canopy.MouseButton) {
	switch {
	case left:
		return true, canopy.MouseButtonLeft
	case right:
		return true, canopy.MouseButtonRight
	case middle:
		return true, canopy.MouseButtonMiddle
	}
	return false, canopy.MouseButtonLeft
}

func (h *Host) readTouches(mods canopy.KeyModifiers) {
	h.touchIDs = ebiten.AppendTouchIDs(h.touchIDs[:0])

	var active [maxTouches + 1]bool
	for _, tid := range h.touchIDs {
		slot := h.touchSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		h.touchLast[slot] = [2]float64{float64(tx), float64(ty)}
		h.scene.ProcessPointer(canopy.PointerSample{
			PointerID: slot,
			X:         float64(tx),
			Y:         float64(ty),
			Pressed:   true,
			Button:    canopy.MouseButtonLeft,
			Modifiers: mods,
		})
	}

	for i := 1; i <= maxTouches; i++ {
		if h.touchUsed[i] && !active[i] {
			h.scene.ProcessPointer(canopy.PointerSample{
				PointerID: i,
				X:         h.touchLast[i][0],
				Y:         h.touchLast[i][1],
				Button:    canopy.MouseButtonLeft,
				Modifiers: mods,
			})
			h.touchUsed[i] = false
			h.touchMap[i] = 0
		}
	}
}

// touchSlot maps a touch to a pointer slot (1-9), allocating one if needed.
// Returns -1 when all slots are taken.
func (h *Host) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i <= maxTouches; i++ {
		if h.touchUsed[i] && h.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i <= maxTouches; i++ {
		if !h.touchUsed[i] {
			h.touchUsed[i] = true
			h.touchMap[i] = tid
			return i
		}
	}
	return -1
}

func (h *Host) readKeys(mods canopy.KeyModifiers) {
	h.keys = inpututil.AppendJustPressedKeys(h.keys[:0])
	for _, k := range h.keys {
		h.scene.ProcessKey(canopy.KeySample{Type: canopy.EventKeyPressed, Key: canopy.Key(k), Modifiers: mods})
	}
	h.keys = inpututil.AppendJustReleasedKeys(h.keys[:0])
	for _, k := range h.keys {
		h.scene.ProcessKey(canopy.KeySample{Type: canopy.EventKeyReleased, Key: canopy.Key(k), Modifiers: mods})
	}
	h.runes = ebiten.AppendInputChars(h.runes[:0])
	for _, r := range h.runes {
		h.scene.ProcessKey(canopy.KeySample{Type: canopy.EventKeyTyped, Rune: r, Modifiers: mods})
	}
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() canopy.KeyModifiers {
	var mods canopy.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= canopy.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= canopy.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= canopy.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= canopy.ModMeta
	}
	return mods
}
