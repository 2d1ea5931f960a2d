package canopy

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// The zero value is fully transparent, which painters treat as "no paint".
type Color struct {
	R, G, B, A float64
}

// Common colors.
var (
	ColorTransparent = Color{}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
)

// IsTransparent reports whether the color has no visible contribution.
func (c Color) IsTransparent() bool {
	return c.A <= 0
}

// WithAlpha returns c with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

// RGBA converts the color to a straight-alpha color.NRGBA.
func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{
		R: unit8(c.R),
		G: unit8(c.G),
		B: unit8(c.B),
		A: unit8(c.A),
	}
}

func unit8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// Vec2 is a 2D vector used for points, offsets and sizes throughout the API.
type Vec2 struct {
	X, Y float64
}

// NodeKind distinguishes painting and picking behavior for a Node. The set is
// closed; NodeKindCustom carries a user paint callback for anything else.
type NodeKind uint8

const (
	NodeKindPlain     NodeKind = iota // group node; paints its bounds when Paint is set
	NodeKindRectangle                 // filled/stroked rectangle covering the bounds
	NodeKindEllipse                   // filled/stroked ellipse inscribed in the bounds
	NodeKindPath                      // closed or open polyline
	NodeKindText                      // single or multi-line text
	NodeKindImage                     // image.Image scaled to the bounds
	NodeKindCustom                    // user-supplied PaintFunc
	NodeKindLayer                     // node observed by cameras
	NodeKindCamera                    // viewport onto layers
)

var nodeKindNames = [...]string{
	NodeKindPlain:     "plain",
	NodeKindRectangle: "rectangle",
	NodeKindEllipse:   "ellipse",
	NodeKindPath:      "path",
	NodeKindText:      "text",
	NodeKindImage:     "image",
	NodeKindCustom:    "custom",
	NodeKindLayer:     "layer",
	NodeKindCamera:    "camera",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "unknown"
}

// EventType identifies a kind of interaction event.
type EventType uint8

const (
	EventPointerDown  EventType = iota // fires when a pointer button is pressed
	EventPointerUp                     // fires when a pointer button is released
	EventPointerMove                   // fires when the pointer moves (hover, no button)
	EventClick                         // fires on press then release over the same node
	EventDragStart                     // fires when movement exceeds the drag dead zone
	EventDrag                          // fires each step while dragging
	EventDragEnd                       // fires when the pointer is released after dragging
	EventPointerEnter                  // fires when the pointer enters a node
	EventPointerLeave                  // fires when the pointer leaves a node
	EventWheel                         // fires when the wheel scrolls over a node
	EventKeyPressed                    // fires on key down at the keyboard focus
	EventKeyReleased                   // fires on key up at the keyboard focus
	EventKeyTyped                      // fires for each typed character at the keyboard focus
	EventFocusGained                   // fires on the node receiving keyboard focus
	EventFocusLost                     // fires on the node losing keyboard focus

	numEventTypes
)

var eventTypeNames = [...]string{
	EventPointerDown:  "pointer-down",
	EventPointerUp:    "pointer-up",
	EventPointerMove:  "pointer-move",
	EventClick:        "click",
	EventDragStart:    "drag-start",
	EventDrag:         "drag",
	EventDragEnd:      "drag-end",
	EventPointerEnter: "pointer-enter",
	EventPointerLeave: "pointer-leave",
	EventWheel:        "wheel",
	EventKeyPressed:   "key-pressed",
	EventKeyReleased:  "key-released",
	EventKeyTyped:     "key-typed",
	EventFocusGained:  "focus-gained",
	EventFocusLost:    "focus-lost",
}

func (e EventType) String() string {
	if e < numEventTypes {
		return eventTypeNames[e]
	}
	return "unknown"
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)
