package canopy

// Layer is a node that cameras view. A layer is owned by one parent like any
// other node, but any number of cameras may observe it; the relation is kept
// consistent from both sides by Camera.AddLayer and Camera.RemoveLayer.
type Layer struct {
	*Node

	cameras []*Camera
}

// NewLayer creates a detached layer with empty bounds.
func NewLayer(name string) *Layer {
	l := &Layer{Node: newNode(name, NodeKindLayer)}
	l.Node.layer = l
	return l
}

// Cameras returns the cameras observing this layer. The returned slice MUST
// NOT be mutated by the caller.
func (l *Layer) Cameras() []*Camera {
	return l.cameras
}

// NumCameras returns the number of observing cameras.
func (l *Layer) NumCameras() int {
	return len(l.cameras)
}

// CameraAt returns the observing camera at index i.
func (l *Layer) CameraAt(i int) *Camera {
	return l.cameras[i]
}

// notifyCameras marks every observing camera for repaint.
func (l *Layer) notifyCameras() {
	for _, c := range l.cameras {
		c.markDirty()
	}
}

func (l *Layer) removeCamera(c *Camera) {
	for i, o := range l.cameras {
		if o == c {
			copy(l.cameras[i:], l.cameras[i+1:])
			l.cameras[len(l.cameras)-1] = nil
			l.cameras = l.cameras[:len(l.cameras)-1]
			return
		}
	}
}

// AsLayer returns the Layer wrapping n, or nil when n is not a layer node.
func (n *Node) AsLayer() *Layer {
	return n.layer
}

// AsCamera returns the Camera wrapping n, or nil when n is not a camera node.
func (n *Node) AsCamera() *Camera {
	return n.camera
}
