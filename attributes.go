package canopy

import "sort"

// SetAttribute stores value under key. A nil value removes the key.
func (n *Node) SetAttribute(key string, value any) {
	if value == nil {
		n.RemoveAttribute(key)
		return
	}
	if n.attrs == nil {
		n.attrs = make(map[string]any)
	}
	n.attrs[key] = value
}

// Attribute returns the value stored under key, or nil.
func (n *Node) Attribute(key string) any {
	return n.attrs[key]
}

// AttributeOr returns the value stored under key, or def when absent.
func (n *Node) AttributeOr(key string, def any) any {
	if v, ok := n.attrs[key]; ok {
		return v
	}
	return def
}

// RemoveAttribute deletes key.
func (n *Node) RemoveAttribute(key string) {
	delete(n.attrs, key)
}

// AttributeKeys returns the stored keys in sorted order.
func (n *Node) AttributeKeys() []string {
	keys := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
