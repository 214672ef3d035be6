// Package htmlnode implements the HTML tree produced from markdown and its
// serialization to flat HTML text.
package htmlnode

// Attr is a single HTML attribute
type Attr struct {
	Key   string
	Value string
}

// Attrs is an ordered attribute list. Serialization preserves its order.
type Attrs []Attr

// Get returns the value for key and whether it was present
func (a Attrs) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Node is either a *Leaf or a *Parent
type Node interface {
	node()
}

// Leaf is a node without children. An empty Tag means raw text.
type Leaf struct {
	Tag   string
	Value string
	Attrs Attrs
}

// Parent is a tagged node owning an ordered list of children
type Parent struct {
	Tag      string
	Children []Node
	Attrs    Attrs
}

func (*Leaf) node()   {}
func (*Parent) node() {}

// NewText creates an untagged leaf holding raw text
func NewText(value string) *Leaf {
	return &Leaf{Value: value}
}

// NewLeaf creates a tagged leaf
func NewLeaf(tag, value string, attrs ...Attr) *Leaf {
	return &Leaf{Tag: tag, Value: value, Attrs: attrs}
}

// NewParent creates a parent node. A parent without a tag cannot be
// serialized, so an empty tag panics.
func NewParent(tag string, children []Node, attrs ...Attr) *Parent {
	if tag == "" {
		panic("htmlnode: parent node requires a tag")
	}
	if children == nil {
		children = []Node{}
	}
	return &Parent{Tag: tag, Children: children, Attrs: attrs}
}

// Append adds children in order and returns the parent
func (p *Parent) Append(children ...Node) *Parent {
	p.Children = append(p.Children, children...)
	return p
}

// HTML serializes the leaf
func (l *Leaf) HTML() string {
	return ToHTML(l)
}

// HTML serializes the parent and all of its descendants
func (p *Parent) HTML() string {
	return ToHTML(p)
}
