package psd

// Group is a layer folder. Its leaf layers occupy the contiguous index range
// [Start, End) of the document's layer list; nested groups have ranges inside
// their parent's.
type Group struct {
	ID        uint32
	Name      string
	Start     int
	End       int
	ParentID  uint32 // 0 at top level
	Visible   bool
	Opacity   uint8
	BlendMode BlendMode
	Open      bool // folder is shown expanded
}

// Len returns the number of leaf layers in the group, nested groups included.
func (g *Group) Len() int {
	return g.End - g.Start
}

// pendingGroup is a group whose bottom divider has been seen but whose
// folder record has not.
type pendingGroup struct {
	id     uint32
	start  int
	record int
}

// groupBuilder reconstructs groups from divider records with an explicit
// stack. Records arrive in file order, bottom of the stack first: a bounding
// divider opens a pending group and the matching folder record closes it.
type groupBuilder struct {
	layers []*Layer
	groups map[uint32]*Group
	order  []uint32
	stack  []pendingGroup
	nextID uint32
}

func newGroupBuilder(capacity int) *groupBuilder {
	return &groupBuilder{
		layers: make([]*Layer, 0, capacity),
		groups: make(map[uint32]*Group),
		nextID: 1,
	}
}

// parent returns the id of the innermost pending group.
func (b *groupBuilder) parent() uint32 {
	if len(b.stack) == 0 {
		return 0
	}
	return b.stack[len(b.stack)-1].id
}

// add consumes the record at file index idx.
func (b *groupBuilder) add(idx int, rec *layerRecord) error {
	switch {
	case rec.isBoundingDivider():
		id := b.nextID
		b.nextID++
		b.stack = append(b.stack, pendingGroup{id: id, start: len(b.layers), record: idx})
		b.order = append(b.order, id)

	case rec.isFolder():
		if len(b.stack) == 0 {
			return &LayerError{Index: idx, Err: ErrUnbalancedGroups}
		}
		p := b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]
		l := rec.layer
		b.groups[p.id] = &Group{
			ID:        p.id,
			Name:      l.Name,
			Start:     p.start,
			End:       len(b.layers),
			ParentID:  b.parent(),
			Visible:   l.Visible,
			Opacity:   l.Opacity,
			BlendMode: l.BlendMode,
			Open:      rec.divider == dividerOpen,
		}

	default:
		rec.layer.ParentID = b.parent()
		b.layers = append(b.layers, rec.layer)
	}
	return nil
}

// finish checks that every group was closed.
func (b *groupBuilder) finish() error {
	if len(b.stack) > 0 {
		return &LayerError{Index: b.stack[len(b.stack)-1].record, Err: ErrUnbalancedGroups}
	}
	return nil
}
