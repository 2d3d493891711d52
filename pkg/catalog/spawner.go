package catalog

// Template describes the node a spawner creates.
type Template struct {
	Title    string
	Tooltip  string
	Category string
	DocID    string
	Pins     []Pin
}

// Spawner is a factory for one kind of node.
type Spawner struct {
	object
	Kind     SpawnerKind
	NodeKind NodeKind
	Function *Function
	Template Template

	world *World
}

// Invoke spawns a node into g and returns it. It returns nil when the graph
// is gone.
func (s *Spawner) Invoke(g *Graph) *Node {
	if g == nil || s.world == nil || !s.world.IsValid(g.ObjectID()) {
		return nil
	}

	n := &Node{
		object:    object{id: s.world.allocate(), name: s.Template.DocID},
		Kind:      s.NodeKind,
		Function:  s.Function,
		graph:     g,
		listTitle: s.Template.Title,
		fullTitle: s.Template.Title,
		tooltip:   s.Template.Tooltip,
		category:  s.Template.Category,
		docID:     s.Template.DocID,
	}

	if s.NodeKind == NodeCallFunction && s.Function != nil && !s.Function.Static && s.Function.Owner != nil {
		target := s.Function.Owner.FriendlyName()
		n.fullTitle = n.fullTitle + "\nTarget is " + target
		if n.tooltip != "" {
			n.tooltip = n.tooltip + "\n\nTarget is " + target
		} else {
			n.tooltip = "Target is " + target
		}
	}

	for i := range s.Template.Pins {
		p := s.Template.Pins[i]
		p.owner = n
		n.Pins = append(n.Pins, &p)
		if p.Advanced {
			n.AdvancedPinDisplay = AdvancedHidden
		}
	}
	if n.NeedsSelfPin() && n.FindPin(SelfPinName) == nil {
		self := &Pin{
			Name:         SelfPinName,
			FriendlyName: "Target",
			Direction:    DirInput,
			Category:     PinObject,
			SubType:      s.Function.Owner.FriendlyName(),
			Description:  "Target",
			DefaultValue: "self",
			owner:        n,
		}
		n.Pins = append(firstExecPins(n.Pins), append([]*Pin{self}, otherPins(n.Pins)...)...)
	}

	s.world.add(n, true)
	g.Nodes = append(g.Nodes, n)
	return n
}

// NeedsSelfPin reports whether the node calls a member function and
// therefore carries an implicit target pin.
func (n *Node) NeedsSelfPin() bool {
	return n.Kind == NodeCallFunction && n.Function != nil && !n.Function.Static && n.Function.Owner != nil
}

func firstExecPins(pins []*Pin) []*Pin {
	var out []*Pin
	for _, p := range pins {
		if p.Category == PinExec && p.Direction == DirInput {
			out = append(out, p)
		}
	}
	return out
}

func otherPins(pins []*Pin) []*Pin {
	var out []*Pin
	for _, p := range pins {
		if !(p.Category == PinExec && p.Direction == DirInput) {
			out = append(out, p)
		}
	}
	return out
}
