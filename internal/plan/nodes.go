package plan

// Node is the base interface for all explain-tree nodes
type Node interface {
	// Children returns child nodes for tree walking
	Children() []Node

	// Metadata returns attached metadata (never nil)
	Metadata() map[string]any

	// NodeType returns the type identifier (for debugging/logging)
	NodeType() string
}

type baseNode struct {
	children []Node
	metadata map[string]any
}

func (n *baseNode) Children() []Node {
	return n.children
}

func (n *baseNode) AddChild(child Node) {
	n.children = append(n.children, child)
}

func (n *baseNode) Metadata() map[string]any {
	if n.metadata == nil {
		n.metadata = make(map[string]any)
	}
	return n.metadata
}

// ScanNode is an index range scan (leaf node)
type ScanNode struct {
	baseNode
	Table     string
	Index     string
	Direction string
	Span      string
}

func (n *ScanNode) Children() []Node {
	return nil // Leaf node has no children
}

func (n *ScanNode) NodeType() string {
	return "scan"
}

// IndexJoinNode fetches full rows for the keys its child yields
type IndexJoinNode struct {
	baseNode
	Table string
}

func (n *IndexJoinNode) NodeType() string {
	return "index-join"
}

// FilterNode applies the residual predicate
type FilterNode struct {
	baseNode
	Filter string
}

func (n *FilterNode) NodeType() string {
	return "filter"
}

// ProjectNode narrows rows to the output columns
type ProjectNode struct {
	baseNode
	Columns []string
}

func (n *ProjectNode) NodeType() string {
	return "project"
}

// EmptyNode produces no rows; the predicate was contradictory
type EmptyNode struct {
	baseNode
}

func (n *EmptyNode) NodeType() string {
	return "norows"
}
