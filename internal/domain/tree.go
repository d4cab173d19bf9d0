package domain

// NodeKind tells what a TreeNode stands for
type NodeKind int

const (
	NodeRoot NodeKind = iota
	NodeTag
	NodeFile
)

func (k NodeKind) String() string {
	switch k {
	case NodeRoot:
		return "root"
	case NodeTag:
		return "tag"
	case NodeFile:
		return "file"
	default:
		return "unknown"
	}
}

// TreeNode represents a node in a tag browsing tree.
// Nodes are plain records; any presentation layer can render them.
type TreeNode struct {
	Kind       NodeKind
	Label      string // Tag name or file identity
	ID         string // File identity for file nodes, tag name for tag nodes
	Children   []*TreeNode
	IsExpanded bool
	Parent     *TreeNode
}

// BuildTagTree returns root -> tags -> files
func BuildTagTree(assocs []Association) *TreeNode {
	root := &TreeNode{Kind: NodeRoot, Label: "Tags", IsExpanded: true}
	idx := BuildTagIndex(assocs)
	for _, tag := range idx.Tags() {
		tagNode := root.addChild(&TreeNode{Kind: NodeTag, Label: tag, ID: tag})
		for _, id := range idx.Files(tag) {
			tagNode.addChild(&TreeNode{Kind: NodeFile, Label: id, ID: id})
		}
	}
	return root
}

// BuildFileTree returns root -> files -> tags
func BuildFileTree(assocs []Association) *TreeNode {
	root := &TreeNode{Kind: NodeRoot, Label: "Files", IsExpanded: true}
	sorted := append([]Association(nil), assocs...)
	SortAssociations(sorted)
	for _, a := range sorted {
		if a.Tags.IsEmpty() {
			continue
		}
		fileNode := root.addChild(&TreeNode{Kind: NodeFile, Label: a.ID, ID: a.ID})
		for _, tag := range a.Tags.Sorted() {
			fileNode.addChild(&TreeNode{Kind: NodeTag, Label: tag, ID: tag})
		}
	}
	return root
}

func (n *TreeNode) addChild(child *TreeNode) *TreeNode {
	child.Parent = n
	n.Children = append(n.Children, child)
	return child
}

// Flatten returns all visible nodes in the tree (for list rendering)
func (n *TreeNode) Flatten() []*TreeNode {
	var result []*TreeNode
	n.flattenRecursive(&result)
	return result
}

func (n *TreeNode) flattenRecursive(result *[]*TreeNode) {
	*result = append(*result, n)
	if n.IsExpanded {
		for _, child := range n.Children {
			child.flattenRecursive(result)
		}
	}
}

// Depth returns the depth of this node in the tree
func (n *TreeNode) Depth() int {
	depth := 0
	current := n.Parent
	for current != nil {
		depth++
		current = current.Parent
	}
	return depth
}

// IsLeaf reports whether the node has no children
func (n *TreeNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Toggle expands or collapses the node
func (n *TreeNode) Toggle() {
	n.IsExpanded = !n.IsExpanded
}

// Expand sets the node as expanded
func (n *TreeNode) Expand() {
	n.IsExpanded = true
}

// Collapse sets the node as collapsed
func (n *TreeNode) Collapse() {
	n.IsExpanded = false
}

// ExpandAll expands n and every descendant
func (n *TreeNode) ExpandAll() {
	n.IsExpanded = true
	for _, child := range n.Children {
		child.ExpandAll()
	}
}
