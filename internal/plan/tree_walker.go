package plan

import (
	"fmt"
	"sort"
	"strings"
)

// WalkTree recursively walks the plan tree, calling visitor for each node
func WalkTree(node Node, visitor func(Node) error) error {
	if node == nil {
		return nil
	}

	// Visit current node
	if err := visitor(node); err != nil {
		return err
	}

	// Recursively visit children
	for _, child := range node.Children() {
		if err := WalkTree(child, visitor); err != nil {
			return err
		}
	}

	return nil
}

// PrintTree prints the plan tree with indentation, one metadata entry per
// line under its node
func PrintTree(node Node) string {
	var sb strings.Builder
	printTreeHelper(node, 0, &sb)
	return sb.String()
}

func printTreeHelper(node Node, depth int, sb *strings.Builder) {
	if node == nil {
		return
	}

	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s\n", indent, node.NodeType())

	meta := node.Metadata()
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, "%s    %s: %v\n", indent, k, meta[k])
	}

	for _, child := range node.Children() {
		printTreeHelper(child, depth+1, sb)
	}
}

// CountNodes counts the total number of nodes in the tree
func CountNodes(node Node) int {
	if node == nil {
		return 0
	}

	count := 1 // Count current node
	for _, child := range node.Children() {
		count += CountNodes(child)
	}

	return count
}
