package document

import (
	"fmt"
	"strings"
)

// Traversal maps a batch of document trees to the ordered nodes an operation
// applies to.
type Traversal func(batch []*Document) []*Document

// Roots selects the batch roots. It is the default traversal.
var Roots Traversal = Depths(0)

// Chunks selects the direct chunks of every root.
var Chunks Traversal = Depths(1)

// Depths selects nodes at the given depths (0 = roots). Nodes are emitted in
// pre-order for each tree and trees are visited in batch order, so a root
// always precedes its own chunks.
func Depths(depths ...int) Traversal {
	selected := make(map[int]bool, len(depths))
	maxDepth := 0
	for _, d := range depths {
		selected[d] = true
		if d > maxDepth {
			maxDepth = d
		}
	}
	return func(batch []*Document) []*Document {
		var out []*Document
		var walk func(node *Document, depth int)
		walk = func(node *Document, depth int) {
			if node == nil {
				return
			}
			if selected[depth] {
				out = append(out, node)
			}
			if depth >= maxDepth {
				return
			}
			for _, chunk := range node.Chunks {
				walk(chunk, depth+1)
			}
		}
		for _, root := range batch {
			walk(root, 0)
		}
		return out
	}
}

// ParsePath parses a traversal expression such as "@r", "@c", "@r,c" or
// "c,cc". The leading '@' is optional. Each comma separated selector is
// either "r" (roots) or a run of 'c' whose length is the chunk depth.
func ParsePath(expr string) (Traversal, error) {
	depths, err := parseDepths(expr)
	if err != nil {
		return nil, err
	}
	return Depths(depths...), nil
}

// MustParsePath is like ParsePath but panics on an invalid expression.
func MustParsePath(expr string) Traversal {
	t, err := ParsePath(expr)
	if err != nil {
		panic(err)
	}
	return t
}

func parseDepths(expr string) ([]int, error) {
	body := strings.TrimPrefix(strings.TrimSpace(expr), "@")
	if body == "" {
		return nil, fmt.Errorf("document: empty traversal path %q", expr)
	}
	seen := map[int]bool{}
	var depths []int
	for _, raw := range strings.Split(body, ",") {
		sel := strings.TrimSpace(raw)
		depth := -1
		switch {
		case sel == "r":
			depth = 0
		case sel != "" && strings.Trim(sel, "c") == "":
			depth = len(sel)
		}
		if depth < 0 {
			return nil, fmt.Errorf("document: invalid selector %q in traversal path %q", sel, expr)
		}
		if !seen[depth] {
			seen[depth] = true
			depths = append(depths, depth)
		}
	}
	return depths, nil
}
