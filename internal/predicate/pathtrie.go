package predicate

import (
	"sort"
	"strings"
)

// wildcard is the trailing path element that matches a package and all
// packages below it, as in "example.com/mod/...".
const wildcard = "..."

// pathIndex is the index of a node in the arena.
type pathIndex int

type pathNode struct {
	children map[string]pathIndex
	// exact marks a package listed by its full path.
	exact bool
	// subtree marks a package listed with the wildcard suffix.
	subtree bool
}

// pathTrie is a set of package path patterns. Nodes are kept in one arena
// slice and refer to each other by index.
type pathTrie struct {
	nodes []pathNode
}

func newPathTrie() *pathTrie {
	return &pathTrie{nodes: []pathNode{{children: make(map[string]pathIndex)}}}
}

func (t *pathTrie) newNode() pathIndex {
	idx := pathIndex(len(t.nodes))
	t.nodes = append(t.nodes, pathNode{children: make(map[string]pathIndex)})
	return idx
}

// Insert adds a package path pattern.
func (t *pathTrie) Insert(pattern string) {
	parts := strings.Split(strings.Trim(pattern, "/"), "/")
	subtree := false
	if n := len(parts); n > 0 && parts[n-1] == wildcard {
		parts = parts[:n-1]
		subtree = true
	}

	current := pathIndex(0)
	for _, part := range parts {
		if part == "" {
			continue
		}
		child, ok := t.nodes[current].children[part]
		if !ok {
			child = t.newNode()
			t.nodes[current].children[part] = child
		}
		current = child
	}
	if subtree {
		t.nodes[current].subtree = true
	} else {
		t.nodes[current].exact = true
	}
}

// Match reports whether pkg is matched by some pattern.
func (t *pathTrie) Match(pkg string) bool {
	current := pathIndex(0)
	if t.nodes[current].subtree {
		return true
	}
	for _, part := range strings.Split(strings.Trim(pkg, "/"), "/") {
		child, ok := t.nodes[current].children[part]
		if !ok {
			return false
		}
		current = child
		if t.nodes[current].subtree {
			return true
		}
	}
	return t.nodes[current].exact
}

// Len returns the number of nodes, the root included.
func (t *pathTrie) Len() int { return len(t.nodes) }

// String renders the trie with sorted children, for debugging.
func (t *pathTrie) String() string {
	return t.render(0)
}

func (t *pathTrie) render(idx pathIndex) string {
	node := t.nodes[idx]
	var sb strings.Builder
	if node.exact {
		sb.WriteString("*")
	}
	if node.subtree {
		sb.WriteString(wildcard)
	}
	keys := make([]string, 0, len(node.children))
	for key := range node.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		sb.WriteString(key)
		sb.WriteString("(")
		sb.WriteString(t.render(node.children[key]))
		sb.WriteString(")")
	}
	return sb.String()
}
