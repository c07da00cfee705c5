package openapi

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxRefDepth bounds $ref chains so a cyclic spec cannot loop forever.
const maxRefDepth = 32

// pair is one key/value entry of a mapping node, in document order.
type pair struct {
	key   string
	value *yaml.Node
}

// resolver dereferences local JSON pointers against the document root.
type resolver struct {
	root *yaml.Node
}

// unalias follows YAML aliases.
func unalias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// entries lists the pairs of a mapping node. Anything else has none.
func entries(n *yaml.Node) []pair {
	n = unalias(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, pair{key: n.Content[i].Value, value: unalias(n.Content[i+1])})
	}
	return out
}

// field returns the value under key, or nil.
func field(n *yaml.Node, key string) *yaml.Node {
	for _, p := range entries(n) {
		if p.key == key {
			return p.value
		}
	}
	return nil
}

// scalar returns the value of a scalar field, or "".
func scalar(n *yaml.Node, key string) string {
	v := field(n, key)
	if v == nil || v.Kind != yaml.ScalarNode || v.ShortTag() == "!!null" {
		return ""
	}
	return v.Value
}

// items lists the elements of a sequence node.
func items(n *yaml.Node) []*yaml.Node {
	n = unalias(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]*yaml.Node, len(n.Content))
	for i, c := range n.Content {
		out[i] = unalias(c)
	}
	return out
}

// stringList lists the scalar elements of a sequence field.
func stringList(n *yaml.Node, key string) []string {
	out := []string{}
	for _, item := range items(field(n, key)) {
		if item.Kind == yaml.ScalarNode {
			out = append(out, item.Value)
		}
	}
	return out
}

// deref follows $ref until it reaches a node without one.
func (r *resolver) deref(n *yaml.Node) (*yaml.Node, error) {
	n = unalias(n)
	for depth := 0; ; depth++ {
		ref := scalar(n, "$ref")
		if ref == "" {
			return n, nil
		}
		if depth >= maxRefDepth {
			return nil, fmt.Errorf("$ref chain too deep at %s", ref)
		}
		target, err := r.lookup(ref)
		if err != nil {
			return nil, err
		}
		n = target
	}
}

// lookup resolves a local reference such as "#/components/schemas/Pet".
func (r *resolver) lookup(ref string) (*yaml.Node, error) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, fmt.Errorf("unsupported $ref %q: only local references are resolved", ref)
	}

	n := r.root
	for _, token := range strings.Split(ref[2:], "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		next := field(n, token)
		if next == nil {
			return nil, fmt.Errorf("unresolved $ref %q", ref)
		}
		n = next
	}
	return n, nil
}
