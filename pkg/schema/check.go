package schema

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/aretw0/uiengineer/pkg/domain"
)

// CheckTree validates the structure of a tree built in Go: no nil components,
// no container reachable from itself, nesting within DefaultMaxDepth.
//
// A cycle can only arise through shared slice backing arrays (a Container
// value copied into its own Children), so ancestors are tracked by the
// address of their children array.
func CheckTree(tree domain.Tree) error {
	c := &checker{active: make(map[uintptr]struct{})}
	c.list(tree, "", 0)
	if len(c.issues) > 0 {
		return &ViolationError{Issues: c.issues}
	}
	return nil
}

type checker struct {
	issues []*ValidationError
	active map[uintptr]struct{}
}

func (c *checker) list(nodes []domain.Component, path string, depth int) {
	if len(nodes) == 0 {
		return
	}
	id := reflect.ValueOf(nodes).Pointer()
	if _, seen := c.active[id]; seen {
		c.issues = append(c.issues, &ValidationError{Path: path, Code: CodeCycle, Reason: "container contains itself"})
		return
	}
	c.active[id] = struct{}{}
	defer delete(c.active, id)

	for i, node := range nodes {
		p := path + "/" + strconv.Itoa(i)
		if node == nil {
			c.issues = append(c.issues, &ValidationError{Path: p, Code: CodeNilComponent, Reason: "component is nil"})
			continue
		}
		box, ok := node.(domain.Container)
		if !ok {
			continue
		}
		if depth+1 >= DefaultMaxDepth {
			c.issues = append(c.issues, &ValidationError{
				Path:   p,
				Code:   CodeTooDeep,
				Reason: fmt.Sprintf("nesting exceeds %d levels", DefaultMaxDepth),
			})
			continue
		}
		c.list(box.Children, p+"/children", depth+1)
	}
}
