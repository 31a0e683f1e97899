// Package validator checks scenario documents before they are compiled.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/postman/internal/dto"
)

// ValidateScenario reports every structural problem of sc at once: missing
// or duplicate IDs, mutations against unknown nodes and expectations naming
// nodes that do not exist.
func ValidateScenario(sc *dto.Scenario) error {
	var errs []string

	ids := make(map[string]bool)
	stack := []dto.NodeSpec{sc.Tree}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch {
		case n.ID == "":
			errs = append(errs, "node without id")
		case ids[n.ID]:
			errs = append(errs, fmt.Sprintf("duplicate node id '%s'", n.ID))
		default:
			ids[n.ID] = true
		}
		stack = append(stack, n.Children...)
	}

	for i, req := range sc.Requests {
		name := req.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		for _, m := range req.Mutations {
			if !ids[m.Node] {
				errs = append(errs, fmt.Sprintf("request %s: mutation targets unknown node '%s'", name, m.Node))
			}
			if len(m.Set) == 0 && len(m.Delete) == 0 {
				errs = append(errs, fmt.Sprintf("request %s: empty mutation on '%s'", name, m.Node))
			}
		}
		if req.Expect != nil {
			for _, id := range *req.Expect {
				if !ids[id] {
					errs = append(errs, fmt.Sprintf("request %s: expected boundary '%s' does not exist", name, id))
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(errs, "\n- "))
	}
	return nil
}
