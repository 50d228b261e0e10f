package cli

import (
	"fmt"
	"strings"

	"github.com/veldt/gridfeat/internal/grid"
)

// ParseSelection parses repeated "object:feature,feature" flag values into
// a selection. Repeating an object merges its feature lists.
func ParseSelection(specs []string) (grid.Selection, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	sel := grid.Selection{}
	for _, spec := range specs {
		object, list, ok := strings.Cut(spec, ":")
		object = strings.TrimSpace(object)
		if !ok || object == "" {
			return nil, fmt.Errorf("malformed selection %q: want \"object:name,name\"", spec)
		}
		for _, name := range strings.Split(list, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("malformed selection %q: empty name", spec)
			}
			sel[object] = append(sel[object], name)
		}
	}
	return sel, nil
}
