package domain

import "fmt"

// Dependency is a directed precedence edge: From must be honoured before To
// according to Kind.
type Dependency struct {
	From string
	To   string
	Kind DependencyType
}

// Validate rejects self-dependencies, empty endpoints and unknown kinds.
func (d Dependency) Validate() error {
	if d.From == "" || d.To == "" {
		return fmt.Errorf("dependency endpoints are required")
	}
	if d.From == d.To {
		return fmt.Errorf("work item %s cannot depend on itself", d.From)
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("invalid dependency type %q", d.Kind)
	}
	return nil
}
