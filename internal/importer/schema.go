package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ImportSchema is the top-level structure of a plan file.
type ImportSchema struct {
	Resources    []ResourceImport   `json:"resources,omitempty" yaml:"resources,omitempty"`
	Items        []WorkItemImport   `json:"items" yaml:"items"`
	Dependencies []DependencyImport `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// ResourceImport defines a resource and its per-date availability overrides.
type ResourceImport struct {
	Ref          string             `json:"ref" yaml:"ref"`
	Name         string             `json:"name" yaml:"name"`
	Role         string             `json:"role,omitempty" yaml:"role,omitempty"`
	WeeklyHours  *float64           `json:"weekly_hours,omitempty" yaml:"weekly_hours,omitempty"`
	Availability map[string]float64 `json:"availability,omitempty" yaml:"availability,omitempty"`
	Skills       []string           `json:"skills,omitempty" yaml:"skills,omitempty"`
	// MetadataFilters limits the items this resource accepts.
	MetadataFilters map[string]string `json:"metadata_filters,omitempty" yaml:"metadata_filters,omitempty"`
}

// WorkItemImport defines a work item in the plan file.
type WorkItemImport struct {
	Ref            string   `json:"ref" yaml:"ref"`
	Title          string   `json:"title" yaml:"title"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty" yaml:"estimated_hours,omitempty"`
	ResourceRef    *string  `json:"resource_ref,omitempty" yaml:"resource_ref,omitempty"`
	Status         string   `json:"status,omitempty" yaml:"status,omitempty"`
	DueDate        *string  `json:"due_date,omitempty" yaml:"due_date,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// DependencyImport defines an edge between two item refs. Kind defaults to
// finish_to_start.
type DependencyImport struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// LoadImportSchema reads a plan file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes a JSON plan document.
func ParseJSON(data []byte) (*ImportSchema, error) {
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}

// ParseYAML decodes a YAML plan document.
func ParseYAML(data []byte) (*ImportSchema, error) {
	var schema ImportSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
