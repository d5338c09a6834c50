package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/graph"
	"github.com/google/uuid"
)

// defaultWeeklyHours applies when a resource omits weekly_hours.
const defaultWeeklyHours = 40

// ImportedPlan holds the domain objects produced from a plan file, in file
// order, ready for persistence.
type ImportedPlan struct {
	Resources    []*domain.Resource
	Items        []*domain.WorkItem
	Dependencies []domain.Dependency
	// Refs maps every file ref (resources and items) to its generated id.
	Refs map[string]string
	// Graph is the dependency graph over the generated item ids.
	Graph *graph.DependencyGraph
}

// Convert transforms a validated ImportSchema into domain objects.
// Call ValidateImportSchema first; Convert still refuses unresolved refs
// and cyclic dependencies.
func Convert(schema *ImportSchema) (*ImportedPlan, error) {
	now := time.Now().UTC()
	plan := &ImportedPlan{
		Refs:  make(map[string]string),
		Graph: graph.New(),
	}

	resourceIDs := make(map[string]string)
	for _, r := range schema.Resources {
		res := &domain.Resource{
			ID:           uuid.New().String(),
			Name:         r.Name,
			Role:         r.Role,
			WeeklyHours:  domain.ValueOr(r.WeeklyHours, defaultWeeklyHours),
			Availability: make(map[string]float64, len(r.Availability)),
			Skills:       append([]string(nil), r.Skills...),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if len(r.MetadataFilters) > 0 {
			res.MetadataFilters = copyStringMap(r.MetadataFilters)
		}
		for date, hours := range r.Availability {
			d, err := domain.ParseDate(date)
			if err != nil {
				return nil, fmt.Errorf("parsing availability date for resource %q: %w", r.Ref, err)
			}
			res.Availability[domain.DateKey(d)] = hours
		}
		resourceIDs[r.Ref] = res.ID
		plan.Refs[r.Ref] = res.ID
		plan.Resources = append(plan.Resources, res)
	}

	itemIDs := make(map[string]string)
	for _, wi := range schema.Items {
		item := &domain.WorkItem{
			ID:             uuid.New().String(),
			Title:          wi.Title,
			Status:         domain.WorkItemStatus(domain.CoalesceStr(wi.Status, string(domain.WorkItemTodo))),
			EstimatedHours: wi.EstimatedHours,
			DueDate:        parseOptionalDate(wi.DueDate),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if len(wi.Metadata) > 0 {
			item.Metadata = copyStringMap(wi.Metadata)
		}
		if ref := domain.ValueOr(wi.ResourceRef, ""); ref != "" {
			resID, ok := resourceIDs[ref]
			if !ok {
				return nil, fmt.Errorf("resource_ref %q not found for item %q", ref, wi.Ref)
			}
			item.AssignedResourceID = &resID
		}
		itemIDs[wi.Ref] = item.ID
		plan.Refs[wi.Ref] = item.ID
		plan.Items = append(plan.Items, item)
		plan.Graph.AddTask(item.ID)
	}

	for _, d := range schema.Dependencies {
		from, ok := itemIDs[d.From]
		if !ok {
			return nil, fmt.Errorf("from ref %q not found", d.From)
		}
		to, ok := itemIDs[d.To]
		if !ok {
			return nil, fmt.Errorf("to ref %q not found", d.To)
		}
		kind, err := domain.ParseDependencyType(d.Kind)
		if err != nil {
			return nil, fmt.Errorf("parsing dependency %s -> %s: %w", d.From, d.To, err)
		}
		dep := domain.Dependency{From: from, To: to, Kind: kind}
		if err := plan.Graph.AddDependency(dep); err != nil {
			return nil, fmt.Errorf("adding dependency %s -> %s: %w", d.From, d.To, err)
		}
		plan.Dependencies = append(plan.Dependencies, dep)
	}

	return plan, nil
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := domain.ParseDate(*s)
	if err != nil {
		return nil
	}
	return &t
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
