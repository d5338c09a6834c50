package importer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/alexanderramin/planwright/internal/graph"
)

// ValidateImportSchema checks the plan for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	resRefs := make(map[string]bool)
	errs = append(errs, validateResources(schema.Resources, resRefs)...)

	itemRefs := make(map[string]bool)
	errs = append(errs, validateWorkItems(schema.Items, resRefs, itemRefs)...)

	errs = append(errs, validateDependencies(schema.Dependencies, itemRefs)...)

	return errs
}

func validateResources(resources []ResourceImport, resRefs map[string]bool) []error {
	var errs []error

	for i, r := range resources {
		prefix := fmt.Sprintf("resources[%d]", i)

		if r.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if resRefs[r.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, r.Ref))
		} else {
			resRefs[r.Ref] = true
		}

		if r.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if r.WeeklyHours != nil && *r.WeeklyHours < 0 {
			errs = append(errs, fmt.Errorf("%s.weekly_hours must not be negative", prefix))
		}
		errs = append(errs, validateTags(prefix+".metadata_filters", r.MetadataFilters)...)
		for j, skill := range r.Skills {
			if skill == "" {
				errs = append(errs, fmt.Errorf("%s.skills[%d] must not be empty", prefix, j))
			}
		}

		dates := make([]string, 0, len(r.Availability))
		for date := range r.Availability {
			dates = append(dates, date)
		}
		sort.Strings(dates)
		for _, date := range dates {
			hours := r.Availability[date]
			if _, err := domain.ParseDate(date); err != nil {
				errs = append(errs, fmt.Errorf("%s.availability: invalid date format %q (expected YYYY-MM-DD)", prefix, date))
			}
			if hours < 0 {
				errs = append(errs, fmt.Errorf("%s.availability[%s] must not be negative", prefix, date))
			}
		}
	}

	return errs
}

func validateWorkItems(items []WorkItemImport, resRefs, itemRefs map[string]bool) []error {
	var errs []error

	for i, wi := range items {
		prefix := fmt.Sprintf("items[%d]", i)

		if wi.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if itemRefs[wi.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, wi.Ref))
		} else {
			itemRefs[wi.Ref] = true
		}

		if wi.Title == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}
		if wi.EstimatedHours != nil && *wi.EstimatedHours < 0 {
			errs = append(errs, fmt.Errorf("%s.estimated_hours must not be negative", prefix))
		}
		if wi.ResourceRef != nil && *wi.ResourceRef != "" && !resRefs[*wi.ResourceRef] {
			errs = append(errs, fmt.Errorf("%s.resource_ref: ref %q not found in resources", prefix, *wi.ResourceRef))
		}
		if wi.Status != "" && !domain.ValidWorkItemStatuses[wi.Status] {
			errs = append(errs, fmt.Errorf("%s.status: invalid value %q", prefix, wi.Status))
		}

		errs = append(errs, validateOptionalDate(prefix+".due_date", wi.DueDate)...)
		errs = append(errs, validateTags(prefix+".metadata", wi.Metadata)...)
	}

	return errs
}

func validateDependencies(deps []DependencyImport, itemRefs map[string]bool) []error {
	var errs []error
	g := graph.New()

	for i, d := range deps {
		prefix := fmt.Sprintf("dependencies[%d]", i)
		ok := true

		if d.From == "" {
			errs = append(errs, fmt.Errorf("%s.from is required", prefix))
			ok = false
		} else if !itemRefs[d.From] {
			errs = append(errs, fmt.Errorf("%s.from: ref %q not found in items", prefix, d.From))
			ok = false
		}

		if d.To == "" {
			errs = append(errs, fmt.Errorf("%s.to is required", prefix))
			ok = false
		} else if !itemRefs[d.To] {
			errs = append(errs, fmt.Errorf("%s.to: ref %q not found in items", prefix, d.To))
			ok = false
		}

		kind, err := domain.ParseDependencyType(d.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.kind: %w", prefix, err))
			ok = false
		}

		if d.From != "" && d.From == d.To {
			errs = append(errs, fmt.Errorf("%s: self-dependency (from == to == %q)", prefix, d.From))
			continue
		}
		if !ok {
			continue
		}

		if err := g.AddDependency(domain.Dependency{From: d.From, To: d.To, Kind: kind}); err != nil {
			if errors.Is(err, graph.ErrCycleDetected) {
				errs = append(errs, fmt.Errorf("%s: circular dependency detected involving %q and %q", prefix, d.From, d.To))
				continue
			}
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		}
	}

	return errs
}

func validateOptionalDate(field string, dateStr *string) []error {
	if dateStr == nil || *dateStr == "" {
		return nil
	}
	if _, err := domain.ParseDate(*dateStr); err != nil {
		return []error{fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, *dateStr)}
	}
	return nil
}

// validateTags rejects empty keys in a metadata map.
func validateTags(field string, tags map[string]string) []error {
	if _, ok := tags[""]; ok {
		return []error{fmt.Errorf("%s: keys must not be empty", field)}
	}
	return nil
}
