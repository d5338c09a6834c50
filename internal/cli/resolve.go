package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
)

// resolveRef maps user input to one id: exact id, then case-insensitive
// name, then unique id prefix.
func resolveRef(kind, input string, ids, names []string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("%s ID is required", kind)
	}

	// 1. Exact UUID match
	for _, id := range ids {
		if id == input {
			return id, nil
		}
	}

	// 2. Exact name match (case-insensitive)
	var byName []string
	for i, name := range names {
		if strings.EqualFold(name, input) {
			byName = append(byName, ids[i])
		}
	}
	switch len(byName) {
	case 1:
		return byName[0], nil
	case 0:
	default:
		return "", fmt.Errorf("%s name %q is ambiguous (%d matches); use the ID", kind, input, len(byName))
	}

	// 3. UUID prefix match
	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s not found: %q", kind, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}

func resolveItemID(ctx context.Context, app *App, input string) (string, error) {
	items, err := app.WorkItems.List(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(items))
	names := make([]string, len(items))
	for i, w := range items {
		ids[i], names[i] = w.ID, w.Title
	}
	return resolveRef("work item", input, ids, names)
}

func resolveResourceID(ctx context.Context, app *App, input string) (string, error) {
	resources, err := app.Resources.List(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(resources))
	names := make([]string, len(resources))
	for i, r := range resources {
		ids[i], names[i] = r.ID, r.Name
	}
	return resolveRef("resource", input, ids, names)
}

// parseDateFlag parses YYYY-MM-DD, or returns today when s is empty.
func parseDateFlag(name, s string) (time.Time, error) {
	if s == "" {
		return domain.Day(time.Now().UTC()), nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date %q: %w", name, s, err)
	}
	return d, nil
}

func resourceIndex(ctx context.Context, app *App) (map[string]*domain.Resource, error) {
	list, err := app.Resources.List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]*domain.Resource, len(list))
	for _, r := range list {
		m[r.ID] = r
	}
	return m, nil
}

func itemIndex(ctx context.Context, app *App) (map[string]*domain.WorkItem, error) {
	list, err := app.WorkItems.List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]*domain.WorkItem, len(list))
	for _, w := range list {
		m[w.ID] = w
	}
	return m, nil
}
