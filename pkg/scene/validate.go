package scene

import (
	"fmt"

	"github.com/ChicagoDave/cityenvelope/pkg/validation"
)

// ValidateGraph performs structural validation on a scene graph output.
// It checks entity integrity, group index consistency, and bounds enclosure.
func ValidateGraph(g *Graph) *validation.Report {
	r := validation.NewReport()

	if g == nil {
		r.AddError(validation.Result{
			Level:   validation.LevelScene,
			Message: "scene graph is nil",
		})
		return r
	}

	validateEntityIDs(g, r)
	validateGroupIndices(g, r)
	validateGroupMembership(g, r)
	validateChildren(g, r)
	validateBoundsEnclosure(g, r)
	validateEntityDimensions(g, r)

	return r
}

func validateEntityIDs(g *Graph, r *validation.Report) {
	seen := make(map[string]int, len(g.Entities))

	for i, e := range g.Entities {
		if e.ID == "" {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity at index %d has empty ID", i),
				Path:        fmt.Sprintf("entities[%d].id", i),
				ActualValue: "",
				Expected:    "non-empty string",
			})
			continue
		}
		if prev, exists := seen[e.ID]; exists {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("duplicate entity ID %q at indices %d and %d", e.ID, prev, i),
				Path:        fmt.Sprintf("entities[%d].id", i),
				ActualValue: e.ID,
			})
		}
		seen[e.ID] = i
	}
}

func validateGroupIndices(g *Graph, r *validation.Report) {
	entityIDs := make(map[string]bool, len(g.Entities))
	for _, e := range g.Entities {
		entityIDs[e.ID] = true
	}

	checkGroup := func(groupType, groupName string, ids []string) {
		for _, id := range ids {
			if !entityIDs[id] {
				r.AddError(validation.Result{
					Level:       validation.LevelScene,
					Message:     fmt.Sprintf("group %s.%s references non-existent entity %q", groupType, groupName, id),
					Path:        fmt.Sprintf("groups.%s.%s", groupType, groupName),
					ActualValue: id,
					Expected:    "existing entity ID",
				})
			}
		}
	}

	for name, ids := range g.Groups.Districts {
		checkGroup("districts", name, ids)
	}
	for name, ids := range g.Groups.RoofTypes {
		checkGroup("roof_types", name, ids)
	}
	for name, ids := range g.Groups.Functions {
		checkGroup("functions", name, ids)
	}
	for name, ids := range g.Groups.LODs {
		checkGroup("lods", string(name), ids)
	}
	for name, ids := range g.Groups.EntityTypes {
		checkGroup("entity_types", string(name), ids)
	}
}

// membership indexes a group as group name -> member ids.
func membership[K ~string](groups map[K][]string) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(groups))
	for name, ids := range groups {
		m := make(map[string]bool, len(ids))
		for _, id := range ids {
			m[id] = true
		}
		out[string(name)] = m
	}
	return out
}

func validateGroupMembership(g *Graph, r *validation.Report) {
	groups := []struct {
		name     string
		members  map[string]map[string]bool
		value    func(Entity) string
		required bool
	}{
		{"lods", membership(g.Groups.LODs), func(e Entity) string { return string(e.LOD) }, true},
		{"entity_types", membership(g.Groups.EntityTypes), func(e Entity) string { return string(e.Type) }, true},
		{"districts", membership(g.Groups.Districts), func(e Entity) string { return e.District }, false},
		{"roof_types", membership(g.Groups.RoofTypes), func(e Entity) string { return e.RoofType }, false},
		{"functions", membership(g.Groups.Functions), func(e Entity) string { return e.Function }, false},
	}

	for _, e := range g.Entities {
		if e.ID == "" {
			continue
		}
		for _, grp := range groups {
			v := grp.value(e)
			if v == "" {
				if grp.required {
					r.AddError(validation.Result{
						Level:       validation.LevelScene,
						Message:     fmt.Sprintf("entity %q has no value for %s", e.ID, grp.name),
						Path:        "groups." + grp.name,
						ActualValue: e.ID,
					})
				}
				continue
			}
			m, ok := grp.members[v]
			if !ok {
				r.AddError(validation.Result{
					Level:       validation.LevelScene,
					Message:     fmt.Sprintf("entity %q has %s %q but no such group exists", e.ID, grp.name, v),
					Path:        "groups." + grp.name,
					ActualValue: v,
				})
				continue
			}
			if !m[e.ID] {
				r.AddError(validation.Result{
					Level:       validation.LevelScene,
					Message:     fmt.Sprintf("entity %q has %s %q but is not in that group", e.ID, grp.name, v),
					Path:        fmt.Sprintf("groups.%s.%s", grp.name, v),
					ActualValue: e.ID,
				})
			}
		}
	}
}

func validateChildren(g *Graph, r *validation.Report) {
	entityIDs := make(map[string]bool, len(g.Entities))
	for _, e := range g.Entities {
		entityIDs[e.ID] = true
	}
	for _, e := range g.Entities {
		for _, child := range e.Children {
			if !entityIDs[child] {
				r.AddError(validation.Result{
					Level:       validation.LevelScene,
					Message:     fmt.Sprintf("entity %q lists missing child %q", e.ID, child),
					Path:        fmt.Sprintf("entities.%s.children", e.ID),
					ActualValue: child,
				})
			}
		}
	}
}

func validateBoundsEnclosure(g *Graph, r *validation.Report) {
	bounds := g.Metadata.Bounds
	tolerance := 1.0

	for _, e := range g.Entities {
		halfX := e.Dimensions.X / 2
		halfZ := e.Dimensions.Z / 2

		if e.Position.X-halfX < bounds.Min.X-tolerance || e.Position.X+halfX > bounds.Max.X+tolerance {
			r.AddWarning(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity %q X extent [%.1f, %.1f] outside scene bounds [%.1f, %.1f]", e.ID, e.Position.X-halfX, e.Position.X+halfX, bounds.Min.X, bounds.Max.X),
				Path:        "metadata.bounds",
				ActualValue: e.Position.X,
			})
			break
		}
		if e.Position.Z-halfZ < bounds.Min.Z-tolerance || e.Position.Z+halfZ > bounds.Max.Z+tolerance {
			r.AddWarning(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity %q Z extent [%.1f, %.1f] outside scene bounds [%.1f, %.1f]", e.ID, e.Position.Z-halfZ, e.Position.Z+halfZ, bounds.Min.Z, bounds.Max.Z),
				Path:        "metadata.bounds",
				ActualValue: e.Position.Z,
			})
			break
		}
	}
}

// validateEntityDimensions checks plan extents. Surfaces are planar and may
// be flat along one axis; footprints may have no height.
func validateEntityDimensions(g *Graph, r *validation.Report) {
	for _, e := range g.Entities {
		if e.Type == EntitySurface {
			continue
		}
		if e.Dimensions.X <= 0 || e.Dimensions.Z <= 0 || e.Dimensions.Y < 0 {
			r.AddWarning(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity %q has degenerate dimensions (%.2f, %.2f, %.2f)", e.ID, e.Dimensions.X, e.Dimensions.Y, e.Dimensions.Z),
				Path:        fmt.Sprintf("entities.%s.dimensions", e.ID),
				ActualValue: fmt.Sprintf("%.2f x %.2f x %.2f", e.Dimensions.X, e.Dimensions.Y, e.Dimensions.Z),
				Expected:    "plan dimensions > 0, height >= 0",
			})
		}
	}
}
