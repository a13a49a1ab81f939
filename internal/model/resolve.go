package model

import "fmt"

// resolvedParam is the working accumulator for one parameter id while
// resolving a single class: def carries the currently-winning value for
// every field, and origin<Field> records which class last won that field,
// so a later merge can tell whether a new contender is that class's
// descendant (always wins), its ancestor (never wins), or unrelated (first
// one processed wins).
type resolvedParam struct {
	def ParameterDefinition

	originDefault, originPattern           string
	originAllowed, originDisallowed        string
	originMin, originMax                   string
	originInactive, originWriteable        string
}

type paramFieldMap map[uint32]*resolvedParam

func (p *resolvedParam) clone() *resolvedParam {
	c := *p
	c.def = p.def.Clone()
	return &c
}

// ResolveClasses computes ResolvedIncludes and ResolvedParameterDefinitions
// for every class in classes, in place. classes must already contain every
// class named anywhere in an Includes list (missing references are an
// error), and the Includes graph must be acyclic.
//
// The merge rule (spec §6, confirmed against the diamond-inheritance test
// matrix): a class's own declared parameters and overrides always win
// against anything inherited, because the class is by construction a
// descendant of everything it includes (rule 1). Among two inherited
// contributions that are not in an ancestor/descendant relationship with
// each other, the one reached through the earlier entry of Includes wins
// (rule 2). This is resolved independently per overridable field, not once
// per parameter: a class that overrides only Default leaves Pattern (and
// every other field) to fall through to whichever ancestor last set it.
func ResolveClasses(classes map[string]*ClassDefinition) error {
	ancestors, err := buildAncestorSets(classes)
	if err != nil {
		return err
	}

	memo := map[string]paramFieldMap{}
	visiting := map[string]bool{}
	for id := range classes {
		if _, err := resolveClassFields(id, classes, ancestors, memo, visiting); err != nil {
			return err
		}
	}

	for id, class := range classes {
		class.ResolvedIncludes = resolvedIncludesOf(id, classes)
		fields := memo[id]
		defs := make([]ParameterDefinition, 0, len(fields))
		for _, rp := range fields {
			defs = append(defs, rp.def)
		}
		sortParameterDefinitions(defs)
		class.ResolvedParameterDefinitions = defs
	}
	return nil
}

func buildAncestorSets(classes map[string]*ClassDefinition) (map[string]map[string]bool, error) {
	sets := make(map[string]map[string]bool, len(classes))
	var visit func(id string, stack map[string]bool) (map[string]bool, error)
	visit = func(id string, stack map[string]bool) (map[string]bool, error) {
		if s, ok := sets[id]; ok {
			return s, nil
		}
		if stack[id] {
			return nil, fmt.Errorf("model: Includes cycle detected at class %q", id)
		}
		class, ok := classes[id]
		if !ok {
			return nil, fmt.Errorf("model: class %q not found", id)
		}
		stack[id] = true
		set := map[string]bool{}
		for _, incID := range class.Includes {
			inc, err := visit(incID, stack)
			if err != nil {
				return nil, err
			}
			set[incID] = true
			for a := range inc {
				set[a] = true
			}
		}
		delete(stack, id)
		sets[id] = set
		return set, nil
	}
	for id := range classes {
		if _, err := visit(id, map[string]bool{}); err != nil {
			return nil, err
		}
	}
	return sets, nil
}

// resolvedIncludesOf returns the depth-first, first-occurrence closure of
// id's Includes chain (not including id itself).
func resolvedIncludesOf(id string, classes map[string]*ClassDefinition) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(cur string)
	walk = func(cur string) {
		class, ok := classes[cur]
		if !ok {
			return
		}
		for _, incID := range class.Includes {
			if seen[incID] {
				continue
			}
			seen[incID] = true
			out = append(out, incID)
			walk(incID)
		}
	}
	walk(id)
	return out
}

func resolveClassFields(id string, classes map[string]*ClassDefinition, ancestors map[string]map[string]bool, memo map[string]paramFieldMap, visiting map[string]bool) (paramFieldMap, error) {
	if m, ok := memo[id]; ok {
		return m, nil
	}
	if visiting[id] {
		return nil, fmt.Errorf("model: Includes cycle detected at class %q", id)
	}
	class, ok := classes[id]
	if !ok {
		return nil, fmt.Errorf("model: class %q not found", id)
	}
	visiting[id] = true

	acc := paramFieldMap{}
	for _, incID := range class.Includes {
		incMap, err := resolveClassFields(incID, classes, ancestors, memo, visiting)
		if err != nil {
			return nil, err
		}
		mergeFieldMaps(acc, incMap, ancestors)
	}

	for _, p := range class.OwnParameters {
		acc[p.ID] = &resolvedParam{
			def:              p.Clone(),
			originDefault:    id,
			originPattern:    id,
			originAllowed:    id,
			originDisallowed: id,
			originMin:        id,
			originMax:        id,
			originInactive:   id,
			originWriteable:  id,
		}
	}

	for _, ov := range class.OwnOverrides {
		rp, ok := acc[ov.ParameterID]
		if !ok {
			return nil, fmt.Errorf("model: class %q overrides unknown parameter id %d", id, ov.ParameterID)
		}
		applyOverride(rp, ov, id)
	}

	visiting[id] = false
	memo[id] = acc
	return acc, nil
}

// mergeFieldMaps folds incMap's contributions into acc. acc is built up by
// calling this once per entry of a class's Includes, in declaration order,
// so "acc has no entry yet" naturally means "processed from an earlier
// Includes entry" for the Rule-2 tiebreak inside mergeOne.
func mergeFieldMaps(acc, incMap paramFieldMap, ancestors map[string]map[string]bool) {
	for pid, incEntry := range incMap {
		existing, ok := acc[pid]
		if !ok {
			acc[pid] = incEntry.clone()
			continue
		}
		mergeOne(existing, incEntry, ancestors)
	}
}

// mergeOne reconciles one already-accumulated resolvedParam with a newly
// encountered contribution for the same parameter id, field by field.
func mergeOne(existing, incoming *resolvedParam, ancestors map[string]map[string]bool) {
	moreSpecific := func(existingOrigin, incomingOrigin string) bool {
		if existingOrigin == incomingOrigin {
			return false
		}
		if ancestors[incomingOrigin][existingOrigin] {
			// existingOrigin is an ancestor of incomingOrigin: incoming wins.
			return true
		}
		return false
	}

	if moreSpecific(existing.originDefault, incoming.originDefault) {
		existing.def.Overrideables.Default = incoming.def.Overrideables.Default
		existing.originDefault = incoming.originDefault
	}
	if moreSpecific(existing.originPattern, incoming.originPattern) {
		existing.def.Overrideables.Pattern = incoming.def.Overrideables.Pattern
		existing.originPattern = incoming.originPattern
	}
	if moreSpecific(existing.originAllowed, incoming.originAllowed) {
		existing.def.Overrideables.AllowedValues = incoming.def.Overrideables.AllowedValues
		existing.originAllowed = incoming.originAllowed
	}
	if moreSpecific(existing.originDisallowed, incoming.originDisallowed) {
		existing.def.Overrideables.DisallowedValues = incoming.def.Overrideables.DisallowedValues
		existing.originDisallowed = incoming.originDisallowed
	}
	if moreSpecific(existing.originMin, incoming.originMin) {
		existing.def.Overrideables.Min = incoming.def.Overrideables.Min
		existing.originMin = incoming.originMin
	}
	if moreSpecific(existing.originMax, incoming.originMax) {
		existing.def.Overrideables.Max = incoming.def.Overrideables.Max
		existing.originMax = incoming.originMax
	}
	if moreSpecific(existing.originInactive, incoming.originInactive) {
		existing.def.Overrideables.Inactive = incoming.def.Overrideables.Inactive
		existing.originInactive = incoming.originInactive
	}
	if moreSpecific(existing.originWriteable, incoming.originWriteable) {
		existing.def.Writeable = incoming.def.Writeable
		existing.originWriteable = incoming.originWriteable
	}
}

// applyOverride lays class id's own override fields onto rp. id is always
// the most specific class in play at this point in the recursion (every
// entry already in acc was reached through one of id's Includes, so id is
// their descendant by construction) so every field ov mentions wins
// unconditionally.
func applyOverride(rp *resolvedParam, ov ParameterOverride, id string) {
	if ov.HasDefault {
		rp.def.Overrideables.Default = ov.Default
		rp.originDefault = id
	}
	if ov.HasPattern {
		rp.def.Overrideables.Pattern = ov.Pattern
		rp.originPattern = id
	}
	if ov.HasAllowedValues {
		rp.def.Overrideables.AllowedValues = ov.AllowedValues
		rp.originAllowed = id
	}
	if ov.HasDisallowedValues {
		rp.def.Overrideables.DisallowedValues = ov.DisallowedValues
		rp.originDisallowed = id
	}
	if ov.HasMin {
		rp.def.Overrideables.Min = ov.Min
		rp.originMin = id
	}
	if ov.HasMax {
		rp.def.Overrideables.Max = ov.Max
		rp.originMax = id
	}
	if ov.HasInactive {
		rp.def.Overrideables.Inactive = ov.Inactive
		rp.originInactive = id
	}
	if ov.HasWriteable {
		rp.def.Writeable = ov.Writeable
		rp.originWriteable = id
	}
}

func sortParameterDefinitions(defs []ParameterDefinition) {
	// insertion sort: the inputs are small (a class rarely exposes more
	// than a few dozen parameters) and this keeps ResolvedParameterDefinitions
	// deterministic across runs without pulling in sort for eight lines.
	for i := 1; i < len(defs); i++ {
		j := i
		for j > 0 && defs[j-1].ID > defs[j].ID {
			defs[j-1], defs[j] = defs[j], defs[j-1]
			j--
		}
	}
}
