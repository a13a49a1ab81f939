package model

import "fmt"

// ResolveInstantiation resolves one WDD class instantiation: primary is the
// instantiation's declared Classes[], additional is AdditionalClasses
// (dynamic classes reported by a provider, or WDD-declared extras).
// AdditionalClasses behave as if appended to the primary class's Includes
// (spec §6's normative wire-format note, confirmed against
// class_instantiation_internal.hpp), so this treats {primary, additional}
// together as a synthetic class's Includes list and runs the same
// per-field, ancestor-aware merge ResolveClasses uses, then layers
// instance-level overrides on top unconditionally (Rule 5/6: per-instance
// overrides declared inside the WDD win over everything).
//
// classes must already be resolved (ResolveClasses called). Returns the
// merged parameter definitions and the transitive closure of every class
// name involved (collected_classes).
func ResolveInstantiation(classes map[string]*ClassDefinition, primary, additional []string, instanceOverrides []ParameterOverride) ([]ParameterDefinition, []string, error) {
	ancestors, err := buildAncestorSets(classes)
	if err != nil {
		return nil, nil, err
	}

	memo := map[string]paramFieldMap{}
	visiting := map[string]bool{}

	includes := append(append([]string(nil), primary...), additional...)

	acc := paramFieldMap{}
	for _, incID := range includes {
		incMap, err := resolveClassFields(incID, classes, ancestors, memo, visiting)
		if err != nil {
			return nil, nil, err
		}
		mergeFieldMaps(acc, incMap, ancestors)
	}

	const instanceOrigin = "$instance"
	for _, ov := range instanceOverrides {
		rp, ok := acc[ov.ParameterID]
		if !ok {
			return nil, nil, fmt.Errorf("model: instantiation overrides unknown parameter id %d", ov.ParameterID)
		}
		applyOverride(rp, ov, instanceOrigin)
	}

	defs := make([]ParameterDefinition, 0, len(acc))
	for _, rp := range acc {
		defs = append(defs, rp.def)
	}
	sortParameterDefinitions(defs)

	collected, err := collectClasses(classes, includes)
	if err != nil {
		return nil, nil, err
	}
	return defs, collected, nil
}

// collectClasses returns the transitive, first-occurrence closure of
// includes over classes' Includes chains: every class named plus every
// class it resolves to. Shared by ResolveInstantiation (WDD-time
// resolution) and ResolveClassInstantiations (read-path re-resolution of a
// provider-reported instantiations value, spec §4.3 step 6: "the core
// re-resolves its collected_classes against the live model before exposing
// it").
func collectClasses(classes map[string]*ClassDefinition, includes []string) ([]string, error) {
	seen := map[string]bool{}
	var collected []string
	for _, id := range includes {
		if _, ok := classes[id]; !ok {
			return nil, fmt.Errorf("model: class instantiation references unknown class %q", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		collected = append(collected, id)
		for _, anc := range resolvedIncludesOf(id, classes) {
			if !seen[anc] {
				seen[anc] = true
				collected = append(collected, anc)
			}
		}
	}
	return collected, nil
}

// ResolveClassInstantiations re-derives CollectedClasses for every value in
// values against the live class set classes, without touching Classes or
// AdditionalClasses. Used when a provider reports an instantiations value
// for a dynamic class at read time: the core must not trust a provider's
// own claim of collected_classes (spec §3 invariant).
func ResolveClassInstantiations(classes map[string]*ClassDefinition, values []ClassInstantiationValue) ([]ClassInstantiationValue, error) {
	out := make([]ClassInstantiationValue, len(values))
	for i, v := range values {
		includes := append(append([]string(nil), v.Classes...), v.AdditionalClasses...)
		collected, err := collectClasses(classes, includes)
		if err != nil {
			return nil, err
		}
		out[i] = v
		out[i].CollectedClasses = collected
	}
	return out, nil
}

// ApplyParameterOverrides clones each of defs that an override in overrides
// names and lays that override's fields on unconditionally, leaving every
// other definition untouched. Used for flat (non-hierarchical) override
// application, e.g. a WDD's device-root, classless parameter overrides,
// where there is no Includes chain to merge against.
func ApplyParameterOverrides(defs []ParameterDefinition, overrides []ParameterOverride) ([]ParameterDefinition, error) {
	byID := make(map[uint32]int, len(defs))
	out := make([]ParameterDefinition, len(defs))
	copy(out, defs)
	for i, d := range out {
		byID[d.ID] = i
	}
	for _, ov := range overrides {
		idx, ok := byID[ov.ParameterID]
		if !ok {
			return nil, fmt.Errorf("model: override of unknown parameter id %d", ov.ParameterID)
		}
		d := out[idx].Clone()
		if ov.HasDefault {
			d.Overrideables.Default = ov.Default
		}
		if ov.HasPattern {
			d.Overrideables.Pattern = ov.Pattern
		}
		if ov.HasAllowedValues {
			d.Overrideables.AllowedValues = ov.AllowedValues
		}
		if ov.HasDisallowedValues {
			d.Overrideables.DisallowedValues = ov.DisallowedValues
		}
		if ov.HasMin {
			d.Overrideables.Min = ov.Min
		}
		if ov.HasMax {
			d.Overrideables.Max = ov.Max
		}
		if ov.HasInactive {
			d.Overrideables.Inactive = ov.Inactive
		}
		if ov.HasWriteable {
			d.Writeable = ov.Writeable
		}
		out[idx] = d
	}
	return out, nil
}
