package model

import "fmt"

// Model is the fully loaded, resolved device model: every class and
// feature a WDM declares, plus the global parameter-id space a device's
// instances and the dispatcher index against. It is immutable once
// returned by a loader; reloading (spec: "deferred reload on new model
// info") produces a fresh Model rather than mutating this one.
type Model struct {
	Name    string
	Version string

	Classes  map[string]*ClassDefinition
	Features map[string]*FeatureDefinition
	Enums    map[string]*EnumDefinition

	// ParameterOwner maps a global parameter id to the class that declared
	// it (spec: ids are unique across the whole model, not per class).
	ParameterOwner map[uint32]string
}

// NewModel returns an empty, mutable Model a loader can populate before
// calling Finalize.
func NewModel(name, version string) *Model {
	return &Model{
		Name:           name,
		Version:        version,
		Classes:        map[string]*ClassDefinition{},
		Features:       map[string]*FeatureDefinition{},
		Enums:          map[string]*EnumDefinition{},
		ParameterOwner: map[uint32]string{},
	}
}

// Finalize resolves every class's inheritance chain and the feature
// closure, and indexes the global parameter-id space. Call once after all
// classes/features/enums have been added.
func (m *Model) Finalize() error {
	if err := ResolveClasses(m.Classes); err != nil {
		return err
	}
	if err := resolveFeatures(m.Features, m.Classes); err != nil {
		return err
	}
	for classID, class := range m.Classes {
		for _, p := range class.OwnParameters {
			if owner, ok := m.ParameterOwner[p.ID]; ok && owner != classID {
				return fmt.Errorf("model: parameter id %d declared by both %q and %q", p.ID, owner, classID)
			}
			m.ParameterOwner[p.ID] = classID
		}
	}
	return nil
}

// ClassByID returns the named class, or false if it is not in the model.
func (m *Model) ClassByID(id string) (*ClassDefinition, bool) {
	c, ok := m.Classes[id]
	return c, ok
}

// ParameterDefinitionFor returns the resolved definition of parameter id on
// the given class, or false if that class does not expose it.
func (m *Model) ParameterDefinitionFor(classID string, paramID uint32) (ParameterDefinition, bool) {
	class, ok := m.Classes[classID]
	if !ok {
		return ParameterDefinition{}, false
	}
	for _, d := range class.ResolvedParameterDefinitions {
		if d.ID == paramID {
			return d, true
		}
	}
	return ParameterDefinition{}, false
}

// ValueTypeRankOf returns the declared type/rank of a global parameter id,
// looked up via ParameterOwner. Used by loaders that must decode an
// untyped JSON value payload (a WDD parameter value or override) against
// the type its id was declared with, which may be on a different class
// than the one doing the overriding.
func (m *Model) ValueTypeRankOf(paramID uint32) (ValueType, ValueRank, bool) {
	classID, ok := m.ParameterOwner[paramID]
	if !ok {
		return 0, 0, false
	}
	def, ok := m.ParameterDefinitionFor(classID, paramID)
	if !ok {
		return 0, 0, false
	}
	return def.ValueType, def.Rank, true
}

// IsInstanceOf reports whether classID is, or transitively includes,
// ancestorID.
func (m *Model) IsInstanceOf(classID, ancestorID string) bool {
	if classID == ancestorID {
		return true
	}
	class, ok := m.Classes[classID]
	if !ok {
		return false
	}
	for _, inc := range class.ResolvedIncludes {
		if inc == ancestorID {
			return true
		}
	}
	return false
}

func resolveFeatures(features map[string]*FeatureDefinition, classes map[string]*ClassDefinition) error {
	memo := map[string]bool{}
	visiting := map[string]bool{}
	var resolve func(name string) error
	resolve = func(name string) error {
		if memo[name] {
			return nil
		}
		if visiting[name] {
			return fmt.Errorf("model: feature include cycle detected at %q", name)
		}
		f, ok := features[name]
		if !ok {
			return fmt.Errorf("model: feature %q not found", name)
		}
		visiting[name] = true

		classSeen := map[string]bool{}
		var classList []string
		params := append([]ParameterDefinition(nil), f.Parameters...)
		for _, c := range f.Classes {
			if _, ok := classes[c]; !ok {
				return fmt.Errorf("model: feature %q references unknown class %q", name, c)
			}
			if !classSeen[c] {
				classSeen[c] = true
				classList = append(classList, c)
			}
		}
		for _, nested := range f.Features {
			if err := resolve(nested); err != nil {
				return err
			}
			nf := features[nested]
			for _, c := range nf.ResolvedClasses {
				if !classSeen[c] {
					classSeen[c] = true
					classList = append(classList, c)
				}
			}
			params = append(params, nf.ResolvedParameters...)
		}
		f.ResolvedClasses = classList
		f.ResolvedParameters = params

		visiting[name] = false
		memo[name] = true
		return nil
	}
	for name := range features {
		if err := resolve(name); err != nil {
			return err
		}
	}
	return nil
}
