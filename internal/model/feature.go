package model

// FeatureDefinition is a named group of classes and/or direct parameter
// definitions; features recursively include other features and drive
// provider-selector matching (spec §3, §4.5).
type FeatureDefinition struct {
	Name       string
	Classes    []string
	Parameters []ParameterDefinition
	Features   []string // nested feature names, recursively included

	// ResolvedClasses/ResolvedParameters are the transitive closure over
	// nested Features, computed once at load time.
	ResolvedClasses    []string
	ResolvedParameters []ParameterDefinition
}
