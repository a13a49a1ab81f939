package model

// ClassDefinition is one WDM class: its own declared parameters (only the
// declaring class carries these), the per-field overrides it applies to
// parameters inherited through Includes, and — once ResolveClasses has run
// — the fully resolved closure a device instance of this class actually
// exposes (spec §3, §6 precedence rules 1-2).
type ClassDefinition struct {
	ID       string
	BaseID   *uint32
	BasePath string
	// Includes lists direct base classes in declaration order; order only
	// matters as the Rule-2 tiebreak between classes that are not one
	// another's ancestor (see resolve.go).
	Includes  []string
	IsDynamic bool

	// OwnParameters are parameters declared directly on this class (in
	// practice only the root of a hierarchy declares a given id).
	OwnParameters []ParameterDefinition
	// OwnOverrides are per-field overrides this class applies to a
	// parameter id it inherited from (directly or transitively) one of
	// Includes.
	OwnOverrides []ParameterOverride

	// ResolvedIncludes is the transitive closure of Includes, first-
	// occurrence order from a depth-first walk of Includes left to right.
	// It is the set used for "is this instance of class X" checks; it is
	// NOT the order used to break override ties (see resolve.go).
	ResolvedIncludes []string

	// ResolvedParameterDefinitions is the final, fully merged parameter
	// set a device instance of this class exposes, keyed by nothing in
	// particular here — callers index by ParameterDefinition.ID.
	ResolvedParameterDefinitions []ParameterDefinition
}

// ParameterOverride is one class's field-level override of a parameter it
// inherited. Pointer/"Has*" fields distinguish "not mentioned" (falls
// through to whatever the resolver picks for that field) from "set to the
// zero value".
type ParameterOverride struct {
	ParameterID uint32

	Default    *Value
	HasDefault bool

	Pattern    string
	HasPattern bool

	AllowedValues    []Value
	HasAllowedValues bool

	DisallowedValues    []Value
	HasDisallowedValues bool

	Min    *Value
	HasMin bool
	Max    *Value
	HasMax bool

	Inactive    bool
	HasInactive bool

	Writeable    bool
	HasWriteable bool
}
