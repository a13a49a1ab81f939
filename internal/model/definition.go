package model

// Overrideables holds the parts of a parameter definition that a per-
// instance or per-class override layer may replace (spec §3).
type Overrideables struct {
	Default        *Value
	Pattern        string
	AllowedValues  []Value // whitelist; empty means unrestricted
	DisallowedValues []Value // blacklist
	Min            *Value
	Max            *Value
	Inactive       bool
}

// Clone returns a deep-enough copy: the slices are duplicated so a later
// override on the clone cannot mutate the parent's.
func (o Overrideables) Clone() Overrideables {
	c := o
	if o.AllowedValues != nil {
		c.AllowedValues = append([]Value(nil), o.AllowedValues...)
	}
	if o.DisallowedValues != nil {
		c.DisallowedValues = append([]Value(nil), o.DisallowedValues...)
	}
	if o.Default != nil {
		d := *o.Default
		c.Default = &d
	}
	if o.Min != nil {
		m := *o.Min
		c.Min = &m
	}
	if o.Max != nil {
		m := *o.Max
		c.Max = &m
	}
	return c
}

// ParameterDefinition is the immutable, shared-after-load description of a
// parameter (spec §3). Per-instance overrides clone one of these (see
// Clone) rather than mutating the shared original.
type ParameterDefinition struct {
	ID   uint32
	Path string

	ValueType ValueType
	Rank      ValueRank

	Writeable        bool
	Beta             bool
	Deprecated       bool
	UserSetting      bool
	OnlyOnline       bool
	InstanceKey      bool

	Overrideables Overrideables

	// Method carries the in/out argument lists when ValueType ==
	// ValueTypeMethod; nil otherwise.
	Method *MethodDefinition
}

// Clone returns an instance-scoped override of d: a shallow copy sharing
// unaffected fields by value, with Overrideables deep-copied so the override
// layer can be mutated independently of the shared parent definition.
func (d ParameterDefinition) Clone() ParameterDefinition {
	c := d
	c.Overrideables = d.Overrideables.Clone()
	if d.Method != nil {
		m := *d.Method
		m.InArgs = append([]ArgumentDefinition(nil), d.Method.InArgs...)
		m.OutArgs = append([]ArgumentDefinition(nil), d.Method.OutArgs...)
		c.Method = &m
	}
	return c
}

// ArgumentDefinition describes one in- or out-argument of a method.
type ArgumentDefinition struct {
	Name    string
	Type    ValueType
	Rank    ValueRank
	Default *Value
}

// MethodDefinition specializes ParameterDefinition (ValueType ==
// ValueTypeMethod) with ordered in/out argument lists.
type MethodDefinition struct {
	InArgs  []ArgumentDefinition
	OutArgs []ArgumentDefinition
}

// AsMethodDefinition returns a clone of d with ValueType forced to
// ValueTypeMethod, matching the dispatcher's "clone as a method definition
// when value_type == method" read-path step (§4.3 step 2). d must already
// carry a non-nil Method.
func (d ParameterDefinition) AsMethodDefinition() ParameterDefinition {
	c := d.Clone()
	c.ValueType = ValueTypeMethod
	return c
}

// EnumMember is one {name, integer_value} pair of an EnumDefinition.
type EnumMember struct {
	Name  string
	Value int64
}

// EnumDefinition is a named, ordered set of integer-valued members.
type EnumDefinition struct {
	Name    string
	Members []EnumMember
}
