package model

import "fmt"

// ValueType is the primitive (or structural) type of a parameter's value.
type ValueType int

const (
	ValueTypeBoolean ValueType = iota
	ValueTypeInt8
	ValueTypeUint8
	ValueTypeInt16
	ValueTypeUint16
	ValueTypeInt32
	ValueTypeUint32
	ValueTypeInt64
	ValueTypeUint64
	ValueTypeFloat
	ValueTypeDouble
	ValueTypeString
	ValueTypeBytes
	ValueTypeEnum
	ValueTypeFileID
	ValueTypeMethod
	ValueTypeInstantiations
	ValueTypeInstanceIdentityRef
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeBoolean:
		return "boolean"
	case ValueTypeInt8:
		return "int8"
	case ValueTypeUint8:
		return "uint8"
	case ValueTypeInt16:
		return "int16"
	case ValueTypeUint16:
		return "uint16"
	case ValueTypeInt32:
		return "int32"
	case ValueTypeUint32:
		return "uint32"
	case ValueTypeInt64:
		return "int64"
	case ValueTypeUint64:
		return "uint64"
	case ValueTypeFloat:
		return "float"
	case ValueTypeDouble:
		return "double"
	case ValueTypeString:
		return "string"
	case ValueTypeBytes:
		return "bytes"
	case ValueTypeEnum:
		return "enum"
	case ValueTypeFileID:
		return "file_id"
	case ValueTypeMethod:
		return "method"
	case ValueTypeInstantiations:
		return "instantiations"
	case ValueTypeInstanceIdentityRef:
		return "instance_identity_reference"
	default:
		return "unknown"
	}
}

// ValueRank distinguishes a scalar value from an array of values.
type ValueRank int

const (
	RankScalar ValueRank = iota
	RankArray
)

// Value is the tagged-variant parameter value: exactly one of Scalar or
// Array is meaningful, selected by the owning definition's ValueType/Rank.
// Go's type system does not give us a closed sum type as cheaply as the
// original's variant, so Value stores an `any` payload and lets validation
// (Validate, in validate.go) be the single place that enforces the shape.
type Value struct {
	Type  ValueType
	Rank  ValueRank
	Raw   any   // scalar payload, or []any for RankArray
	Class []ClassInstantiationValue
}

// ClassInstantiationValue is the payload of a ValueTypeInstantiations value:
// the set of class instances currently asserted for a class's instance
// slot, before (WDD-declared) or after (provider-reported, for dynamic
// classes) re-resolution against the live model.
type ClassInstantiationValue struct {
	InstanceID       uint16
	Classes          []string // as declared/reported
	AdditionalClasses []string
	CollectedClasses []string // resolved_includes closure, filled by the resolver
}

func (v Value) String() string {
	if v.Rank == RankArray {
		return fmt.Sprintf("%v[]", v.Raw)
	}
	return fmt.Sprintf("%v", v.Raw)
}
