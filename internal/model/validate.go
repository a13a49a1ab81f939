package model

import (
	"fmt"
	"reflect"
	"regexp"
)

// Validate reports whether v is an acceptable value for def: it has def's
// rank, a Go-native shape matching def's value type, and satisfies every
// overrideable constraint def currently carries (pattern, allowed/
// disallowed lists, min/max, inactive). Used by internal/dispatch's
// write-path pre-check pass (spec §4.4). The read path does not call it:
// values a provider returns on read are integrated without this check.
func (v Value) Validate(def ParameterDefinition) error {
	if def.Overrideables.Inactive {
		return fmt.Errorf("model: parameter %d is inactive", def.ID)
	}
	if v.Rank != def.Rank {
		return fmt.Errorf("model: parameter %d expects rank %v, got %v", def.ID, def.Rank, v.Rank)
	}

	if v.Rank == RankArray {
		items, ok := v.Raw.([]any)
		if !ok {
			return fmt.Errorf("model: parameter %d expects an array value", def.ID)
		}
		for _, item := range items {
			if err := validateScalarShape(def.ID, def.ValueType, item); err != nil {
				return err
			}
		}
	} else if err := validateScalarShape(def.ID, def.ValueType, v.Raw); err != nil {
		return err
	}

	if len(def.Overrideables.AllowedValues) > 0 && !containsValue(def.Overrideables.AllowedValues, v) {
		return fmt.Errorf("model: value for parameter %d is not in its allowed-values list", def.ID)
	}
	if containsValue(def.Overrideables.DisallowedValues, v) {
		return fmt.Errorf("model: value for parameter %d is in its disallowed-values list", def.ID)
	}

	if def.Overrideables.Pattern != "" && v.Rank == RankScalar && def.ValueType == ValueTypeString {
		s, _ := v.Raw.(string)
		re, err := regexp.Compile(def.Overrideables.Pattern)
		if err != nil {
			return fmt.Errorf("model: parameter %d has an invalid pattern: %w", def.ID, err)
		}
		if !re.MatchString(s) {
			return fmt.Errorf("model: value %q for parameter %d does not match its pattern", s, def.ID)
		}
	}

	if err := checkBound(def.ID, def.Overrideables.Min, v, false); err != nil {
		return err
	}
	if err := checkBound(def.ID, def.Overrideables.Max, v, true); err != nil {
		return err
	}
	return nil
}

// validateScalarShape checks that raw's Go type is the one DecodeValue
// would have produced for t (scalars decode through encoding/json's `any`
// target, so every integer width collapses to float64; file-id and enum
// values are carried as their underlying integer/string wire shape).
func validateScalarShape(paramID uint32, t ValueType, raw any) error {
	if raw == nil {
		return nil
	}
	switch t {
	case ValueTypeBoolean:
		if _, ok := raw.(bool); !ok {
			return fmt.Errorf("model: parameter %d expects a boolean value, got %T", paramID, raw)
		}
	case ValueTypeInt8, ValueTypeUint8, ValueTypeInt16, ValueTypeUint16,
		ValueTypeInt32, ValueTypeUint32, ValueTypeInt64, ValueTypeUint64,
		ValueTypeFloat, ValueTypeDouble, ValueTypeEnum:
		if _, ok := raw.(float64); !ok {
			return fmt.Errorf("model: parameter %d expects a numeric value, got %T", paramID, raw)
		}
	case ValueTypeString, ValueTypeBytes, ValueTypeFileID:
		if _, ok := raw.(string); !ok {
			return fmt.Errorf("model: parameter %d expects a string value, got %T", paramID, raw)
		}
	case ValueTypeMethod:
		return fmt.Errorf("model: parameter %d is a method and methods do not have a value", paramID)
	case ValueTypeInstantiations, ValueTypeInstanceIdentityRef:
		// Carried out-of-band via Value.Class / provider-specific shape, not
		// subject to the scalar-shape check.
	}
	return nil
}

func containsValue(list []Value, v Value) bool {
	for _, candidate := range list {
		if reflect.DeepEqual(candidate.Raw, v.Raw) {
			return true
		}
	}
	return false
}

func checkBound(paramID uint32, bound *Value, v Value, isMax bool) error {
	if bound == nil || v.Rank != RankScalar {
		return nil
	}
	bv, ok := bound.Raw.(float64)
	if !ok {
		return nil
	}
	vv, ok := v.Raw.(float64)
	if !ok {
		return nil
	}
	if isMax && vv > bv {
		return fmt.Errorf("model: value %v for parameter %d exceeds its maximum %v", vv, paramID, bv)
	}
	if !isMax && vv < bv {
		return fmt.Errorf("model: value %v for parameter %d is below its minimum %v", vv, paramID, bv)
	}
	return nil
}
