package model

import "testing"

func uint32Def(id uint32) ParameterDefinition {
	return ParameterDefinition{ID: id, ValueType: ValueTypeUint32, Rank: RankScalar, Writeable: true}
}

func TestValidateRejectsInactive(t *testing.T) {
	def := uint32Def(1)
	def.Overrideables.Inactive = true
	v := Value{Type: ValueTypeUint32, Rank: RankScalar, Raw: float64(5)}
	if err := v.Validate(def); err == nil {
		t.Fatal("expected inactive parameter to reject any value")
	}
}

func TestValidateRejectsRankMismatch(t *testing.T) {
	def := uint32Def(1)
	v := Value{Type: ValueTypeUint32, Rank: RankArray, Raw: []any{float64(1)}}
	if err := v.Validate(def); err == nil {
		t.Fatal("expected scalar definition to reject an array value")
	}
}

func TestValidateEnforcesMinMax(t *testing.T) {
	def := uint32Def(1)
	minV := Value{Type: ValueTypeUint32, Rank: RankScalar, Raw: float64(10)}
	maxV := Value{Type: ValueTypeUint32, Rank: RankScalar, Raw: float64(20)}
	def.Overrideables.Min = &minV
	def.Overrideables.Max = &maxV

	if err := (Value{Type: ValueTypeUint32, Rank: RankScalar, Raw: float64(5)}).Validate(def); err == nil {
		t.Fatal("expected value below minimum to be rejected")
	}
	if err := (Value{Type: ValueTypeUint32, Rank: RankScalar, Raw: float64(25)}).Validate(def); err == nil {
		t.Fatal("expected value above maximum to be rejected")
	}
	if err := (Value{Type: ValueTypeUint32, Rank: RankScalar, Raw: float64(15)}).Validate(def); err != nil {
		t.Fatalf("expected in-range value to validate, got %v", err)
	}
}

func TestValidateEnforcesAllowedValues(t *testing.T) {
	def := uint32Def(1)
	def.Overrideables.AllowedValues = []Value{
		{Type: ValueTypeUint32, Rank: RankScalar, Raw: float64(1)},
		{Type: ValueTypeUint32, Rank: RankScalar, Raw: float64(2)},
	}
	if err := (Value{Type: ValueTypeUint32, Rank: RankScalar, Raw: float64(3)}).Validate(def); err == nil {
		t.Fatal("expected value outside allowed list to be rejected")
	}
	if err := (Value{Type: ValueTypeUint32, Rank: RankScalar, Raw: float64(2)}).Validate(def); err != nil {
		t.Fatalf("expected allowed value to validate, got %v", err)
	}
}

func TestValidateEnforcesPattern(t *testing.T) {
	def := ParameterDefinition{ID: 1, ValueType: ValueTypeString, Rank: RankScalar}
	def.Overrideables.Pattern = "^[a-z]+$"
	if err := (Value{Type: ValueTypeString, Rank: RankScalar, Raw: "ABC"}).Validate(def); err == nil {
		t.Fatal("expected non-matching string to be rejected")
	}
	if err := (Value{Type: ValueTypeString, Rank: RankScalar, Raw: "abc"}).Validate(def); err != nil {
		t.Fatalf("expected matching string to validate, got %v", err)
	}
}

func TestValidateRejectsMethodValue(t *testing.T) {
	def := ParameterDefinition{ID: 1, ValueType: ValueTypeMethod, Rank: RankScalar}
	if err := (Value{Type: ValueTypeMethod, Rank: RankScalar}).Validate(def); err == nil {
		t.Fatal("expected a method definition to reject any value")
	}
}
