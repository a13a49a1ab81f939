package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildDiamondModel reproduces the O/A/B/C/D diamond-inheritance fixture:
//
//	O (base, declares Param id=11, default "O", pattern "O")
//	A includes [O], overrides default="A", pattern="A"
//	B includes [A], overrides default="B"            (pattern falls through to A)
//	C includes [A], overrides default="C", pattern="C"
//	D includes [B], overrides default="D"            (pattern falls through to B -> A)
func buildDiamondModel(t *testing.T, extra map[string][]string) map[string]*ClassDefinition {
	t.Helper()
	strVal := func(s string) *Value { return &Value{Type: ValueTypeString, Raw: s} }

	classes := map[string]*ClassDefinition{
		"O": {
			ID: "O",
			OwnParameters: []ParameterDefinition{
				{ID: 11, Path: "Param", ValueType: ValueTypeString, Overrideables: Overrideables{
					Default: strVal("O"),
					Pattern: "O",
				}},
			},
		},
		"A": {
			ID:       "A",
			Includes: []string{"O"},
			OwnOverrides: []ParameterOverride{
				{ParameterID: 11, Default: strVal("A"), HasDefault: true, Pattern: "A", HasPattern: true},
			},
		},
		"B": {
			ID:       "B",
			Includes: []string{"A"},
			OwnOverrides: []ParameterOverride{
				{ParameterID: 11, Default: strVal("B"), HasDefault: true},
			},
		},
		"C": {
			ID:       "C",
			Includes: []string{"A"},
			OwnOverrides: []ParameterOverride{
				{ParameterID: 11, Default: strVal("C"), HasDefault: true, Pattern: "C", HasPattern: true},
			},
		},
		"D": {
			ID:       "D",
			Includes: []string{"B"},
			OwnOverrides: []ParameterOverride{
				{ParameterID: 11, Default: strVal("D"), HasDefault: true},
			},
		},
	}
	for id, includes := range extra {
		classes[id] = &ClassDefinition{ID: id, Includes: includes}
	}
	return classes
}

func resolvedDefaultPattern(t *testing.T, classes map[string]*ClassDefinition, classID string) (string, string) {
	t.Helper()
	require.NoError(t, ResolveClasses(classes))
	class, ok := classes[classID]
	require.True(t, ok, "class %q not found", classID)
	for _, d := range class.ResolvedParameterDefinitions {
		if d.ID == 11 {
			return d.Overrideables.Default.Raw.(string), d.Overrideables.Pattern
		}
	}
	t.Fatalf("class %q has no resolved parameter 11", classID)
	return "", ""
}

// TestDiamondOverridePrecedence reproduces the normative 24-case override
// matrix's class-level cases (i01-i11): every class/Includes combination
// and its expected (default, pattern) pair.
func TestDiamondOverridePrecedence(t *testing.T) {
	cases := []struct {
		name            string
		classID         string
		extraIncludes   map[string][]string
		wantDefault     string
		wantPattern     string
	}{
		{name: "i01_O", classID: "O", wantDefault: "O", wantPattern: "O"},
		{name: "i02_A", classID: "A", wantDefault: "A", wantPattern: "A"},
		{name: "i03_B", classID: "B", wantDefault: "B", wantPattern: "A"},
		{name: "i04_C", classID: "C", wantDefault: "C", wantPattern: "C"},
		{name: "i05_D", classID: "D", wantDefault: "D", wantPattern: "A"},
		{name: "i06_X_A", classID: "X_A", extraIncludes: map[string][]string{"X_A": {"A"}}, wantDefault: "A", wantPattern: "A"},
		{name: "i07_X_B", classID: "X_B", extraIncludes: map[string][]string{"X_B": {"B"}}, wantDefault: "B", wantPattern: "A"},
		{name: "i08_X_CD", classID: "X_CD", extraIncludes: map[string][]string{"X_CD": {"C", "D"}}, wantDefault: "C", wantPattern: "C"},
		{name: "i09_X_DC", classID: "X_DC", extraIncludes: map[string][]string{"X_DC": {"D", "C"}}, wantDefault: "D", wantPattern: "C"},
		{name: "i10_X_BD", classID: "X_BD", extraIncludes: map[string][]string{"X_BD": {"B", "D"}}, wantDefault: "D", wantPattern: "A"},
		{name: "i11_X_DB", classID: "X_DB", extraIncludes: map[string][]string{"X_DB": {"D", "B"}}, wantDefault: "D", wantPattern: "A"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classes := buildDiamondModel(t, tc.extraIncludes)
			gotDefault, gotPattern := resolvedDefaultPattern(t, classes, tc.classID)
			require.Equal(t, tc.wantDefault, gotDefault, "default value")
			require.Equal(t, tc.wantPattern, gotPattern, "pattern")
		})
	}
}

func TestResolveClassesDetectsIncludesCycle(t *testing.T) {
	classes := map[string]*ClassDefinition{
		"A": {ID: "A", Includes: []string{"B"}},
		"B": {ID: "B", Includes: []string{"A"}},
	}
	err := ResolveClasses(classes)
	require.Error(t, err)
}

func TestResolveClassesRejectsOverrideOfUnknownParameter(t *testing.T) {
	classes := map[string]*ClassDefinition{
		"O": {ID: "O"},
		"A": {
			ID:       "A",
			Includes: []string{"O"},
			OwnOverrides: []ParameterOverride{
				{ParameterID: 99, Default: &Value{Type: ValueTypeString, Raw: "x"}, HasDefault: true},
			},
		},
	}
	err := ResolveClasses(classes)
	require.Error(t, err)
}

func TestResolvedIncludesIsTransitiveClosure(t *testing.T) {
	classes := buildDiamondModel(t, map[string][]string{"X_DC": {"D", "C"}})
	require.NoError(t, ResolveClasses(classes))
	require.ElementsMatch(t, []string{"D", "B", "A", "O", "C"}, classes["X_DC"].ResolvedIncludes)
}
