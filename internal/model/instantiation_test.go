package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolveInstantiationAdditionalClasses reproduces the i12-i21 style
// cases: an instantiation whose primary class is B and whose
// AdditionalClasses names D (D's own ancestor chain already includes B),
// behaving as if D were appended to B's own Includes.
func TestResolveInstantiationAdditionalClasses(t *testing.T) {
	classes := buildDiamondModel(t, nil)
	require.NoError(t, ResolveClasses(classes))

	defs, collected, err := ResolveInstantiation(classes, []string{"B"}, []string{"D"}, nil)
	require.NoError(t, err)

	var got *ParameterDefinition
	for i := range defs {
		if defs[i].ID == 11 {
			got = &defs[i]
		}
	}
	require.NotNil(t, got)
	require.Equal(t, "D", got.Overrideables.Default.Raw.(string))
	require.ElementsMatch(t, []string{"B", "D", "A", "O"}, collected)
}

// TestResolveInstantiationInstanceOverrideWinsOverEverything reproduces
// i22-i24: a per-instance override beats both the primary and additional
// classes' resolved fields, regardless of ancestry.
func TestResolveInstantiationInstanceOverrideWinsOverEverything(t *testing.T) {
	classes := buildDiamondModel(t, nil)
	require.NoError(t, ResolveClasses(classes))

	instanceVal := &Value{Type: ValueTypeString, Raw: "INSTANCE"}
	defs, _, err := ResolveInstantiation(classes, []string{"B"}, []string{"D"}, []ParameterOverride{
		{ParameterID: 11, Default: instanceVal, HasDefault: true},
	})
	require.NoError(t, err)

	var got *ParameterDefinition
	for i := range defs {
		if defs[i].ID == 11 {
			got = &defs[i]
		}
	}
	require.NotNil(t, got)
	require.Equal(t, "INSTANCE", got.Overrideables.Default.Raw.(string))
}

func TestResolveInstantiationRejectsOverrideOfUnknownParameter(t *testing.T) {
	classes := buildDiamondModel(t, nil)
	require.NoError(t, ResolveClasses(classes))

	_, _, err := ResolveInstantiation(classes, []string{"A"}, nil, []ParameterOverride{
		{ParameterID: 999, HasDefault: true, Default: &Value{Type: ValueTypeString, Raw: "x"}},
	})
	require.Error(t, err)
}

func TestResolveClassInstantiationsRederivesCollectedClasses(t *testing.T) {
	classes := buildDiamondModel(t, nil)
	require.NoError(t, ResolveClasses(classes))

	reported := []ClassInstantiationValue{
		{InstanceID: 1, Classes: []string{"B"}, AdditionalClasses: []string{"D"}, CollectedClasses: []string{"lies"}},
	}
	resolved, err := ResolveClassInstantiations(classes, reported)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	require.ElementsMatch(t, []string{"B", "D", "A", "O"}, resolved[0].CollectedClasses)
}

func TestResolveClassInstantiationsRejectsUnknownClass(t *testing.T) {
	classes := buildDiamondModel(t, nil)
	require.NoError(t, ResolveClasses(classes))

	_, err := ResolveClassInstantiations(classes, []ClassInstantiationValue{
		{InstanceID: 1, Classes: []string{"DoesNotExist"}},
	})
	require.Error(t, err)
}
