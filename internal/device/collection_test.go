package device

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wago/wdx-core/internal/model"
)

func stringDef(id uint32, path string, writeable bool) ParameterInstance {
	return ParameterInstance{
		Definition: model.ParameterDefinition{ID: id, Path: path, ValueType: model.ValueTypeString, Writeable: writeable},
	}
}

func TestAddInstancesAndLookupByPath(t *testing.T) {
	c := NewInstanceCollection()
	err := c.AddInstances("0-0", 0, "Tests", []ParameterInstance{stringDef(11, "Param", true)}, nil, false)
	require.NoError(t, err)

	inst := c.GetByPath("Tests/Param")
	require.NotNil(t, inst)
	require.Equal(t, uint32(11), inst.ID.ParameterID)
}

func TestAddInstancesIgnoresDuplicate(t *testing.T) {
	c := NewInstanceCollection()
	require.NoError(t, c.AddInstances("0-0", 0, "Tests", []ParameterInstance{stringDef(11, "Param", true)}, nil, false))
	require.NoError(t, c.AddInstances("0-0", 0, "Tests", []ParameterInstance{stringDef(11, "Param", true)}, nil, false))
	require.Len(t, c.GetAll(), 1)
}

func TestAddInstancesRefusesMissingInstanceKey(t *testing.T) {
	c := NewInstanceCollection()
	def := stringDef(11, "Key", true)
	def.Definition.InstanceKey = true
	err := c.AddInstances("0-0", 3, "Tests", []ParameterInstance{def}, nil, false)
	require.Error(t, err)
	require.Empty(t, c.GetAll())
}

func TestFixedValueFromUnwriteableDefinition(t *testing.T) {
	c := NewInstanceCollection()
	def := stringDef(11, "Param", false)
	def.Definition.Overrideables.Default = &model.Value{Type: model.ValueTypeString, Raw: "O"}
	require.NoError(t, c.AddInstances("0-0", 0, "Tests", []ParameterInstance{def}, nil, false))

	inst := c.GetByPath("Tests/Param")
	require.NotNil(t, inst)
	require.NotNil(t, inst.FixedValue)
	require.Equal(t, "O", inst.FixedValue.Raw)
}

func TestDynamicInstanceMaterializedOnDemand(t *testing.T) {
	c := NewInstanceCollection()
	require.NoError(t, c.AddInstances("0-0", DynamicPlaceholderInstanceID, "Dyn", []ParameterInstance{stringDef(11, "Param", true)}, nil, false))

	inst := c.GetByID(ParameterInstanceID{ParameterID: 11, InstanceID: 3, DeviceID: "0-0"})
	require.NotNil(t, inst)
	require.Equal(t, uint16(3), inst.ID.InstanceID)

	// a second lookup of the same instance id must return the same
	// materialized instance, not a fresh clone.
	again := c.GetByID(ParameterInstanceID{ParameterID: 11, InstanceID: 3, DeviceID: "0-0"})
	require.Same(t, inst, again)
}

func TestGetAllUnderSubpathIncludesInstantiationsParameter(t *testing.T) {
	c := NewInstanceCollection()
	classDef := stringDef(99, "Instantiations", true)
	classDef.Definition.ValueType = model.ValueTypeInstantiations
	c.AddClassInstance("0-0", "Tests", classDef, nil, false)
	require.NoError(t, c.AddInstances("0-0", 1, "Tests", []ParameterInstance{stringDef(11, "Param", true)}, nil, false))

	under := c.GetAllUnderSubpath("Tests")
	require.Len(t, under, 2)
}
