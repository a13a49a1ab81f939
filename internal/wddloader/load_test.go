package wddloader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/model"
	"github.com/wago/wdx-core/internal/wdmloader"
)

const testWDM = `{
	"name": "TestModel",
	"version": "1.0.0",
	"classes": [
		{
			"id": "TestClass",
			"baseId": 13,
			"basePath": "Test/Class/Base",
			"parameters": [
				{"id": 123, "path": "TestParam1", "type": "uint32", "writeable": true},
				{"id": 124, "path": "TestParam2", "type": "uint32", "writeable": true}
			]
		}
	],
	"features": [
		{"name": "TestFeature", "classes": ["TestClass"]}
	]
}`

func loadTestModel(t *testing.T) *model.Model {
	t.Helper()
	m, err := wdmloader.Load([]byte(testWDM))
	require.NoError(t, err)
	return m
}

func TestLoadInstantiatesTwoInstances(t *testing.T) {
	m := loadTestModel(t)
	dev := device.NewDevice("dev1", "0123-9876", "01.02.03")

	wdd := `{
		"modelReference": "TestModel",
		"wdmmVersion": "1.0.0",
		"features": ["TestFeature"],
		"instantiations": [
			{
				"class": "TestClass",
				"instances": [
					{"id": 1, "parameterValues": [{"id": 123, "value": 31}, {"id": 124, "value": 42}]},
					{"id": 2, "parameterValues": [{"id": 123, "value": 53}, {"id": 124, "value": 64}]}
				]
			}
		]
	}`
	require.NoError(t, Load(m, dev, []byte(wdd)))

	inst1p1 := dev.Instances.GetByPath("Test/Class/Base/1/TestParam1")
	inst2p1 := dev.Instances.GetByPath("Test/Class/Base/2/TestParam1")
	require.NotNil(t, inst1p1)
	require.NotNil(t, inst2p1)
	require.Equal(t, device.ParameterInstanceID{ParameterID: 123, InstanceID: 1, DeviceID: "dev1"}, inst1p1.ID)
	require.Equal(t, device.ParameterInstanceID{ParameterID: 123, InstanceID: 2, DeviceID: "dev1"}, inst2p1.ID)
	require.Equal(t, inst1p1, dev.Instances.GetByID(device.ParameterInstanceID{ParameterID: 123, InstanceID: 1, DeviceID: "dev1"}))

	// class count * param count + the class-instantiations pseudo parameter
	require.Len(t, dev.Instances.GetAll(), 2*2+1)

	insts := dev.ClassInstantiations("Test/Class/Base")
	require.Len(t, insts, 2)
}

func TestLoadAppliesInstanceOverrides(t *testing.T) {
	m := loadTestModel(t)
	dev := device.NewDevice("dev1", "0123-9876", "01.02.03")

	wdd := `{
		"modelReference": "TestModel",
		"wdmmVersion": "1.0.0",
		"features": ["TestFeature"],
		"instantiations": [
			{
				"class": "TestClass",
				"instances": [
					{
						"id": 1,
						"parameterValues": [{"id": 123, "value": 42}],
						"overrides": [{"id": 123, "allowedValues": [42, 53]}]
					},
					{
						"id": 2,
						"parameterValues": [{"id": 123, "value": 31}]
					}
				]
			}
		]
	}`
	require.NoError(t, Load(m, dev, []byte(wdd)))

	overridden := dev.Instances.GetByPath("Test/Class/Base/1/TestParam1")
	plain := dev.Instances.GetByPath("Test/Class/Base/2/TestParam1")
	require.NotNil(t, overridden)
	require.NotNil(t, plain)
	require.Len(t, overridden.Definition.Overrideables.AllowedValues, 2)
	require.Len(t, plain.Definition.Overrideables.AllowedValues, 0)
}

func TestLoadRejectsMismatchedModelReference(t *testing.T) {
	m := loadTestModel(t)
	dev := device.NewDevice("dev1", "0123-9876", "01.02.03")

	wdd := `{"modelReference": "OtherModel", "wdmmVersion": "1.0.0"}`
	require.Error(t, Load(m, dev, []byte(wdd)))
}

func TestLoadRejectsIncompatibleMinorVersion(t *testing.T) {
	m := loadTestModel(t)
	dev := device.NewDevice("dev1", "0123-9876", "01.02.03")

	wdd := `{"modelReference": "TestModel", "wdmmVersion": "1.4.0"}`
	require.Error(t, Load(m, dev, []byte(wdd)))
}
