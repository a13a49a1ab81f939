// Package wddloader applies a WDD (device description) document to a
// registered device: selecting features, instantiating classes, and
// setting values/overrides (spec §3, §6).
package wddloader

import (
	"encoding/json"
	"fmt"

	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/model"
)

// Load applies a WDD document to dev against the already-resolved model m.
func Load(m *model.Model, dev *device.Device, data []byte) error {
	var doc wddDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("wddloader: parsing document: %w", err)
	}

	if doc.ModelReference != "" && doc.ModelReference != m.Name {
		return fmt.Errorf("wddloader: ModelReference %q does not match loaded model %q", doc.ModelReference, m.Name)
	}
	if err := checkVersionCompatible(m.Version, doc.WDMMVersion); err != nil {
		return err
	}

	dev.SetCollectedFeatures(doc.Features)

	if err := applyRootParameters(m, dev, doc); err != nil {
		return err
	}

	for _, instDoc := range doc.Instantiations {
		if err := applyClassInstantiation(m, dev, instDoc); err != nil {
			return err
		}
	}

	return nil
}

// applyRootParameters handles parameters a feature declares directly
// (without a class): they live at the device root, instance_id == 0, and
// the WDD's top-level ParameterValues/Overrides address them by id.
func applyRootParameters(m *model.Model, dev *device.Device, doc wddDocument) error {
	var rootDefs []model.ParameterDefinition
	seen := map[uint32]bool{}
	for _, featureName := range doc.Features {
		f, ok := m.Features[featureName]
		if !ok {
			return fmt.Errorf("wddloader: device declares unknown feature %q", featureName)
		}
		for _, p := range f.ResolvedParameters {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			rootDefs = append(rootDefs, p)
		}
	}
	if len(rootDefs) == 0 {
		return nil
	}

	overrides, err := convertOverrides(m, doc.Overrides)
	if err != nil {
		return err
	}
	rootDefs, err = model.ApplyParameterOverrides(rootDefs, overrides)
	if err != nil {
		return err
	}

	values, err := convertValues(m, dev.ID, 0, doc.ParameterValues)
	if err != nil {
		return err
	}

	instances := make([]device.ParameterInstance, 0, len(rootDefs))
	for _, d := range rootDefs {
		instances = append(instances, device.ParameterInstance{Definition: d})
	}
	return dev.Instances.AddInstances(dev.ID, 0, "", instances, values, false)
}

func applyClassInstantiation(m *model.Model, dev *device.Device, instDoc instantiationDoc) error {
	class, ok := m.ClassByID(instDoc.Class)
	if !ok {
		return fmt.Errorf("wddloader: instantiation references unknown class %q", instDoc.Class)
	}

	var recorded []device.ClassInstantiation
	for _, inst := range instDoc.Instances {
		overrides, err := convertOverrides(m, inst.Overrides)
		if err != nil {
			return err
		}
		defs, collected, err := model.ResolveInstantiation(m.Classes, []string{instDoc.Class}, inst.AdditionalClasses, overrides)
		if err != nil {
			return fmt.Errorf("wddloader: resolving instance %d of class %q: %w", inst.ID, instDoc.Class, err)
		}
		values, err := convertValues(m, dev.ID, inst.ID, inst.ParameterValues)
		if err != nil {
			return err
		}

		instances := make([]device.ParameterInstance, 0, len(defs))
		for _, d := range defs {
			if d.ValueType == model.ValueTypeInstantiations && d.Path == "" {
				// a class's synthetic instantiations parameter exists once,
				// at the class base path (AddClassInstance below)
				continue
			}
			instances = append(instances, device.ParameterInstance{Definition: d})
		}
		if err := dev.Instances.AddInstances(dev.ID, inst.ID, class.BasePath, instances, values, false); err != nil {
			return err
		}

		rec := device.ClassInstantiation{
			InstanceID:        inst.ID,
			Classes:           []string{instDoc.Class},
			AdditionalClasses: inst.AdditionalClasses,
			CollectedClasses:  collected,
		}
		dev.SetClassInstantiation(class.BasePath, rec)
		recorded = append(recorded, rec)
	}

	if class.BaseID == nil {
		return nil
	}
	instParamDef, ok := m.ParameterDefinitionFor(class.ID, *class.BaseID)
	if !ok {
		return fmt.Errorf("wddloader: class %q has no instantiations parameter for its base id", class.ID)
	}
	dev.Instances.AddClassInstance(dev.ID, class.BasePath, device.ParameterInstance{Definition: instParamDef}, instantiationsValue(recorded), false)
	return nil
}

func instantiationsValue(recorded []device.ClassInstantiation) *model.Value {
	classValues := make([]model.ClassInstantiationValue, 0, len(recorded))
	for _, r := range recorded {
		classValues = append(classValues, model.ClassInstantiationValue{
			InstanceID:        r.InstanceID,
			Classes:           r.Classes,
			AdditionalClasses: r.AdditionalClasses,
			CollectedClasses:  r.CollectedClasses,
		})
	}
	return &model.Value{Type: model.ValueTypeInstantiations, Class: classValues}
}
