// Package wdmloader parses a WDM (device model) document (spec §3, §6) into
// an internal/model.Model, including the
// multi-inheritance override resolution of internal/model.ResolveClasses.
package wdmloader

import (
	"encoding/json"
	"fmt"

	"github.com/wago/wdx-core/internal/model"
)

type paramTypeInfo struct {
	valueType model.ValueType
	rank      model.ValueRank
}

// Load parses a WDM document and returns a fully resolved model.Model.
func Load(data []byte) (*model.Model, error) {
	var doc wdmDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("wdmloader: parsing document: %w", err)
	}

	paramTypes := map[uint32]paramTypeInfo{}

	ownParamsByClass := map[string][]model.ParameterDefinition{}
	for _, cd := range doc.Classes {
		for _, pd := range cd.Parameters {
			def, err := convertParameter(pd)
			if err != nil {
				return nil, fmt.Errorf("wdmloader: class %q parameter %q: %w", cd.ID, pd.Path, err)
			}
			ownParamsByClass[cd.ID] = append(ownParamsByClass[cd.ID], def)
			if existing, ok := paramTypes[def.ID]; ok && (existing.valueType != def.ValueType || existing.rank != def.Rank) {
				return nil, fmt.Errorf("wdmloader: parameter id %d redeclared with a different type", def.ID)
			}
			paramTypes[def.ID] = paramTypeInfo{valueType: def.ValueType, rank: def.Rank}
		}

		// Every non-dynamic class carries a synthetic instantiations
		// parameter addressed by the class's own base id, at the class's
		// base path with no further path segment (spec §3: "Every
		// non-dynamic class carries a synthetic instantiations parameter
		// whose value type is instantiations and whose path is the class
		// base_path").
		if cd.BaseID != nil && !cd.IsDynamic {
			instParam := model.ParameterDefinition{
				ID:        *cd.BaseID,
				Path:      "",
				ValueType: model.ValueTypeInstantiations,
				Rank:      model.RankScalar,
				Writeable: true,
			}
			ownParamsByClass[cd.ID] = append(ownParamsByClass[cd.ID], instParam)
			if existing, ok := paramTypes[instParam.ID]; ok && (existing.valueType != instParam.ValueType || existing.rank != instParam.Rank) {
				return nil, fmt.Errorf("wdmloader: parameter id %d redeclared with a different type", instParam.ID)
			}
			paramTypes[instParam.ID] = paramTypeInfo{valueType: instParam.ValueType, rank: instParam.Rank}
		}
	}

	ownFeatureParams := map[string][]model.ParameterDefinition{}
	for _, fd := range doc.Features {
		for _, pd := range fd.Parameters {
			def, err := convertParameter(pd)
			if err != nil {
				return nil, fmt.Errorf("wdmloader: feature %q parameter %q: %w", fd.Name, pd.Path, err)
			}
			ownFeatureParams[fd.Name] = append(ownFeatureParams[fd.Name], def)
			paramTypes[def.ID] = paramTypeInfo{valueType: def.ValueType, rank: def.Rank}
		}
	}

	m := model.NewModel(doc.Name, doc.Version)

	for _, cd := range doc.Classes {
		overrides := make([]model.ParameterOverride, 0, len(cd.Overrides))
		for _, od := range cd.Overrides {
			info, ok := paramTypes[od.ParameterID]
			if !ok {
				return nil, fmt.Errorf("wdmloader: class %q overrides unknown parameter id %d", cd.ID, od.ParameterID)
			}
			ov, err := convertOverride(od, info.valueType, info.rank)
			if err != nil {
				return nil, fmt.Errorf("wdmloader: class %q override of parameter %d: %w", cd.ID, od.ParameterID, err)
			}
			overrides = append(overrides, ov)
		}

		m.Classes[cd.ID] = &model.ClassDefinition{
			ID:            cd.ID,
			BaseID:        cd.BaseID,
			BasePath:      cd.BasePath,
			Includes:      cd.Includes,
			IsDynamic:     cd.IsDynamic,
			OwnParameters: ownParamsByClass[cd.ID],
			OwnOverrides:  overrides,
		}
	}

	for _, fd := range doc.Features {
		m.Features[fd.Name] = &model.FeatureDefinition{
			Name:       fd.Name,
			Classes:    fd.Classes,
			Parameters: ownFeatureParams[fd.Name],
			Features:   fd.Features,
		}
	}

	for _, ed := range doc.Enums {
		members := make([]model.EnumMember, 0, len(ed.Members))
		for _, md := range ed.Members {
			members = append(members, model.EnumMember{Name: md.Name, Value: md.Value})
		}
		m.Enums[ed.Name] = &model.EnumDefinition{Name: ed.Name, Members: members}
	}

	if err := m.Finalize(); err != nil {
		return nil, fmt.Errorf("wdmloader: %w", err)
	}
	return m, nil
}
