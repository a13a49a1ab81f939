package wddloader

import (
	"fmt"

	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/model"
)

func convertOverride(m *model.Model, o overrideDoc) (model.ParameterOverride, error) {
	valueType, rank, ok := m.ValueTypeRankOf(o.ParameterID)
	if !ok {
		return model.ParameterOverride{}, fmt.Errorf("wddloader: override of unknown parameter id %d", o.ParameterID)
	}

	out := model.ParameterOverride{ParameterID: o.ParameterID}
	if len(o.Default) > 0 {
		v, err := model.DecodeValue(o.Default, valueType, rank)
		if err != nil {
			return model.ParameterOverride{}, err
		}
		out.Default, out.HasDefault = v, true
	}
	if o.Pattern != nil {
		out.Pattern, out.HasPattern = *o.Pattern, true
	}
	if o.AllowedValues != nil {
		v, err := model.DecodeValueList(o.AllowedValues, valueType, rank)
		if err != nil {
			return model.ParameterOverride{}, err
		}
		out.AllowedValues, out.HasAllowedValues = v, true
	}
	if o.DisallowedValues != nil {
		v, err := model.DecodeValueList(o.DisallowedValues, valueType, rank)
		if err != nil {
			return model.ParameterOverride{}, err
		}
		out.DisallowedValues, out.HasDisallowedValues = v, true
	}
	if len(o.Min) > 0 {
		v, err := model.DecodeValue(o.Min, valueType, rank)
		if err != nil {
			return model.ParameterOverride{}, err
		}
		out.Min, out.HasMin = v, true
	}
	if len(o.Max) > 0 {
		v, err := model.DecodeValue(o.Max, valueType, rank)
		if err != nil {
			return model.ParameterOverride{}, err
		}
		out.Max, out.HasMax = v, true
	}
	if o.Inactive != nil {
		out.Inactive, out.HasInactive = *o.Inactive, true
	}
	if o.Writeable != nil {
		out.Writeable, out.HasWriteable = *o.Writeable, true
	}
	return out, nil
}

func convertValue(m *model.Model, deviceID string, instanceID uint16, v valueDoc) (device.ValueDeclaration, error) {
	valueType, rank, ok := m.ValueTypeRankOf(v.ID)
	if !ok {
		return device.ValueDeclaration{}, fmt.Errorf("wddloader: value for unknown parameter id %d", v.ID)
	}
	val, err := model.DecodeValue(v.Value, valueType, rank)
	if err != nil {
		return device.ValueDeclaration{}, err
	}
	return device.ValueDeclaration{
		ID:                             device.ParameterInstanceID{ParameterID: v.ID, InstanceID: instanceID, DeviceID: deviceID},
		Value:                          val,
		StatusUnavailableIfNotProvided: v.StatusUnavailableIfNotProvided,
	}, nil
}

func convertValues(m *model.Model, deviceID string, instanceID uint16, docs []valueDoc) ([]device.ValueDeclaration, error) {
	out := make([]device.ValueDeclaration, 0, len(docs))
	for _, d := range docs {
		v, err := convertValue(m, deviceID, instanceID, d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func convertOverrides(m *model.Model, docs []overrideDoc) ([]model.ParameterOverride, error) {
	out := make([]model.ParameterOverride, 0, len(docs))
	for _, d := range docs {
		ov, err := convertOverride(m, d)
		if err != nil {
			return nil, err
		}
		out = append(out, ov)
	}
	return out, nil
}
