package wdmloader

import (
	"fmt"

	"github.com/wago/wdx-core/internal/model"
)

func parseValueType(s string) (model.ValueType, error) {
	switch s {
	case "boolean":
		return model.ValueTypeBoolean, nil
	case "int8":
		return model.ValueTypeInt8, nil
	case "uint8":
		return model.ValueTypeUint8, nil
	case "int16":
		return model.ValueTypeInt16, nil
	case "uint16":
		return model.ValueTypeUint16, nil
	case "int32":
		return model.ValueTypeInt32, nil
	case "uint32":
		return model.ValueTypeUint32, nil
	case "int64":
		return model.ValueTypeInt64, nil
	case "uint64":
		return model.ValueTypeUint64, nil
	case "float":
		return model.ValueTypeFloat, nil
	case "double":
		return model.ValueTypeDouble, nil
	case "string":
		return model.ValueTypeString, nil
	case "bytes":
		return model.ValueTypeBytes, nil
	case "enum":
		return model.ValueTypeEnum, nil
	case "file_id":
		return model.ValueTypeFileID, nil
	case "method":
		return model.ValueTypeMethod, nil
	case "instantiations":
		return model.ValueTypeInstantiations, nil
	case "instance_identity_reference":
		return model.ValueTypeInstanceIdentityRef, nil
	default:
		return 0, fmt.Errorf("wdmloader: unknown parameter type %q", s)
	}
}

func parseRank(s string) model.ValueRank {
	if s == "array" {
		return model.RankArray
	}
	return model.RankScalar
}

func convertArgument(a argumentDoc) (model.ArgumentDefinition, error) {
	t, err := parseValueType(a.Type)
	if err != nil {
		return model.ArgumentDefinition{}, err
	}
	rank := parseRank(a.Rank)
	def, err := model.DecodeValue(a.Default, t, rank)
	if err != nil {
		return model.ArgumentDefinition{}, err
	}
	return model.ArgumentDefinition{Name: a.Name, Type: t, Rank: rank, Default: def}, nil
}

func convertParameter(p parameterDoc) (model.ParameterDefinition, error) {
	t, err := parseValueType(p.Type)
	if err != nil {
		return model.ParameterDefinition{}, err
	}
	rank := parseRank(p.Rank)

	def, err := model.DecodeValue(p.Default, t, rank)
	if err != nil {
		return model.ParameterDefinition{}, err
	}
	allowed, err := model.DecodeValueList(p.AllowedValues, t, rank)
	if err != nil {
		return model.ParameterDefinition{}, err
	}
	disallowed, err := model.DecodeValueList(p.DisallowedValues, t, rank)
	if err != nil {
		return model.ParameterDefinition{}, err
	}
	min, err := model.DecodeValue(p.Min, t, rank)
	if err != nil {
		return model.ParameterDefinition{}, err
	}
	max, err := model.DecodeValue(p.Max, t, rank)
	if err != nil {
		return model.ParameterDefinition{}, err
	}

	pattern := ""
	if p.Pattern != nil {
		pattern = *p.Pattern
	}

	pd := model.ParameterDefinition{
		ID:          p.ID,
		Path:        p.Path,
		ValueType:   t,
		Rank:        rank,
		Writeable:   p.Writeable,
		Beta:        p.Beta,
		Deprecated:  p.Deprecated,
		UserSetting: p.UserSetting,
		OnlyOnline:  p.OnlyOnline,
		InstanceKey: p.InstanceKey,
		Overrideables: model.Overrideables{
			Default:          def,
			Pattern:          pattern,
			AllowedValues:    allowed,
			DisallowedValues: disallowed,
			Min:              min,
			Max:              max,
			Inactive:         p.Inactive,
		},
	}

	if t == model.ValueTypeMethod {
		in := make([]model.ArgumentDefinition, 0, len(p.InArgs))
		for _, a := range p.InArgs {
			ad, err := convertArgument(a)
			if err != nil {
				return model.ParameterDefinition{}, err
			}
			in = append(in, ad)
		}
		out := make([]model.ArgumentDefinition, 0, len(p.OutArgs))
		for _, a := range p.OutArgs {
			ad, err := convertArgument(a)
			if err != nil {
				return model.ParameterDefinition{}, err
			}
			out = append(out, ad)
		}
		pd.Method = &model.MethodDefinition{InArgs: in, OutArgs: out}
	}

	return pd, nil
}

func convertOverride(o overrideDoc, valueType model.ValueType, rank model.ValueRank) (model.ParameterOverride, error) {
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
