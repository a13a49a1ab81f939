package model

import (
	"encoding/json"
	"fmt"
)

// DecodeValue decodes a JSON-encoded scalar or (for RankArray) array payload
// into a Value of the given type/rank. Shared by internal/wdmloader and
// internal/wddloader, since both parse the same open-sum-type wire
// representation of a parameter value (spec §3's "value" tagged variant).
// Returns (nil, nil) for an empty/absent payload.
func DecodeValue(raw json.RawMessage, t ValueType, rank ValueRank) (*Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if rank == RankArray {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("model: decoding array value: %w", err)
		}
		vals := make([]any, 0, len(items))
		for _, item := range items {
			v, err := decodeScalarPayload(item)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		return &Value{Type: t, Rank: rank, Raw: vals}, nil
	}
	v, err := decodeScalarPayload(raw)
	if err != nil {
		return nil, err
	}
	return &Value{Type: t, Rank: rank, Raw: v}, nil
}

func decodeScalarPayload(raw json.RawMessage) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("model: decoding scalar value: %w", err)
	}
	return v, nil
}

// DecodeValueList decodes a list of independently-typed JSON value payloads
// (e.g. an allowed/disallowed-values list) into Values of the given
// type/rank.
func DecodeValueList(raws []json.RawMessage, t ValueType, rank ValueRank) ([]Value, error) {
	if raws == nil {
		return nil, nil
	}
	out := make([]Value, 0, len(raws))
	for _, raw := range raws {
		v, err := DecodeValue(raw, t, rank)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}
