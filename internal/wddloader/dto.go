package wddloader

import "encoding/json"

// As with internal/wdmloader, this module's JSON field names are its own
// wire grammar: the spec fixes the semantics (ModelReference, WDMMVersion,
// Features, Instantiations, ParameterValues, Overrides) but not the
// concrete JSON shape, so only the semantics are grounded in the original.

type wddDocument struct {
	ModelReference string            `json:"modelReference"`
	WDMMVersion    string            `json:"wdmmVersion"`
	Features       []string          `json:"features,omitempty"`
	Instantiations []instantiationDoc `json:"instantiations,omitempty"`
	ParameterValues []valueDoc       `json:"parameterValues,omitempty"`
	Overrides      []overrideDoc     `json:"overrides,omitempty"`
}

type instantiationDoc struct {
	Class     string        `json:"class"`
	Instances []instanceDoc `json:"instances"`
}

type instanceDoc struct {
	ID                uint16        `json:"id"`
	AdditionalClasses []string      `json:"additionalClasses,omitempty"`
	ParameterValues   []valueDoc    `json:"parameterValues,omitempty"`
	Overrides         []overrideDoc `json:"overrides,omitempty"`
}

type valueDoc struct {
	ID                             uint32          `json:"id"`
	Value                          json.RawMessage `json:"value,omitempty"`
	StatusUnavailableIfNotProvided bool            `json:"statusUnavailableIfNotProvided,omitempty"`
}

// overrideDoc mirrors internal/wdmloader's: nilable fields distinguish
// "absent" (fall through) from "explicitly set".
type overrideDoc struct {
	ParameterID uint32 `json:"id"`

	Default          json.RawMessage   `json:"default,omitempty"`
	Pattern          *string           `json:"pattern,omitempty"`
	AllowedValues    []json.RawMessage `json:"allowedValues,omitempty"`
	DisallowedValues []json.RawMessage `json:"disallowedValues,omitempty"`
	Min              json.RawMessage   `json:"min,omitempty"`
	Max              json.RawMessage   `json:"max,omitempty"`
	Inactive         *bool             `json:"inactive,omitempty"`
	Writeable        *bool             `json:"writeable,omitempty"`
}
