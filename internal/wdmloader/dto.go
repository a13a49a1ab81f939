package wdmloader

import "encoding/json"

// The JSON shapes in this file are this module's own wire format for WDM
// documents: the spec treats the device-description parser's wire grammar
// as out of scope ("its semantics are specified here, not its parser"), so
// only the semantics the loader must implement are grounded in the
// original; the concrete JSON field names are this module's choice.

type wdmDocument struct {
	Name     string            `json:"name"`
	Version  string            `json:"version"`
	Classes  []classDoc        `json:"classes"`
	Features []featureDoc      `json:"features"`
	Enums    []enumDoc         `json:"enums"`
}

type classDoc struct {
	ID        string          `json:"id"`
	BaseID    *uint32         `json:"baseId,omitempty"`
	BasePath  string          `json:"basePath"`
	Includes  []string        `json:"includes,omitempty"`
	IsDynamic bool            `json:"isDynamic,omitempty"`
	Parameters []parameterDoc `json:"parameters,omitempty"`
	Overrides  []overrideDoc  `json:"overrides,omitempty"`
}

type parameterDoc struct {
	ID          uint32            `json:"id"`
	Path        string            `json:"path"`
	Type        string            `json:"type"`
	Rank        string            `json:"rank,omitempty"` // "scalar" (default) | "array"
	Writeable   bool              `json:"writeable,omitempty"`
	Beta        bool              `json:"beta,omitempty"`
	Deprecated  bool              `json:"deprecated,omitempty"`
	UserSetting bool              `json:"userSetting,omitempty"`
	OnlyOnline  bool              `json:"onlyOnline,omitempty"`
	InstanceKey bool              `json:"instanceKey,omitempty"`

	Default          json.RawMessage   `json:"default,omitempty"`
	Pattern          *string           `json:"pattern,omitempty"`
	AllowedValues    []json.RawMessage `json:"allowedValues,omitempty"`
	DisallowedValues []json.RawMessage `json:"disallowedValues,omitempty"`
	Min              json.RawMessage   `json:"min,omitempty"`
	Max              json.RawMessage   `json:"max,omitempty"`
	Inactive         bool              `json:"inactive,omitempty"`

	InArgs  []argumentDoc `json:"inArgs,omitempty"`
	OutArgs []argumentDoc `json:"outArgs,omitempty"`
}

type argumentDoc struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Rank    string          `json:"rank,omitempty"`
	Default json.RawMessage `json:"default,omitempty"`
}

// overrideDoc's fields are pointers/nilable slices on purpose: "absent from
// JSON" (fall through to an ancestor's value) must be distinguishable from
// "explicitly set", which a bare value type cannot express.
type overrideDoc struct {
	ParameterID uint32 `json:"parameterId"`

	Default          json.RawMessage   `json:"default,omitempty"`
	Pattern          *string           `json:"pattern,omitempty"`
	AllowedValues    []json.RawMessage `json:"allowedValues,omitempty"`
	DisallowedValues []json.RawMessage `json:"disallowedValues,omitempty"`
	Min              json.RawMessage   `json:"min,omitempty"`
	Max              json.RawMessage   `json:"max,omitempty"`
	Inactive         *bool             `json:"inactive,omitempty"`
	Writeable        *bool             `json:"writeable,omitempty"`
}

type featureDoc struct {
	Name       string         `json:"name"`
	Classes    []string       `json:"classes,omitempty"`
	Features   []string       `json:"features,omitempty"`
	Parameters []parameterDoc `json:"parameters,omitempty"`
}

type enumDoc struct {
	Name    string         `json:"name"`
	Members []enumMemberDoc `json:"members"`
}

type enumMemberDoc struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}
