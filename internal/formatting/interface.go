// Package formatting provides unified output formatting for cmd/wdxcore's
// device/parameter listings, consolidating the console/JSON/YAML/table
// rendering logic behind one Formatter interface so a command only ever
// needs to pick which implementation --output selects.
package formatting

// OutputFormat represents the desired output format.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatTable   OutputFormat = "table"
)

// Options configures the formatter behavior.
type Options struct {
	Format OutputFormat
	Quiet  bool
	Color  bool
}

// DeviceSummary is one row of a device listing.
type DeviceSummary struct {
	ID              string `json:"id" yaml:"id"`
	OrderNumber     string `json:"orderNumber,omitempty" yaml:"orderNumber,omitempty"`
	FirmwareVersion string `json:"firmwareVersion,omitempty" yaml:"firmwareVersion,omitempty"`
	ParameterCount  int    `json:"parameterCount" yaml:"parameterCount"`
}

// ParameterSummary is one row of a parameter listing.
type ParameterSummary struct {
	Path          string `json:"path" yaml:"path"`
	Type          string `json:"type" yaml:"type"`
	Writeable     bool   `json:"writeable" yaml:"writeable"`
	ProviderBound bool   `json:"providerBound" yaml:"providerBound"`
}

// Formatter renders device/parameter listings and arbitrary generic data
// (e.g. a single resolved parameter value) in one output format.
type Formatter interface {
	FormatDevicesList(devices []DeviceSummary) string
	FormatParametersList(parameters []ParameterSummary) string
	FormatData(data interface{}) error

	SetOptions(options Options)
	GetOptions() Options
}

// Factory creates formatters for different output formats.
type Factory interface {
	CreateFormatter(options Options) Formatter
}

// NewFactory creates a new formatter factory.
func NewFactory() Factory {
	return &factory{}
}

type factory struct{}

func (f *factory) CreateFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatTable:
		return NewTableFormatter(options)
	case FormatConsole:
		fallthrough
	default:
		return NewConsoleFormatter(options)
	}
}
