package formatting

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter provides YAML output formatting.
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{options: options}
}

func (f *YAMLFormatter) FormatDevicesList(devices []DeviceSummary) string {
	return f.marshal(devices)
}

func (f *YAMLFormatter) FormatParametersList(parameters []ParameterSummary) string {
	return f.marshal(parameters)
}

func (f *YAMLFormatter) FormatData(data interface{}) error {
	fmt.Print(f.marshal(data))
	return nil
}

func (f *YAMLFormatter) SetOptions(options Options) { f.options = options }
func (f *YAMLFormatter) GetOptions() Options         { return f.options }

func (f *YAMLFormatter) marshal(data interface{}) string {
	yamlBytes, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Sprintf("error: \"Failed to format YAML: %v\"\n", err)
	}
	return string(yamlBytes)
}
