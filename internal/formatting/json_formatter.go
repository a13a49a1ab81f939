package formatting

import (
	"encoding/json"
	"fmt"
)

// JSONFormatter provides structured JSON output formatting.
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{options: options}
}

func (f *JSONFormatter) FormatDevicesList(devices []DeviceSummary) string {
	return f.marshal(devices)
}

func (f *JSONFormatter) FormatParametersList(parameters []ParameterSummary) string {
	return f.marshal(parameters)
}

func (f *JSONFormatter) FormatData(data interface{}) error {
	fmt.Println(f.marshal(data))
	return nil
}

func (f *JSONFormatter) SetOptions(options Options) { f.options = options }
func (f *JSONFormatter) GetOptions() Options         { return f.options }

// marshal converts data to JSON string, compact in quiet mode and indented
// otherwise.
func (f *JSONFormatter) marshal(data interface{}) string {
	if f.options.Quiet {
		jsonBytes, err := json.Marshal(data)
		if err != nil {
			return fmt.Sprintf(`{"error": "Failed to format JSON: %v"}`, err)
		}
		return string(jsonBytes)
	}
	return PrettyJSON(data)
}
