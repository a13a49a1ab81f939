package formatting

import (
	"fmt"
	"strings"
)

// ConsoleFormatter provides simple console output formatting.
type ConsoleFormatter struct {
	options Options
}

// NewConsoleFormatter creates a new console formatter.
func NewConsoleFormatter(options Options) Formatter {
	return &ConsoleFormatter{options: options}
}

// FormatDevicesList formats a device listing for console output.
func (f *ConsoleFormatter) FormatDevicesList(devices []DeviceSummary) string {
	if len(devices) == 0 {
		return "No devices registered."
	}
	var output []string
	output = append(output, fmt.Sprintf("Devices (%d):", len(devices)))
	for i, d := range devices {
		output = append(output, fmt.Sprintf("  %d. %-20s order=%-15s firmware=%-15s params=%d",
			i+1, d.ID, d.OrderNumber, d.FirmwareVersion, d.ParameterCount))
	}
	return strings.Join(output, "\n")
}

// FormatParametersList formats a parameter listing for console output.
func (f *ConsoleFormatter) FormatParametersList(parameters []ParameterSummary) string {
	if len(parameters) == 0 {
		return "No parameters."
	}
	var output []string
	output = append(output, fmt.Sprintf("Parameters (%d):", len(parameters)))
	for i, p := range parameters {
		output = append(output, fmt.Sprintf("  %d. %-40s type=%-10s writeable=%-5t bound=%t",
			i+1, p.Path, p.Type, p.Writeable, p.ProviderBound))
	}
	return strings.Join(output, "\n")
}

// FormatData formats generic data (fallback to simple text representation).
func (f *ConsoleFormatter) FormatData(data interface{}) error {
	switch d := data.(type) {
	case string:
		fmt.Println(d)
	default:
		fmt.Println(PrettyJSON(d))
	}
	return nil
}

// SetOptions updates the formatter options.
func (f *ConsoleFormatter) SetOptions(options Options) { f.options = options }

// GetOptions returns the current formatter options.
func (f *ConsoleFormatter) GetOptions() Options { return f.options }
