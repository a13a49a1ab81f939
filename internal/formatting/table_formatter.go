package formatting

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	wdxstrings "github.com/wago/wdx-core/pkg/strings"
)

// TableFormatter provides rich table output formatting.
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{options: options}
}

func (f *TableFormatter) FormatDevicesList(devices []DeviceSummary) string {
	if len(devices) == 0 {
		return f.formatEmptyMessage("📋", "No devices found")
	}

	t := f.createTable()
	t.AppendHeader([]interface{}{
		text.FgHiCyan.Sprint("DEVICE ID"),
		text.FgHiCyan.Sprint("ORDER NUMBER"),
		text.FgHiCyan.Sprint("FIRMWARE"),
		text.FgHiCyan.Sprint("PARAMETERS"),
	})
	for _, d := range devices {
		t.AppendRow([]interface{}{
			text.FgHiCyan.Sprint(d.ID),
			d.OrderNumber,
			d.FirmwareVersion,
			d.ParameterCount,
		})
	}

	var result strings.Builder
	t.SetOutputMirror(&result)
	t.Render()
	result.WriteString(fmt.Sprintf("\n📟 %s %s %s\n",
		text.FgHiBlue.Sprint("Total:"),
		text.FgHiWhite.Sprint(len(devices)),
		text.FgHiBlue.Sprint("devices")))
	return result.String()
}

func (f *TableFormatter) FormatParametersList(parameters []ParameterSummary) string {
	if len(parameters) == 0 {
		return f.formatEmptyMessage("📋", "No parameters found")
	}

	t := f.createTable()
	t.AppendHeader([]interface{}{
		text.FgHiCyan.Sprint("PATH"),
		text.FgHiCyan.Sprint("TYPE"),
		text.FgHiCyan.Sprint("WRITEABLE"),
		text.FgHiCyan.Sprint("PROVIDER BOUND"),
	})
	for _, p := range parameters {
		t.AppendRow([]interface{}{
			text.FgHiCyan.Sprint(wdxstrings.TruncateDescription(p.Path, 60)),
			p.Type,
			f.formatBool(p.Writeable),
			f.formatBool(p.ProviderBound),
		})
	}

	var result strings.Builder
	t.SetOutputMirror(&result)
	t.Render()
	result.WriteString(fmt.Sprintf("\n🔧 %s %s %s\n",
		text.FgHiBlue.Sprint("Total:"),
		text.FgHiWhite.Sprint(len(parameters)),
		text.FgHiBlue.Sprint("parameters")))
	return result.String()
}

// FormatData formats generic data using table logic for maps/slices,
// falling back to plain text otherwise.
func (f *TableFormatter) FormatData(data interface{}) error {
	switch d := data.(type) {
	case map[string]interface{}:
		return f.formatObjectData(d)
	case []interface{}:
		return f.formatArrayData(d)
	case string:
		fmt.Println(d)
	default:
		fmt.Printf("%v\n", d)
	}
	return nil
}

func (f *TableFormatter) SetOptions(options Options) { f.options = options }
func (f *TableFormatter) GetOptions() Options         { return f.options }

func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) formatBool(b bool) string {
	if b {
		return text.FgGreen.Sprint("✅ Yes")
	}
	return text.FgRed.Sprint("❌ No")
}

func (f *TableFormatter) formatEmptyMessage(icon, message string) string {
	return fmt.Sprintf("%s %s\n", text.FgYellow.Sprint(icon), text.FgYellow.Sprint(message))
}

func (f *TableFormatter) formatObjectData(data map[string]interface{}) error {
	t := f.createTable()
	t.AppendHeader([]interface{}{
		text.FgHiCyan.Sprint("KEY"),
		text.FgHiCyan.Sprint("VALUE"),
	})
	for key, value := range data {
		t.AppendRow([]interface{}{
			text.FgHiCyan.Sprint(key),
			wdxstrings.TruncateDescription(fmt.Sprintf("%v", value), 100),
		})
	}
	t.Render()
	return nil
}

func (f *TableFormatter) formatArrayData(data []interface{}) error {
	if len(data) == 0 {
		fmt.Printf("%s %s\n", text.FgYellow.Sprint("📋"), text.FgYellow.Sprint("No items found"))
		return nil
	}
	for i, item := range data {
		fmt.Printf("  %d. %v\n", i+1, item)
	}
	fmt.Printf("\n%s %s %s\n",
		text.FgHiBlue.Sprint("Total:"),
		text.FgHiWhite.Sprint(len(data)),
		text.FgHiBlue.Sprint("items"))
	return nil
}
