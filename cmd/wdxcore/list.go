package wdxcore

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wago/wdx-core/internal/config"
	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/formatting"
)

var (
	listConfigDir string
	listOutput    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List devices and parameters from the configured model",
}

var listDevicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List every registered device",
	Args:  cobra.NoArgs,
	RunE:  runListDevices,
}

var listParametersCmd = &cobra.Command{
	Use:   "parameters <device-id>",
	Short: "List every parameter instance of a device",
	Args:  cobra.ExactArgs(1),
	RunE:  runListParameters,
}

func init() {
	listCmd.PersistentFlags().StringVar(&listConfigDir, "config-dir", ".", "Directory containing config.yaml")
	listCmd.PersistentFlags().StringVar(&listOutput, "output", "table", "Output format: table, console, json, yaml")
	listCmd.AddCommand(listDevicesCmd)
	listCmd.AddCommand(listParametersCmd)
	rootCmd.AddCommand(listCmd)
}

func loadStoreForList() (*device.Store, error) {
	cfg, err := config.Load(listConfigDir)
	if err != nil {
		return nil, err
	}
	_, store, err := config.LoadDevices(cfg.ModelPath, cfg.DeviceDir)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func listFormatter() formatting.Formatter {
	opts := formatting.Options{Format: formatting.OutputFormat(listOutput), Color: true}
	return formatting.NewFactory().CreateFormatter(opts)
}

func runListDevices(cmd *cobra.Command, args []string) error {
	store, err := loadStoreForList()
	if err != nil {
		return err
	}

	devices := store.All()
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })

	summaries := make([]formatting.DeviceSummary, 0, len(devices))
	for _, d := range devices {
		summaries = append(summaries, formatting.DeviceSummary{
			ID:              d.ID,
			OrderNumber:     d.OrderNumber,
			FirmwareVersion: d.FirmwareVersion,
			ParameterCount:  len(d.Instances.GetAll()),
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), listFormatter().FormatDevicesList(summaries))
	return nil
}

func runListParameters(cmd *cobra.Command, args []string) error {
	store, err := loadStoreForList()
	if err != nil {
		return err
	}

	dev, ok := store.Get(args[0])
	if !ok {
		return fmt.Errorf("no such device: %q", args[0])
	}

	instances := dev.Instances.GetAll()

	summaries := make([]formatting.ParameterSummary, 0, len(instances))
	for _, inst := range instances {
		segs := device.RequestPathSegments(inst)
		path := ""
		for i, s := range segs {
			if i > 0 {
				path += "/"
			}
			path += s
		}
		summaries = append(summaries, formatting.ParameterSummary{
			Path:          path,
			Type:          inst.Definition.ValueType.String(),
			Writeable:     inst.Definition.Writeable,
			ProviderBound: inst.Provider != nil,
		})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Path < summaries[j].Path })

	fmt.Fprintln(cmd.OutOrStdout(), listFormatter().FormatParametersList(summaries))
	return nil
}
