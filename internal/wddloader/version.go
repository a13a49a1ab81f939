package wddloader

import (
	"fmt"
	"strconv"
	"strings"
)

// checkVersionCompatible implements spec §6's WDD/WDM version rule: a WDD
// is accepted if its WDMMVersion shares the model's major version and its
// minor version is the same or lower; major and minor are non-negative
// 16-bit values, and a higher major, higher minor, non-numeric, out-of-
// range, or empty component is rejected outright (patch is unconstrained).
func checkVersionCompatible(modelVersion, wddVersion string) error {
	modelMajor, modelMinor, _, err := parseVersion(modelVersion)
	if err != nil {
		return fmt.Errorf("wddloader: model version %q: %w", modelVersion, err)
	}
	wddMajor, wddMinor, _, err := parseVersion(wddVersion)
	if err != nil {
		return fmt.Errorf("wddloader: WDMMVersion %q: %w", wddVersion, err)
	}
	if wddMajor != modelMajor {
		return fmt.Errorf("wddloader: WDMMVersion %q major version does not match model version %q", wddVersion, modelVersion)
	}
	if wddMinor > modelMinor {
		return fmt.Errorf("wddloader: WDMMVersion %q requires a newer minor version than model version %q provides", wddVersion, modelVersion)
	}
	return nil
}

func parseVersion(v string) (major, minor uint16, patch uint32, err error) {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("expected major.minor.patch")
	}
	maj, err := parseVersionComponent(parts[0], 0xFFFF)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("major: %w", err)
	}
	min, err := parseVersionComponent(parts[1], 0xFFFF)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("minor: %w", err)
	}
	pat, err := parseVersionComponent(parts[2], 0xFFFFFFFF)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("patch: %w", err)
	}
	return uint16(maj), uint16(min), uint32(pat), nil
}

func parseVersionComponent(s string, max uint64) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty component")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric component %q", s)
	}
	if n > max {
		return 0, fmt.Errorf("component %q out of range", s)
	}
	return n, nil
}
