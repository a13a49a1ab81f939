package device

import (
	"fmt"
	"strconv"
	"strings"
)

// Device collection ids (spec §3: "device_collection_id ∈ {root=0, kbus=1,
// rlb=2}").
const (
	CollectionRoot = 0
	CollectionKbus = 1
	CollectionRlb  = 2
)

var collectionNames = map[string]int{
	"root": CollectionRoot,
	"kbus": CollectionKbus,
	"rlb":  CollectionRlb,
}

// ParseDevicePath parses the textual device path form "<collection>-<slot>"
// (spec §6 glossary): collection is either a reserved name (root, kbus,
// rlb, case-insensitive) or its numeric id; an empty path means the head
// station (collection 0, slot 0).
func ParseDevicePath(path string) (collectionID int, slot uint16, err error) {
	if path == "" {
		return CollectionRoot, 0, nil
	}
	idx := strings.LastIndex(path, "-")
	if idx < 0 {
		return 0, 0, fmt.Errorf("device: malformed device path %q", path)
	}
	collPart, slotPart := path[:idx], path[idx+1:]

	if id, ok := collectionNames[strings.ToLower(collPart)]; ok {
		collectionID = id
	} else {
		n, convErr := strconv.Atoi(collPart)
		if convErr != nil {
			return 0, 0, fmt.Errorf("device: unknown device collection %q", collPart)
		}
		collectionID = n
	}

	n, convErr := strconv.ParseUint(slotPart, 10, 16)
	if convErr != nil {
		return 0, 0, fmt.Errorf("device: invalid device slot %q", slotPart)
	}
	return collectionID, uint16(n), nil
}

// CanonicalDevicePath renders collectionID/slot in the canonical numeric
// "<collection>-<slot>" form used as a Device.ID.
func CanonicalDevicePath(collectionID int, slot uint16) string {
	return fmt.Sprintf("%d-%d", collectionID, slot)
}

// NormalizeDevicePath parses then re-renders path, so alias collection
// names ("kbus-3") and the canonical numeric form ("1-3") both resolve to
// the same Device.ID.
func NormalizeDevicePath(path string) (string, error) {
	collectionID, slot, err := ParseDevicePath(path)
	if err != nil {
		return "", err
	}
	return CanonicalDevicePath(collectionID, slot), nil
}
