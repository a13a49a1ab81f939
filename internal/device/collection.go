package device

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/wago/wdx-core/internal/model"
	"github.com/wago/wdx-core/internal/providerapi"
	"github.com/wago/wdx-core/pkg/logging"
)

const pathDelimiter = "/"

func splitPath(p string) []string {
	p = strings.Trim(p, pathDelimiter)
	if p == "" {
		return nil
	}
	return strings.Split(p, pathDelimiter)
}

func joinSegments(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// InstanceCollection is one device's parameter instances, indexed both by
// id and by path (spec §3's instance store). Dynamic-class instances are
// materialized on first access and deliberately never pruned (spec §3:
// "the dynamic-instance cache is deliberately not pruned when class
// instance sets shrink").
type InstanceCollection struct {
	mu sync.Mutex

	byID  map[ParameterInstanceID]*ParameterInstance
	paths *pathTreeNode

	dynamicByID map[ParameterInstanceID]*ParameterInstance
	// dynGroup collapses concurrent materialization of the same dynamic
	// instance id into a single clone, rather than racing two callers into
	// inserting duplicate dynamicByID entries.
	dynGroup singleflight.Group

	all []*ParameterInstance
}

// NewInstanceCollection returns an empty instance collection.
func NewInstanceCollection() *InstanceCollection {
	return &InstanceCollection{
		byID:        map[ParameterInstanceID]*ParameterInstance{},
		paths:       newPathTreeNode(""),
		dynamicByID: map[ParameterInstanceID]*ParameterInstance{},
	}
}

// internalPathSegments builds the search-tree path for inst: base path,
// then parameter path, then instance id (omitted when instance_id == 0).
// This order (rather than the request-facing base+instance+param order)
// lets every instance of a class reuse the same ParameterDefinition.Path
// segments in the tree (grounded on parameter_instance_collection.cpp's
// build_internal_path / build_parameter_instance_path split).
func internalPathSegments(inst *ParameterInstance) []string {
	segs := joinSegments(splitPath(inst.BasePath), splitPath(inst.Definition.Path))
	if inst.ID.InstanceID > 0 && inst.ID.InstanceID != DynamicPlaceholderInstanceID {
		segs = append(segs, strconv.Itoa(int(inst.ID.InstanceID)))
	} else if inst.ID.InstanceID == DynamicPlaceholderInstanceID {
		segs = append(segs, strconv.Itoa(int(DynamicPlaceholderInstanceID)))
	}
	return segs
}

// RequestPathSegments builds the client-facing path for inst: base path,
// then instance id, then parameter path.
func RequestPathSegments(inst *ParameterInstance) []string {
	segs := splitPath(inst.BasePath)
	if inst.ID.InstanceID > 0 {
		segs = append(segs, strconv.Itoa(int(inst.ID.InstanceID)))
	}
	return joinSegments(segs, splitPath(inst.Definition.Path))
}

// AddInstances populates one (device, instance_id) slot's parameter
// instances from their definitions, applying WDD-declared values and
// instance-key validation (spec §3 lifecycle: "instances are created on
// WDD application").
func (c *InstanceCollection) AddInstances(deviceID string, instanceID uint16, basePath string, definitions []ParameterInstance, values []ValueDeclaration, forceStatusUnavailableIfNotProvided bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prepared := make([]*ParameterInstance, 0, len(definitions))
	for _, proto := range definitions {
		id := ParameterInstanceID{ParameterID: proto.Definition.ID, InstanceID: instanceID, DeviceID: deviceID}
		if _, exists := c.byID[id]; exists {
			if id.InstanceID != DynamicPlaceholderInstanceID {
				logging.Warn("device", "parameter instance %v already exists, ignoring", id)
			}
			continue
		}

		inst := proto
		inst.ID = id
		inst.BasePath = basePath

		foundVal := proto.Definition.Overrideables.Default
		if val, ok := findValueDeclaration(values, id); ok {
			if val.Value != nil {
				foundVal = val.Value
			}
			inst.StatusUnavailableIfNotProvided = val.StatusUnavailableIfNotProvided
		} else if proto.Definition.InstanceKey && id.InstanceID != DynamicPlaceholderInstanceID {
			return errInstanceKeyMissing(basePath, proto.Definition)
		}
		if forceStatusUnavailableIfNotProvided {
			inst.StatusUnavailableIfNotProvided = true
		}
		if !proto.Definition.Writeable || proto.Definition.Overrideables.Inactive {
			inst.FixedValue = foundVal
		}
		instCopy := inst
		prepared = append(prepared, &instCopy)
	}

	for _, inst := range prepared {
		c.byID[inst.ID] = inst
		c.all = append(c.all, inst)
		c.paths.addValue(internalPathSegments(inst), inst)
	}
	return nil
}

// AddClassInstance registers the synthetic instantiations parameter for a
// class at its base path (spec §3: every class exposes one, addressed by
// path only since instance_id == 0 is shared across classes with no
// explicit BaseID).
func (c *InstanceCollection) AddClassInstance(deviceID, basePath string, def ParameterInstance, forceValue *model.Value, statusUnavailableIfNotProvided bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := ParameterInstanceID{ParameterID: def.Definition.ID, InstanceID: 0, DeviceID: deviceID}
	if _, exists := c.byID[id]; exists {
		return
	}
	inst := def
	inst.ID = id
	inst.BasePath = basePath
	inst.FixedValue = forceValue
	inst.StatusUnavailableIfNotProvided = statusUnavailableIfNotProvided
	c.byID[id] = &inst
	c.all = append(c.all, &inst)
	c.paths.addValue(splitPath(basePath), &inst)
}

func errInstanceKeyMissing(basePath string, def model.ParameterDefinition) error {
	return fmt.Errorf("device: no value for instance_key was found for static class %q in parameter %q (id=%d); refusing to load class instance", basePath, def.Path, def.ID)
}

func (c *InstanceCollection) GetByID(id ParameterInstanceID) *ParameterInstance {
	if id.ParameterID == 0 && id.InstanceID == 0 {
		return nil
	}

	c.mu.Lock()
	inst, ok := c.byID[id]
	if ok {
		c.mu.Unlock()
		return inst
	}
	if id.InstanceID == 0 {
		c.mu.Unlock()
		return nil
	}
	placeholderID := ParameterInstanceID{ParameterID: id.ParameterID, InstanceID: DynamicPlaceholderInstanceID, DeviceID: id.DeviceID}
	placeholder, ok := c.byID[placeholderID]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return c.materializeDynamic(id, placeholder)
}

func (c *InstanceCollection) GetByPath(path string) *ParameterInstance {
	c.mu.Lock()
	segments := splitPath(path)
	inst := c.paths.getValue(segments)
	c.mu.Unlock()
	if inst == nil {
		return nil
	}
	if inst.ID.InstanceID != DynamicPlaceholderInstanceID {
		return inst
	}

	last := segments[len(segments)-1]
	id, err := strconv.Atoi(last)
	if err != nil {
		return nil
	}
	target := ParameterInstanceID{ParameterID: inst.ID.ParameterID, InstanceID: uint16(id), DeviceID: inst.ID.DeviceID}
	return c.materializeDynamic(target, inst)
}

// materializeDynamic returns the (possibly freshly cloned) dynamic
// instance for target, using singleflight so concurrent lookups of the
// same new instance id collapse into one clone rather than racing.
func (c *InstanceCollection) materializeDynamic(target ParameterInstanceID, placeholder *ParameterInstance) *ParameterInstance {
	key := target.DeviceID + "/" + strconv.FormatUint(uint64(target.ParameterID), 10) + "/" + strconv.FormatUint(uint64(target.InstanceID), 10)
	v, _, _ := c.dynGroup.Do(key, func() (interface{}, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.dynamicByID[target]; ok {
			existing.Provider = placeholder.Provider
			return existing, nil
		}
		clone := *placeholder
		clone.ID = target
		c.dynamicByID[target] = &clone
		return &clone, nil
	})
	return v.(*ParameterInstance)
}

// SetProvider binds provider to an existing instance id, logging a warning
// if it overwrites a different, already-bound provider (spec §4.5:
// "a parameter-instance is never routed to more than one provider
// simultaneously; re-binding overwrites with a logged warning"). Reports
// whether the instance id exists.
func (c *InstanceCollection) SetProvider(id ParameterInstanceID, provider providerapi.ParameterProvider) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	inst, ok := c.byID[id]
	if !ok {
		return false
	}
	if inst.Provider != nil && inst.Provider != provider {
		logging.Warn("device", "re-binding parameter instance %v, overwriting its existing provider", id)
	}
	inst.Provider = provider
	return true
}

// ClearProvider unbinds provider from every instance currently routed to
// it (spec §4.5: "unregistration clears all instance.provider fields that
// pointed to the unregistered provider").
func (c *InstanceCollection) ClearProvider(provider providerapi.ParameterProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, inst := range c.all {
		if inst.Provider == provider {
			inst.Provider = nil
		}
	}
	for _, inst := range c.dynamicByID {
		if inst.Provider == provider {
			inst.Provider = nil
		}
	}
}

// GetAll returns every statically-declared instance (not dynamically
// materialized ones, which are not enumerable by design).
func (c *InstanceCollection) GetAll() []*ParameterInstance {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ParameterInstance, len(c.all))
	copy(out, c.all)
	return out
}

// GetAllUnderSubpath returns every instance at or below path, plus any
// class-instantiations parameter visited along the way whose value is not
// fixed (spec: get-all with a path prefix filter).
func (c *InstanceCollection) GetAllUnderSubpath(path string) []*ParameterInstance {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, visited := c.paths.getNodeUnderPath(splitPath(path), true)
	if node == nil {
		return nil
	}
	result := node.gatherValues()
	for _, v := range visited {
		if v.Definition.ValueType == model.ValueTypeInstantiations && v.FixedValue == nil {
			result = append(result, v)
		}
	}
	return result
}
