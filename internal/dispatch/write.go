package dispatch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/dispatcherr"
	"github.com/wago/wdx-core/internal/future"
	"github.com/wago/wdx-core/internal/metrics"
	"github.com/wago/wdx-core/internal/model"
	"github.com/wago/wdx-core/internal/providerapi"
	"github.com/wago/wdx-core/pkg/logging"
)

// WriteItem is one positional item of a batched write: the target parameter
// instance plus the value the caller proposes to set (spec §4.4).
type WriteItem struct {
	Target Target
	Value  model.Value
}

// writePortion groups every still-live write item routed to the same
// provider. invalid is set by either the pre-check or consistency pass and
// means the whole portion is rejected without ever reaching the provider
// (spec §4.4: "backends are protected from partially invalid sets").
type writePortion struct {
	provider providerapi.ParameterProvider
	slots    []int
	insts    []*device.ParameterInstance
	values   []model.Value
	invalid  bool
}

// Write resolves items against store, runs the pre-check and instantiations
// consistency passes of spec §4.4, then dispatches one
// set_parameter_values_connection_aware call per provider portion and
// integrates results in source-order sequence, mirroring Read.
func Write(ctx context.Context, store *device.Store, m *model.Model, items []WriteItem, deferConnectionChanges bool) future.Future[[]dispatcherr.Response] {
	p := future.New[[]dispatcherr.Response]()
	results := make([]dispatcherr.Response, len(items))
	for i := range results {
		results[i] = dispatcherr.InternalErrorTripwire()
	}

	portions := routeForWrite(store, items, results)
	for _, portion := range portions {
		checkInstantiationsConsistency(m, portion, results)
		if portion.invalid {
			rejectUndeterminedAsOtherInvalid(portion, results)
		}
	}

	go issueAndIntegrateWrites(ctx, deferConnectionChanges, portions, results, p)

	return p.Future()
}

// routeForWrite performs spec §4.4's pre-check pass: resolve each item,
// reject ignored/not-writeable/unbound items outright, validate the
// proposed value against the definition, and partition the rest into
// per-provider portions. A validation failure flags the whole portion
// invalid but still records the item's own specific status.
func routeForWrite(store *device.Store, items []WriteItem, results []dispatcherr.Response) []*writePortion {
	byProvider := map[providerapi.ParameterProvider]*writePortion{}
	var order []*writePortion

	for i, item := range items {
		inst, resp := ResolveTarget(store, item.Target)
		if !resp.Status.IsSuccess() {
			results[i] = resp
			continue
		}

		def := inst.Definition
		switch {
		case def.Overrideables.Inactive:
			results[i] = dispatcherr.Err(dispatcherr.StatusIgnored, "parameter is inactive")
			continue
		case !def.Writeable:
			results[i] = dispatcherr.Err(dispatcherr.StatusParameterNotWriteable, "parameter is not writeable")
			continue
		case inst.Provider == nil:
			results[i] = dispatcherr.Err(dispatcherr.StatusParameterNotProvided, "no provider is bound to this parameter instance")
			continue
		}

		portion, ok := byProvider[inst.Provider]
		if !ok {
			portion = &writePortion{provider: inst.Provider}
			byProvider[inst.Provider] = portion
			order = append(order, portion)
		}

		if err := item.Value.Validate(def); err != nil {
			results[i] = dispatcherr.Err(dispatcherr.StatusInvalidValue, err.Error())
			portion.invalid = true
			continue
		}

		portion.slots = append(portion.slots, i)
		portion.insts = append(portion.insts, inst)
		portion.values = append(portion.values, item.Value)
	}

	return order
}

// rejectUndeterminedAsOtherInvalid marks every item of portion that the
// pre-check/consistency passes left untouched as other_invalid_value_in_set
// (spec §4.4: "every remaining undetermined item routed to that provider is
// rejected ... and the portion is not dispatched"), then clears the portion
// so issueAndIntegrateWrites skips it.
func rejectUndeterminedAsOtherInvalid(portion *writePortion, results []dispatcherr.Response) {
	for _, slot := range portion.slots {
		if results[slot].Status == dispatcherr.StatusInternalError {
			results[slot] = dispatcherr.Err(dispatcherr.StatusOtherInvalidValueInSet, "a sibling item in this provider's batch was rejected")
		}
	}
}

// checkInstantiationsConsistency runs spec §4.4's per-provider consistency
// pass: for every instantiations-typed write in portion (a class-instance
// reset), validate the new instantiation's class ancestry, that every
// writeable/non-inactive parameter of the instantiated classes is present
// among this provider's sibling items for that instance, and that no
// sibling item names a parameter outside those classes. Instance-key
// parameters are rejected unless they belong to one of this portion's
// resets.
func checkInstantiationsConsistency(m *model.Model, portion *writePortion, results []dispatcherr.Response) {
	resetInstanceIDs := map[string]map[uint16]bool{} // base path -> instance id being reset

	for idx, inst := range portion.insts {
		if inst.Definition.ValueType != model.ValueTypeInstantiations {
			continue
		}
		slot := portion.slots[idx]
		value := portion.values[idx]

		targetClassID, ok := m.ParameterOwner[inst.Definition.ID]
		if !ok {
			results[slot] = dispatcherr.Err(dispatcherr.StatusInternalError, "instantiations parameter has no owning class")
			portion.invalid = true
			continue
		}

		resolved, err := model.ResolveClassInstantiations(m.Classes, value.Class)
		if err != nil {
			results[slot] = dispatcherr.Err(dispatcherr.StatusInvalidValue, err.Error())
			portion.invalid = true
			continue
		}

		if msg, ok := firstAncestryViolation(m, targetClassID, resolved); !ok {
			results[slot] = dispatcherr.Err(dispatcherr.StatusInvalidValue, msg)
			portion.invalid = true
			continue
		}

		if resetInstanceIDs[inst.BasePath] == nil {
			resetInstanceIDs[inst.BasePath] = map[uint16]bool{}
		}
		expectedByInstance := map[uint16]map[uint32]bool{}
		for _, entry := range resolved {
			resetInstanceIDs[inst.BasePath][entry.InstanceID] = true
			expectedByInstance[entry.InstanceID] = expectedParametersOf(m, entry.CollectedClasses, inst.Definition.ID)
		}

		siblings := siblingItemsAt(portion, idx, inst.BasePath, expectedByInstance)

		missing := false
		for instanceID, expected := range expectedByInstance {
			have := siblings[instanceID]
			for paramID := range expected {
				if _, provided := have[paramID]; !provided {
					results[slot] = dispatcherr.Err(dispatcherr.StatusMissingParameterForInstantiation,
						fmt.Sprintf("instance %d is missing a value for parameter %d", instanceID, paramID))
					missing = true
				}
			}
		}
		if missing {
			portion.invalid = true
			continue
		}

		for j, other := range portion.insts {
			if j == idx || other.BasePath != inst.BasePath {
				continue
			}
			expected, isNewInstance := expectedByInstance[other.ID.InstanceID]
			if !isNewInstance {
				continue
			}
			if !expected[other.Definition.ID] {
				results[portion.slots[j]] = dispatcherr.Err(dispatcherr.StatusNotExistingForInstance,
					fmt.Sprintf("parameter %d does not belong to instance %d's new class set", other.Definition.ID, other.ID.InstanceID))
				portion.invalid = true
			}
		}
	}

	for j, sibling := range portion.insts {
		if !sibling.Definition.InstanceKey {
			continue
		}
		if resetInstanceIDs[sibling.BasePath][sibling.ID.InstanceID] {
			continue
		}
		results[portion.slots[j]] = dispatcherr.Err(dispatcherr.StatusInstanceKeyNotWriteable,
			"instance-key parameters are only writeable as part of a class-instance reset")
		portion.invalid = true
	}
}

// firstAncestryViolation checks consistency rule 1: every class named in
// every new instantiation must be targetClassID itself or a class whose
// resolved_includes contains it.
func firstAncestryViolation(m *model.Model, targetClassID string, resolved []model.ClassInstantiationValue) (string, bool) {
	for _, entry := range resolved {
		for _, named := range append(append([]string(nil), entry.Classes...), entry.AdditionalClasses...) {
			if named != targetClassID && !m.IsInstanceOf(named, targetClassID) {
				return fmt.Sprintf("class %q does not derive from %q", named, targetClassID), false
			}
		}
	}
	return "", true
}

// expectedParametersOf returns the set of parameter ids a new instance of
// collectedClasses must supply: every writeable, non-inactive parameter
// those classes resolve to, excluding the instantiations parameter itself
// (instantiationsParamID).
func expectedParametersOf(m *model.Model, collectedClasses []string, instantiationsParamID uint32) map[uint32]bool {
	expected := map[uint32]bool{}
	for _, className := range collectedClasses {
		class, ok := m.Classes[className]
		if !ok {
			continue
		}
		for _, pd := range class.ResolvedParameterDefinitions {
			if pd.ID == instantiationsParamID || !pd.Writeable || pd.Overrideables.Inactive {
				continue
			}
			expected[pd.ID] = true
		}
	}
	return expected
}

// siblingItemsAt collects, for every new instance id in expectedByInstance,
// which parameter ids this portion's other items (besides the reset item at
// skipIdx) supply at basePath, keyed by instance id then parameter id.
func siblingItemsAt(portion *writePortion, skipIdx int, basePath string, expectedByInstance map[uint16]map[uint32]bool) map[uint16]map[uint32]int {
	out := map[uint16]map[uint32]int{}
	for j, other := range portion.insts {
		if j == skipIdx || other.BasePath != basePath {
			continue
		}
		if _, isNewInstance := expectedByInstance[other.ID.InstanceID]; !isNewInstance {
			continue
		}
		if out[other.ID.InstanceID] == nil {
			out[other.ID.InstanceID] = map[uint32]int{}
		}
		out[other.ID.InstanceID][other.Definition.ID] = portion.slots[j]
	}
	return out
}

func issueAndIntegrateWrites(ctx context.Context, deferChanges bool, portions []*writePortion, results []dispatcherr.Response, p *future.Promise[[]dispatcherr.Response]) {
	met := metrics.FromContext(ctx)
	futures := make([]future.Future[[]providerapi.SetResponse], len(portions))
	started := make([]time.Time, len(portions))

	g, gctx := errgroup.WithContext(ctx)
	for i, portion := range portions {
		if portion.invalid || len(portion.slots) == 0 {
			continue
		}
		i, portion := i, portion
		g.Go(func() (err error) {
			started[i] = time.Now()
			defer func() {
				if r := recover(); r != nil {
					logging.Error("dispatch", nil, "provider panicked during set_parameter_values_connection_aware: %v", r)
					fp := future.New[[]providerapi.SetResponse]()
					_ = fp.SetException(errProviderPanic)
					futures[i] = fp.Future()
					met.ObserveProviderCall(metrics.OperationWrite, metrics.OutcomePanic, started[i])
				}
			}()
			requests := make([]providerapi.SetRequest, len(portion.insts))
			for j, inst := range portion.insts {
				requests[j] = providerapi.SetRequest{
					ParameterID: inst.ID.ParameterID,
					InstanceID:  inst.ID.InstanceID,
					Value:       portion.values[j],
				}
			}
			futures[i] = portion.provider.SetParameterValuesConnectionAware(gctx, requests, deferChanges)
			return nil
		})
	}
	_ = g.Wait()

	var integrate func(k int)
	integrate = func(k int) {
		if k >= len(portions) {
			p.SetValue(results)
			return
		}
		portion := portions[k]
		if portion.invalid || len(portion.slots) == 0 {
			integrate(k + 1)
			return
		}
		f := futures[k]

		onErr := func(err error) {
			logging.Warn("dispatch", "provider %T failed set_parameter_values_connection_aware: %v", portion.provider, err)
			for _, slot := range portion.slots {
				results[slot] = dispatcherr.Err(dispatcherr.StatusInternalError, err.Error())
			}
			met.ObserveProviderCall(metrics.OperationWrite, metrics.OutcomeError, started[k])
			integrate(k + 1)
		}

		if err := f.SetExceptionNotifier(onErr); err != nil {
			onErr(err)
			return
		}
		if err := f.SetNotifier(func(responses []providerapi.SetResponse) {
			integrateWritePortion(portion, responses, results)
			met.ObserveProviderCall(metrics.OperationWrite, metrics.OutcomeSuccess, started[k])
			integrate(k + 1)
		}); err != nil && err != future.ErrAlreadyRetrieved {
			onErr(err)
		}
	}
	integrate(0)
}

func integrateWritePortion(portion *writePortion, responses []providerapi.SetResponse, results []dispatcherr.Response) {
	for j, slot := range portion.slots {
		if j >= len(responses) {
			results[slot] = dispatcherr.Err(dispatcherr.StatusParameterNotProvided, "provider omitted this item from its response")
			continue
		}
		r := responses[j]
		switch {
		case r.ConnectionChangesDeferred:
			results[slot] = dispatcherr.Response{Status: dispatcherr.StatusWdaConnectionChangesDeferred, Message: r.Message, DomainCode: r.DomainCode}
		case r.Success:
			results[slot] = dispatcherr.Response{Status: dispatcherr.StatusSuccess, Message: r.Message, DomainCode: r.DomainCode}
		default:
			results[slot] = dispatcherr.Response{Status: dispatcherr.StatusInvalidValue, Message: r.Message, DomainCode: r.DomainCode}
		}
	}
}
