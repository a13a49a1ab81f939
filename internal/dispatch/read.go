package dispatch

import (
	"context"
	"errors"
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

// errProviderPanic stands in for whatever a panicking provider call would
// have returned, so integration treats it exactly like a rejected future
// rather than crashing the dispatcher goroutine (spec §4.3: "a provider
// exception during issuance never fails the whole batch").
var errProviderPanic = errors.New("dispatch: provider panicked during call")

// ReadResult is one positional slot of a batched read: exactly one of
// Value or Response.Status != StatusSuccess is meaningful (spec §4.3).
type ReadResult struct {
	Value    model.Value
	Response dispatcherr.Response
}

// readPortion groups every target slot routed to the same provider, so one
// GetParameterValues call serves them all (spec §4.3 step 4: "targets
// bound to the same provider are batched into a single call").
type readPortion struct {
	provider providerapi.ParameterProvider
	slots    []int // indices into the caller's target/result slices, in source order
	keys     []providerapi.ParameterKey
}

// Read resolves targets against store, routes each to its bound provider,
// and returns one ReadResult per target in the same order. definitionsOnly
// means only a parameter's definition is wanted (a "describe" request):
// every target that resolves, method-typed parameters included, then
// returns success with no value and no provider is called.
func Read(ctx context.Context, store *device.Store, m *model.Model, targets []Target, definitionsOnly bool) future.Future[[]ReadResult] {
	p := future.New[[]ReadResult]()
	results := make([]ReadResult, len(targets))
	for i := range results {
		results[i] = ReadResult{Response: dispatcherr.InternalErrorTripwire()}
	}

	portions := routeForRead(store, targets, results, definitionsOnly)

	go issueAndIntegrateReads(ctx, m, portions, results, p)

	return p.Future()
}

// routeForRead performs spec §4.3 steps 1-3 for every target: resolve it,
// reject shape mismatches (a method parameter has no value), and partition
// the still-live slots into per-provider portions, preserving each
// provider's first-occurrence order so integration later replays
// deterministically (spec §5).
func routeForRead(store *device.Store, targets []Target, results []ReadResult, definitionsOnly bool) []*readPortion {
	byProvider := map[providerapi.ParameterProvider]*readPortion{}
	var order []*readPortion

	for i, t := range targets {
		inst, resp := ResolveTarget(store, t)
		if !resp.Status.IsSuccess() {
			results[i].Response = resp
			continue
		}

		if definitionsOnly {
			results[i].Response = dispatcherr.Success()
			continue
		}

		if inst.Definition.ValueType == model.ValueTypeMethod {
			results[i].Response = dispatcherr.Err(dispatcherr.StatusMethodsDoNotHaveValue, "parameter is a method and has no value")
			continue
		}

		if inst.FixedValue != nil {
			results[i].Value = *inst.FixedValue
			results[i].Response = dispatcherr.Success()
			continue
		}
		if inst.StatusUnavailableIfNotProvided && inst.Provider == nil {
			results[i].Response = dispatcherr.Err(dispatcherr.StatusValueUnavailable, "no provider bound and parameter requires one")
			continue
		}
		if inst.Provider == nil {
			results[i].Response = dispatcherr.Err(dispatcherr.StatusParameterNotProvided, "no provider is bound to this parameter instance")
			continue
		}

		portion, ok := byProvider[inst.Provider]
		if !ok {
			portion = &readPortion{provider: inst.Provider}
			byProvider[inst.Provider] = portion
			order = append(order, portion)
		}
		portion.slots = append(portion.slots, i)
		portion.keys = append(portion.keys, providerapi.ParameterKey{
			ParameterID: inst.ID.ParameterID,
			InstanceID:  inst.ID.InstanceID,
			DeviceID:    inst.ID.DeviceID,
		})
	}

	return order
}

// issueAndIntegrateReads issues every portion's provider call concurrently
// (spec §4.3 step 5), then integrates their results strictly in portion
// order (step 7) by chaining SetNotifier installs: portion k+1's notifier
// is only installed once portion k's integration has run, even though all
// provider calls were already in flight beforehand.
func issueAndIntegrateReads(ctx context.Context, m *model.Model, portions []*readPortion, results []ReadResult, p *future.Promise[[]ReadResult]) {
	met := metrics.FromContext(ctx)
	futures := make([]future.Future[[]providerapi.ValueResponse], len(portions))
	started := make([]time.Time, len(portions))

	g, gctx := errgroup.WithContext(ctx)
	for i, portion := range portions {
		i, portion := i, portion
		g.Go(func() (err error) {
			started[i] = time.Now()
			defer func() {
				if r := recover(); r != nil {
					logging.Error("dispatch", nil, "provider panicked during get_parameter_values: %v", r)
					fp := future.New[[]providerapi.ValueResponse]()
					_ = fp.SetException(errProviderPanic)
					futures[i] = fp.Future()
					met.ObserveProviderCall(metrics.OperationRead, metrics.OutcomePanic, started[i])
				}
			}()
			futures[i] = portion.provider.GetParameterValues(gctx, portion.keys)
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
		f := futures[k]

		onErr := func(err error) {
			logging.Warn("dispatch", "provider %T failed get_parameter_values: %v", portion.provider, err)
			for _, slot := range portion.slots {
				results[slot].Response = dispatcherr.Err(dispatcherr.StatusInternalError, err.Error())
			}
			met.ObserveProviderCall(metrics.OperationRead, metrics.OutcomeError, started[k])
			integrate(k + 1)
		}

		if err := f.SetExceptionNotifier(onErr); err != nil {
			onErr(err)
			return
		}
		if err := f.SetNotifier(func(responses []providerapi.ValueResponse) {
			integrateReadPortion(m, portion, responses, results)
			met.ObserveProviderCall(metrics.OperationRead, metrics.OutcomeSuccess, started[k])
			integrate(k + 1)
		}); err != nil && err != future.ErrAlreadyRetrieved {
			onErr(err)
		}
	}
	integrate(0)
}

func integrateReadPortion(m *model.Model, portion *readPortion, responses []providerapi.ValueResponse, results []ReadResult) {
	for j, slot := range portion.slots {
		if j >= len(responses) {
			results[slot].Response = dispatcherr.Err(dispatcherr.StatusInternalError, "provider returned fewer values than requested")
			continue
		}
		r := responses[j]
		switch {
		case !r.Handled:
			results[slot].Response = dispatcherr.Err(dispatcherr.StatusParameterNotProvided, r.Message)
		case r.Unavailable:
			results[slot].Response = dispatcherr.Err(dispatcherr.StatusValueUnavailable, r.Message)
		default:
			v := r.Value
			if v.Type == model.ValueTypeInstantiations {
				resolved, err := model.ResolveClassInstantiations(m.Classes, v.Class)
				if err != nil {
					results[slot].Response = dispatcherr.Err(dispatcherr.StatusInternalError, err.Error())
					continue
				}
				v.Class = resolved
			}
			results[slot].Value = v
			results[slot].Response = dispatcherr.Success()
		}
	}
}
