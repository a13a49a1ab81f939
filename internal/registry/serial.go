package registry

import (
	"context"

	"github.com/wago/wdx-core/internal/future"
	"github.com/wago/wdx-core/internal/jobqueue"
	"github.com/wago/wdx-core/internal/model"
	"github.com/wago/wdx-core/internal/providerapi"
)

// serialParameterProvider is a pass-through facade over a
// providerapi.ParameterProvider that serializes every future-returning call
// through a jobqueue.Queue, so the wrapped provider never observes more
// than one outstanding call at a time (spec §4.2, §4.5 "a provider
// registered in serialized mode is transparently wrapped in a
// serial_parameter_provider"). GetProvidedParameters is synchronous and is
// not serialized.
type serialParameterProvider struct {
	inner providerapi.ParameterProvider
	queue *jobqueue.Queue
}

func newSerialParameterProvider(inner providerapi.ParameterProvider) *serialParameterProvider {
	return &serialParameterProvider{inner: inner, queue: jobqueue.New()}
}

func enqueueCall[R any](q *jobqueue.Queue, call func() future.Future[R]) future.Future[R] {
	p := future.New[R]()
	q.Enqueue(jobqueue.NewProviderJob(p, call))
	return p.Future()
}

func (s *serialParameterProvider) GetProvidedParameters() ([]providerapi.Selector, error) {
	return s.inner.GetProvidedParameters()
}

func (s *serialParameterProvider) GetParameterValues(ctx context.Context, ids []providerapi.ParameterKey) future.Future[[]providerapi.ValueResponse] {
	return enqueueCall(s.queue, func() future.Future[[]providerapi.ValueResponse] {
		return s.inner.GetParameterValues(ctx, ids)
	})
}

func (s *serialParameterProvider) SetParameterValuesConnectionAware(ctx context.Context, requests []providerapi.SetRequest, deferConnectionChanges bool) future.Future[[]providerapi.SetResponse] {
	return enqueueCall(s.queue, func() future.Future[[]providerapi.SetResponse] {
		return s.inner.SetParameterValuesConnectionAware(ctx, requests, deferConnectionChanges)
	})
}

func (s *serialParameterProvider) InvokeMethod(ctx context.Context, methodID providerapi.ParameterKey, inArgs []model.Value) future.Future[providerapi.MethodInvocationResponse] {
	return enqueueCall(s.queue, func() future.Future[providerapi.MethodInvocationResponse] {
		return s.inner.InvokeMethod(ctx, methodID, inArgs)
	})
}

func (s *serialParameterProvider) CreateParameterUploadID(ctx context.Context, contextParameterPath string, timeoutSeconds int) future.Future[string] {
	return enqueueCall(s.queue, func() future.Future[string] {
		return s.inner.CreateParameterUploadID(ctx, contextParameterPath, timeoutSeconds)
	})
}

func (s *serialParameterProvider) RemoveParameterUploadID(ctx context.Context, uploadID string, contextParameterPath string) future.Future[struct{}] {
	return enqueueCall(s.queue, func() future.Future[struct{}] {
		return s.inner.RemoveParameterUploadID(ctx, uploadID, contextParameterPath)
	})
}

// close cancels any job still queued or running, releasing its promise with
// jobqueue.ErrCleanedUpBeforeResponse.
func (s *serialParameterProvider) close() {
	s.queue.Close()
}
