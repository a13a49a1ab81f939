package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/dispatch"
	"github.com/wago/wdx-core/internal/future"
	"github.com/wago/wdx-core/internal/model"
	"github.com/wago/wdx-core/internal/providerapi"
)

type fakeProvider struct{}

func (fakeProvider) GetProvidedParameters() ([]providerapi.Selector, error) { return nil, nil }

func (fakeProvider) GetParameterValues(ctx context.Context, ids []providerapi.ParameterKey) future.Future[[]providerapi.ValueResponse] {
	out := make([]providerapi.ValueResponse, len(ids))
	for i := range out {
		out[i] = providerapi.ValueResponse{Handled: true, Value: model.Value{Type: model.ValueTypeUint32, Raw: float64(7)}}
	}
	f := future.New[[]providerapi.ValueResponse]()
	_ = f.SetValue(out)
	return f.Future()
}

func (fakeProvider) SetParameterValuesConnectionAware(ctx context.Context, reqs []providerapi.SetRequest, defer_ bool) future.Future[[]providerapi.SetResponse] {
	f := future.New[[]providerapi.SetResponse]()
	_ = f.SetValue(make([]providerapi.SetResponse, len(reqs)))
	return f.Future()
}

func (fakeProvider) InvokeMethod(ctx context.Context, methodID providerapi.ParameterKey, inArgs []model.Value) future.Future[providerapi.MethodInvocationResponse] {
	f := future.New[providerapi.MethodInvocationResponse]()
	_ = f.SetValue(providerapi.MethodInvocationResponse{})
	return f.Future()
}

func (fakeProvider) CreateParameterUploadID(ctx context.Context, contextParameterPath string, timeoutSeconds int) future.Future[string] {
	f := future.New[string]()
	_ = f.SetValue("file00000000")
	return f.Future()
}

func (fakeProvider) RemoveParameterUploadID(ctx context.Context, uploadID string, contextParameterPath string) future.Future[struct{}] {
	f := future.New[struct{}]()
	_ = f.SetValue(struct{}{})
	return f.Future()
}

func buildMonitorFixture(t *testing.T) (*device.Store, *model.Model) {
	t.Helper()
	m := model.NewModel("TestModel", "1.0.0")
	m.Classes["Tests"] = &model.ClassDefinition{
		ID:       "Tests",
		BasePath: "Tests",
		OwnParameters: []model.ParameterDefinition{
			{ID: 11, Path: "Param", ValueType: model.ValueTypeUint32, Writeable: true},
		},
	}
	require.NoError(t, m.Finalize())

	dev := device.NewDevice("0-0", "", "")
	def, _ := m.ParameterDefinitionFor("Tests", 11)
	require.NoError(t, dev.Instances.AddInstances("0-0", 0, "Tests", []device.ParameterInstance{{Definition: def}}, nil, false))
	require.True(t, dev.Instances.SetProvider(device.ParameterInstanceID{ParameterID: 11, InstanceID: 0, DeviceID: "0-0"}, fakeProvider{}))

	store := device.NewStore()
	require.NoError(t, store.Register(dev))
	return store, m
}

func TestCreateMonitoringListRejectsZeroTimeout(t *testing.T) {
	store, m := buildMonitorFixture(t)
	mgr := NewManager(store)
	defer mgr.Stop()
	mgr.SetModel(m)

	_, err := mgr.CreateMonitoringList([]dispatch.Target{{ParameterPath: "Tests/Param"}}, 0)
	require.Error(t, err)
}

func TestCreateMonitoringListRejectsUnresolvableTarget(t *testing.T) {
	store, m := buildMonitorFixture(t)
	mgr := NewManager(store)
	defer mgr.Stop()
	mgr.SetModel(m)

	_, err := mgr.CreateMonitoringList([]dispatch.Target{{ParameterPath: "Does/Not/Exist"}}, 5)
	require.Error(t, err)
}

func TestGetValuesForMonitoringListReadsCurrentValues(t *testing.T) {
	store, m := buildMonitorFixture(t)
	mgr := NewManager(store)
	defer mgr.Stop()
	mgr.SetModel(m)

	list, err := mgr.CreateMonitoringList([]dispatch.Target{{ParameterPath: "Tests/Param"}}, 5)
	require.NoError(t, err)

	ctx := context.Background()
	f, ok := mgr.GetValuesForMonitoringList(ctx, list.ID)
	require.True(t, ok)
	results, err := f.Get(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Response.Status.IsSuccess())
	require.Equal(t, float64(7), results[0].Value.Raw)
}

func TestDeleteMonitoringListRemovesIt(t *testing.T) {
	store, m := buildMonitorFixture(t)
	mgr := NewManager(store)
	defer mgr.Stop()
	mgr.SetModel(m)

	list, err := mgr.CreateMonitoringList([]dispatch.Target{{ParameterPath: "Tests/Param"}}, 5)
	require.NoError(t, err)

	require.True(t, mgr.DeleteMonitoringList(list.ID))
	require.False(t, mgr.DeleteMonitoringList(list.ID))
}

func TestSweepLapsesStaleList(t *testing.T) {
	store, m := buildMonitorFixture(t)
	mgr := NewManager(store)
	defer mgr.Stop()
	mgr.sweepInterval = 10 * time.Millisecond
	mgr.SetModel(m)

	list, err := mgr.CreateMonitoringList([]dispatch.Target{{ParameterPath: "Tests/Param"}}, 1)
	require.NoError(t, err)
	list.lastAccess = time.Now().Add(-2 * time.Second)

	require.Eventually(t, func() bool {
		_, ok := mgr.GetValuesForMonitoringList(context.Background(), list.ID)
		return !ok
	}, time.Second, 10*time.Millisecond)
}
