package filetransfer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/future"
	"github.com/wago/wdx-core/internal/model"
	"github.com/wago/wdx-core/internal/providerapi"
)

// fileParameterProvider is a ParameterProvider that also implements
// providerapi.FileProvider, so it can serve upload-id sessions directly.
type fileParameterProvider struct {
	uploadID      string
	removedIDs    []string
	fileContents  []byte
	capacity      int64
}

func (p *fileParameterProvider) GetProvidedParameters() ([]providerapi.Selector, error) { return nil, nil }

func (p *fileParameterProvider) GetParameterValues(ctx context.Context, ids []providerapi.ParameterKey) future.Future[[]providerapi.ValueResponse] {
	f := future.New[[]providerapi.ValueResponse]()
	_ = f.SetValue(make([]providerapi.ValueResponse, len(ids)))
	return f.Future()
}

func (p *fileParameterProvider) SetParameterValuesConnectionAware(ctx context.Context, reqs []providerapi.SetRequest, defer_ bool) future.Future[[]providerapi.SetResponse] {
	f := future.New[[]providerapi.SetResponse]()
	_ = f.SetValue(make([]providerapi.SetResponse, len(reqs)))
	return f.Future()
}

func (p *fileParameterProvider) InvokeMethod(ctx context.Context, methodID providerapi.ParameterKey, inArgs []model.Value) future.Future[providerapi.MethodInvocationResponse] {
	f := future.New[providerapi.MethodInvocationResponse]()
	_ = f.SetValue(providerapi.MethodInvocationResponse{})
	return f.Future()
}

func (p *fileParameterProvider) CreateParameterUploadID(ctx context.Context, contextParameterPath string, timeoutSeconds int) future.Future[string] {
	f := future.New[string]()
	_ = f.SetValue(p.uploadID)
	return f.Future()
}

func (p *fileParameterProvider) RemoveParameterUploadID(ctx context.Context, uploadID string, contextParameterPath string) future.Future[struct{}] {
	p.removedIDs = append(p.removedIDs, uploadID)
	f := future.New[struct{}]()
	_ = f.SetValue(struct{}{})
	return f.Future()
}

func (p *fileParameterProvider) Read(ctx context.Context, offset, length int64) future.Future[[]byte] {
	f := future.New[[]byte]()
	end := offset + length
	if end > int64(len(p.fileContents)) {
		end = int64(len(p.fileContents))
	}
	_ = f.SetValue(p.fileContents[offset:end])
	return f.Future()
}

func (p *fileParameterProvider) Write(ctx context.Context, offset int64, data []byte) future.Future[struct{}] {
	needed := offset + int64(len(data))
	if needed > int64(len(p.fileContents)) {
		grown := make([]byte, needed)
		copy(grown, p.fileContents)
		p.fileContents = grown
	}
	copy(p.fileContents[offset:], data)
	f := future.New[struct{}]()
	_ = f.SetValue(struct{}{})
	return f.Future()
}

func (p *fileParameterProvider) GetFileInfo(ctx context.Context) future.Future[providerapi.FileInfo] {
	f := future.New[providerapi.FileInfo]()
	_ = f.SetValue(providerapi.FileInfo{Size: int64(len(p.fileContents)), Capacity: p.capacity})
	return f.Future()
}

func (p *fileParameterProvider) Create(ctx context.Context, capacity int64) future.Future[struct{}] {
	p.capacity = capacity
	p.fileContents = make([]byte, 0, capacity)
	f := future.New[struct{}]()
	_ = f.SetValue(struct{}{})
	return f.Future()
}

func buildFileTransferFixture(t *testing.T) (*device.Store, *fileParameterProvider) {
	t.Helper()
	m := model.NewModel("TestModel", "1.0.0")
	m.Classes["Tests"] = &model.ClassDefinition{
		ID:       "Tests",
		BasePath: "Tests",
		OwnParameters: []model.ParameterDefinition{
			{ID: 20, Path: "Upload", ValueType: model.ValueTypeString, Writeable: false},
		},
	}
	require.NoError(t, m.Finalize())

	dev := device.NewDevice("0-0", "", "")
	def, _ := m.ParameterDefinitionFor("Tests", 20)
	require.NoError(t, dev.Instances.AddInstances("0-0", 0, "Tests", []device.ParameterInstance{{Definition: def}}, nil, false))

	p := &fileParameterProvider{uploadID: "fileaaaaaaaa"}
	require.True(t, dev.Instances.SetProvider(device.ParameterInstanceID{ParameterID: 20, InstanceID: 0, DeviceID: "0-0"}, p))

	store := device.NewStore()
	require.NoError(t, store.Register(dev))
	return store, p
}

func TestCreateUploadIDRoundTrip(t *testing.T) {
	store, _ := buildFileTransferFixture(t)
	mgr := NewManager(store)
	defer mgr.Stop()

	ctx := context.Background()
	id, err := mgr.CreateUploadID(ctx, "Tests/Upload", 5)
	require.NoError(t, err)
	require.Equal(t, "fileaaaaaaaa", id)

	require.NoError(t, mgr.Create(ctx, id, 16))
	require.NoError(t, mgr.Write(ctx, id, 0, []byte("hello")))
	data, err := mgr.Read(ctx, id, 0, 5)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)

	info, err := mgr.GetFileInfo(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(5), info.Size)
	require.Equal(t, int64(16), info.Capacity)
}

func TestCreateUploadIDUnresolvableTarget(t *testing.T) {
	store, _ := buildFileTransferFixture(t)
	mgr := NewManager(store)
	defer mgr.Stop()

	_, err := mgr.CreateUploadID(context.Background(), "Does/Not/Exist", 5)
	require.Error(t, err)
}

func TestCreateUploadIDMaxExceeded(t *testing.T) {
	store, _ := buildFileTransferFixture(t)
	mgr := NewManager(store)
	defer mgr.Stop()
	mgr.sessions = make(map[string]*session, maxConcurrentUploadIDs)
	for i := 0; i < maxConcurrentUploadIDs; i++ {
		mgr.sessions[string(rune(i))] = &session{}
	}

	_, err := mgr.CreateUploadID(context.Background(), "Tests/Upload", 5)
	require.ErrorIs(t, err, ErrUploadIDMaxExceeded)
}

func TestOperationOnUnknownUploadID(t *testing.T) {
	store, _ := buildFileTransferFixture(t)
	mgr := NewManager(store)
	defer mgr.Stop()

	_, err := mgr.Read(context.Background(), "nope", 0, 1)
	require.ErrorIs(t, err, ErrUnknownUploadID)
}

func TestCleanupDrainsAllSessions(t *testing.T) {
	store, p := buildFileTransferFixture(t)
	mgr := NewManager(store)
	defer mgr.Stop()

	ctx := context.Background()
	id, err := mgr.CreateUploadID(ctx, "Tests/Upload", 5)
	require.NoError(t, err)

	require.NoError(t, mgr.Cleanup(ctx))
	require.Contains(t, p.removedIDs, id)

	_, err = mgr.Read(ctx, id, 0, 1)
	require.ErrorIs(t, err, ErrUnknownUploadID)
}

func TestSweepLapsesStaleUploadID(t *testing.T) {
	store, p := buildFileTransferFixture(t)
	mgr := NewManager(store)
	mgr.sweepInterval = 10 * time.Millisecond
	defer mgr.Stop()

	ctx := context.Background()
	id, err := mgr.CreateUploadID(ctx, "Tests/Upload", 1)
	require.NoError(t, err)

	mgr.mu.Lock()
	mgr.sessions[id].lastAccess = time.Now().Add(-2 * time.Second)
	mgr.mu.Unlock()

	require.Eventually(t, func() bool {
		_, err := mgr.Read(ctx, id, 0, 1)
		return err == ErrUnknownUploadID
	}, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(p.removedIDs) > 0
	}, time.Second, 10*time.Millisecond)
}
