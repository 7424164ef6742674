package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
	"github.com/annel0/voxel-engine/internal/world/block/implementations"
)

type testEnv struct {
	server   *StatusServer
	world    *world.World
	host     *world.HeadlessHost
	registry *prometheus.Registry
}

func newTestEnv(t *testing.T, metricsEnabled bool) *testEnv {
	t.Helper()

	registry, err := implementations.NewDefaultRegistry()
	require.NoError(t, err)

	promRegistry := prometheus.NewRegistry()
	opts := world.DefaultOptions()
	opts.VoxelSize = 1
	opts.RenderDistance = 1.5
	opts.DestroyExtent = 0.5
	opts.MaxApplicationsPerTick = 1000
	opts.Async = false
	opts.Registerer = promRegistry

	host := world.NewHeadlessHost()
	w, err := world.NewWorld(registry, world.NewFlatGenerator(registry, 2), host, opts)
	require.NoError(t, err)
	t.Cleanup(w.Destroy)

	w.RegisterTracker(world.NewPointTracker(mgl32.Vec3{16, 16, 16}))
	for i := 0; i < 5; i++ {
		w.Tick()
	}

	srv, err := NewStatusServer(Config{
		Port:           0,
		World:          w,
		Host:           host,
		MetricsEnabled: metricsEnabled,
		Registerer:     promRegistry,
		Gatherer:       promRegistry,
	})
	require.NoError(t, err)

	return &testEnv{server: srv, world: w, host: host, registry: promRegistry}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) GenericResponse {
	t.Helper()
	var resp GenericResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "ответ должен быть JSON")
	return resp
}

func TestStatusServer_RequiresWorld(t *testing.T) {
	_, err := NewStatusServer(Config{})
	assert.Error(t, err, "без мира сервер не создаётся")
}

func TestStatusServer_DefaultPort(t *testing.T) {
	env := newTestEnv(t, false)
	assert.Equal(t, ":8090", env.server.Addr())
}

func TestStatusServer_Health(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.get(t, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestStatusServer_WorldStats(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.get(t, "/api/world/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode(t, rec)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data должен быть объектом")
	assert.Contains(t, data, "world")
	assert.Contains(t, data, "host")

	stats := env.world.Stats()
	worldData := data["world"].(map[string]interface{})
	assert.EqualValues(t, stats.Chunks, worldData["chunks"], "число чанков должно совпадать со Stats()")
}

func TestStatusServer_ChunkInfo(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.get(t, "/api/world/chunks/0/0/0")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.True(t, resp.Success)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var info world.ChunkInfo
	require.NoError(t, json.Unmarshal(raw, &info))
	assert.Equal(t, vec.Vec3{X: 0, Y: 0, Z: 0}, info.Pos)
	assert.Equal(t, "rendered", info.State)
	assert.True(t, info.HasRenderResource)
}

func TestStatusServer_ChunkInfoErrors(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.get(t, "/api/world/chunks/100/0/0")
	assert.Equal(t, http.StatusNotFound, rec.Code, "незагруженный чанк")
	assert.False(t, decode(t, rec).Success)

	rec = env.get(t, "/api/world/chunks/a/0/0")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "неверная координата")
	assert.False(t, decode(t, rec).Success)
}

func TestStatusServer_ServerInfo(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.get(t, "/api/server")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Contains(t, data, "uptime")
	assert.Contains(t, data, "memory")
	assert.Contains(t, data, "cpu_count")
}

func TestStatusServer_MetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, true)

	env.get(t, "/api/world/stats")

	rec := env.get(t, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "status_api_http_request_duration_seconds", "HTTP-метрики")
	assert.Contains(t, body, "voxel_world_chunks", "метрики мира в том же регистре")
}

func TestStatusServer_MetricsDisabled(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.get(t, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
