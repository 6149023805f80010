package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servak/fabric-manager/internal/clos"
	"github.com/servak/fabric-manager/internal/domain/fabric"
	"github.com/servak/fabric-manager/internal/render"
	"github.com/servak/fabric-manager/internal/testutil"
)

func setupFabricHandler(t *testing.T) (*testutil.TestSetup, chi.Router) {
	setup := testutil.NewTestSetup(t)
	t.Cleanup(setup.Cleanup)

	seedAllocatedPod(t, setup)

	renderer, err := render.New()
	require.NoError(t, err)
	builder := clos.NewBuilder(setup.Repo, testutil.TestConfig(), "", nil, nil, setup.Logger)

	router := chi.NewRouter()
	config := huma.DefaultConfig("Test API", "1.0.0")
	api := humachi.New(router, config)

	handler := NewFabricHandler(setup.Repo, builder, renderer, setup.Logger)
	handler.Register(api)

	healthHandler := NewHealthHandler(setup.Repo, setup.Logger)
	healthHandler.Register(api)

	return setup, router
}

// seedAllocatedPod stores a small allocated pod: one spine, one leaf,
// loopbacks assigned, leaf IRB assigned, no peered ports.
func seedAllocatedPod(t *testing.T, setup *testutil.TestSetup) {
	t.Helper()
	ctx := context.Background()

	pod := testutil.CreateTestPod("dc1-pod1")
	pod.AllocatedLoopbackBlock = "10.0.0.0/30"
	pod.AllocatedIrbBlock = "172.16.0.0/24"
	require.NoError(t, setup.Repo.CreatePod(ctx, pod))

	spine := testutil.CreateTestDevice(pod.ID, "spine-01", 0, fabric.RoleSpine)
	spine.ASN = 65000
	leaf := testutil.CreateTestDevice(pod.ID, "leaf-01", 1, fabric.RoleLeaf)
	leaf.ASN = 65100
	require.NoError(t, setup.Repo.CreateDevices(ctx, []fabric.Device{spine, leaf}))

	require.NoError(t, setup.Repo.CreateLogicalInterfaces(ctx, []fabric.LogicalInterface{
		{ID: uuid.NewString(), DeviceID: spine.ID, Name: "lo0.0", IPAddress: "10.0.0.1/32"},
		{ID: uuid.NewString(), DeviceID: leaf.ID, Name: "lo0.0", IPAddress: "10.0.0.2/32"},
		{ID: uuid.NewString(), DeviceID: leaf.ID, Name: "irb.1", IPAddress: "172.16.0.1/24"},
	}))
}

func TestFabricHandler_ListPods(t *testing.T) {
	_, router := setupFabricHandler(t)

	req := httptest.NewRequest("GET", "/api/pods", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Pods  []map[string]interface{} `json:"pods"`
		Count int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "dc1-pod1", body.Pods[0]["name"])
}

func TestFabricHandler_GetPod(t *testing.T) {
	_, router := setupFabricHandler(t)

	req := httptest.NewRequest("GET", "/api/pods/dc1-pod1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Pod map[string]interface{} `json:"pod"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "10.0.0.0/30", body.Pod["allocated_loopback_block"])
}

func TestFabricHandler_GetPodNotFound(t *testing.T) {
	_, router := setupFabricHandler(t)

	req := httptest.NewRequest("GET", "/api/pods/missing", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestFabricHandler_ListPodDevices(t *testing.T) {
	_, router := setupFabricHandler(t)

	req := httptest.NewRequest("GET", "/api/pods/dc1-pod1/devices", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Devices []map[string]interface{} `json:"devices"`
		Count   int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "spine-01", body.Devices[0]["name"])
	assert.Equal(t, "leaf-01", body.Devices[1]["name"])
}

func TestFabricHandler_GetDeviceConfig(t *testing.T) {
	_, router := setupFabricHandler(t)

	req := httptest.NewRequest("GET", "/api/pods/dc1-pod1/devices/leaf-01/config", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Device string `json:"device"`
		Config string `json:"config"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "leaf-01", body.Device)
	assert.Contains(t, body.Config, "host-name leaf-01;")
	assert.Contains(t, body.Config, "autonomous-system 65100;")
}

func TestFabricHandler_GetDeviceConfigUnknownDevice(t *testing.T) {
	_, router := setupFabricHandler(t)

	req := httptest.NewRequest("GET", "/api/pods/dc1-pod1/devices/missing/config", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHealthHandler(t *testing.T) {
	_, router := setupFabricHandler(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status"`)
}
