package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/servak/fabric-manager/internal/clos"
	"github.com/servak/fabric-manager/internal/domain/fabric"
	"github.com/servak/fabric-manager/pkg/logger"
)

// FabricHandler serves pods, devices and rendered configurations
type FabricHandler struct {
	repo     fabric.Repository
	builder  *clos.Builder
	renderer clos.Renderer
	logger   *logger.Logger
}

func NewFabricHandler(repo fabric.Repository, builder *clos.Builder, renderer clos.Renderer, logger *logger.Logger) *FabricHandler {
	return &FabricHandler{
		repo:     repo,
		builder:  builder,
		renderer: renderer,
		logger:   logger,
	}
}

func (h *FabricHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-pods",
		Method:      http.MethodGet,
		Path:        "/api/pods",
		Summary:     "List pods",
		Tags:        []string{"pods"},
	}, h.ListPods)

	huma.Register(api, huma.Operation{
		OperationID: "get-pod",
		Method:      http.MethodGet,
		Path:        "/api/pods/{podName}",
		Summary:     "Get a pod with its allocated blocks",
		Tags:        []string{"pods"},
	}, h.GetPod)

	huma.Register(api, huma.Operation{
		OperationID: "list-pod-devices",
		Method:      http.MethodGet,
		Path:        "/api/pods/{podName}/devices",
		Summary:     "List a pod's devices in topology order",
		Tags:        []string{"devices"},
	}, h.ListPodDevices)

	huma.Register(api, huma.Operation{
		OperationID: "get-device-config",
		Method:      http.MethodGet,
		Path:        "/api/pods/{podName}/devices/{deviceName}/config",
		Summary:     "Render a device's configuration",
		Tags:        []string{"devices"},
	}, h.GetDeviceConfig)
}

type ListPodsOutput struct {
	Body struct {
		Pods  []fabric.Pod `json:"pods"`
		Count int          `json:"count"`
	}
}

func (h *FabricHandler) ListPods(ctx context.Context, input *struct{}) (*ListPodsOutput, error) {
	pods, err := h.repo.ListPods(ctx)
	if err != nil {
		h.logger.Error("failed to list pods", "error", err)
		return nil, huma.Error500InternalServerError("failed to list pods")
	}

	resp := &ListPodsOutput{}
	resp.Body.Pods = pods
	resp.Body.Count = len(pods)
	return resp, nil
}

type GetPodInput struct {
	PodName string `path:"podName" doc:"Pod name"`
}

type GetPodOutput struct {
	Body struct {
		Pod fabric.Pod `json:"pod"`
	}
}

func (h *FabricHandler) GetPod(ctx context.Context, input *GetPodInput) (*GetPodOutput, error) {
	pod, err := h.getPod(ctx, input.PodName)
	if err != nil {
		return nil, err
	}

	resp := &GetPodOutput{}
	resp.Body.Pod = *pod
	return resp, nil
}

type ListPodDevicesInput struct {
	PodName string `path:"podName" doc:"Pod name"`
}

type ListPodDevicesOutput struct {
	Body struct {
		Devices []fabric.Device `json:"devices"`
		Count   int             `json:"count"`
	}
}

func (h *FabricHandler) ListPodDevices(ctx context.Context, input *ListPodDevicesInput) (*ListPodDevicesOutput, error) {
	pod, err := h.getPod(ctx, input.PodName)
	if err != nil {
		return nil, err
	}

	devices, err := h.repo.GetPodDevices(ctx, pod.ID)
	if err != nil {
		h.logger.Error("failed to list devices", "pod", input.PodName, "error", err)
		return nil, huma.Error500InternalServerError("failed to list devices")
	}

	resp := &ListPodDevicesOutput{}
	resp.Body.Devices = devices
	resp.Body.Count = len(devices)
	return resp, nil
}

type GetDeviceConfigInput struct {
	PodName    string `path:"podName" doc:"Pod name"`
	DeviceName string `path:"deviceName" doc:"Device name"`
}

type GetDeviceConfigOutput struct {
	Body struct {
		Device string `json:"device"`
		Config string `json:"config"`
	}
}

func (h *FabricHandler) GetDeviceConfig(ctx context.Context, input *GetDeviceConfigInput) (*GetDeviceConfigOutput, error) {
	pod, err := h.getPod(ctx, input.PodName)
	if err != nil {
		return nil, err
	}

	view, err := h.builder.PodView(ctx, pod)
	if err != nil {
		h.logger.Error("failed to assemble pod view", "pod", input.PodName, "error", err)
		return nil, huma.Error500InternalServerError("failed to assemble pod view")
	}

	for _, dv := range view.Devices {
		if dv.Device.Name != input.DeviceName {
			continue
		}
		config, err := h.renderer.RenderDevice(dv)
		if err != nil {
			h.logger.Error("failed to render device", "device", input.DeviceName, "error", err)
			return nil, huma.Error500InternalServerError("failed to render device")
		}

		resp := &GetDeviceConfigOutput{}
		resp.Body.Device = input.DeviceName
		resp.Body.Config = string(config)
		return resp, nil
	}

	return nil, huma.Error404NotFound("device " + input.DeviceName + " not found in pod " + input.PodName)
}

func (h *FabricHandler) getPod(ctx context.Context, name string) (*fabric.Pod, error) {
	pod, err := h.repo.GetPodByName(ctx, name)
	if err != nil {
		if errors.Is(err, fabric.ErrPodNotFound) {
			return nil, huma.Error404NotFound("pod " + name + " not found")
		}
		h.logger.Error("failed to get pod", "pod", name, "error", err)
		return nil, huma.Error500InternalServerError("failed to get pod")
	}
	return pod, nil
}
