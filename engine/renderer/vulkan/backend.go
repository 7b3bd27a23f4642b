package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
)

type VulkanRenderer struct {
	window                  metadata.WindowSurface
	FrameNumber             uint64
	context                 *VulkanContext
	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	inFrame bool
	draws   uint32
	debug   bool
}

func New(window metadata.WindowSurface) *VulkanRenderer {
	return &VulkanRenderer{
		window: window,
		context: &VulkanContext{
			Device:    &VulkanDevice{GraphicsQueueIndex: -1, PresentQueueIndex: -1},
			Resources: make(map[metadata.GPUHandle]*VulkanResource),
		},
		debug: true,
	}
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("GetInstanceProcAddress is nil")
		core.LogError(err.Error())
		return err
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return err
	}

	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("SD Engine"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, vr.window.GetRequiredExtensionNames()...)
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags |= 1
	}

	var validationLayers []string
	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		if hasInstanceLayer("VK_LAYER_KHRONOS_validation") {
			validationLayers = []string{"VK_LAYER_KHRONOS_validation"}
			core.LogInfo("Validation layers enabled.")
		} else {
			core.LogWarn("VK_LAYER_KHRONOS_validation not available, continuing without validation.")
		}
	}
	for _, ext := range requiredExtensions {
		core.LogDebug("Required extension: %s", ext)
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)
	createInfo.EnabledLayerCount = uint32(len(validationLayers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(validationLayers)

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &instance); res != vk.Success {
		err := fmt.Errorf("failed in creating the Vulkan Instance with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	vr.context.Instance = instance
	if err := vk.InitInstance(instance); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Vulkan Instance created.")

	if vr.debug {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(instance, &debugCreateInfo, nil, &dbg)); err != nil {
			core.LogError("vk.CreateDebugReportCallback failed with %s", err)
			return err
		}
		vr.context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	surface, err := vr.window.CreateSurface(instance)
	if err != nil {
		core.LogError("Vulkan surface creation failed: %s", err)
		return err
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vr.context); err != nil {
		return err
	}

	frame, err := newFrameSync(vr.context)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	vr.context.Frame = frame

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) Shutdown() error {
	if vr.context.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

		// Destroy in the opposite order of creation.
		for h, res := range vr.context.Resources {
			vr.destroyResource(res)
			delete(vr.context.Resources, h)
		}
		if vr.context.Frame != nil {
			vr.context.Frame.destroy(vr.context)
		}

		core.LogDebug("Destroying Vulkan device...")
		DeviceDestroy(vr.context)
	}

	if vr.context.Surface != vk.NullSurface {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.context.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
		vr.context.debugMessenger = vk.NullDebugReportCallback
	}

	if vr.context.Instance != nil {
		core.LogDebug("Destroying Vulkan instance...")
		vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
		vr.context.Instance = nil
	}
	return nil
}

func (vr *VulkanRenderer) Resized(width, height uint32) error {
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferSizeGeneration++

	core.LogInfo("Vulkan renderer backend->resized: w/h/gen: %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
	return nil
}

func (vr *VulkanRenderer) BeginFrame(deltaTime float64) error {
	if vr.inFrame {
		return fmt.Errorf("BeginFrame called twice without EndFrame")
	}

	if vr.context.FramebufferSizeGeneration != vr.context.FramebufferSizeLastGeneration {
		if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); !VulkanResultIsSuccess(res) {
			err := fmt.Errorf("vkDeviceWaitIdle failed: '%s'", VulkanResultString(res, true))
			core.LogError(err.Error())
			return err
		}
		vr.context.FramebufferWidth = vr.cachedFramebufferWidth
		vr.context.FramebufferHeight = vr.cachedFramebufferHeight
		vr.context.FramebufferSizeLastGeneration = vr.context.FramebufferSizeGeneration
	}

	frame := vr.context.Frame
	if err := frame.begin(vr.context); err != nil {
		core.LogError(err.Error())
		return err
	}

	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(vr.context.FramebufferWidth),
		Height:   float32(vr.context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{
			Width:  vr.context.FramebufferWidth,
			Height: vr.context.FramebufferHeight,
		},
	}
	vk.CmdSetViewport(frame.cmd, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(frame.cmd, 0, 1, []vk.Rect2D{scissor})

	vr.inFrame = true
	vr.draws = 0
	return nil
}

func (vr *VulkanRenderer) EndFrame(deltaTime float64) error {
	if !vr.inFrame {
		return fmt.Errorf("EndFrame called without BeginFrame")
	}
	vr.inFrame = false

	if err := vr.context.Frame.submit(vr.context); err != nil {
		core.LogError(err.Error())
		return err
	}
	vr.FrameNumber++
	return nil
}

func (vr *VulkanRenderer) CreateTexture(desc *metadata.TextureDesc) (metadata.GPUHandle, error) {
	layers := uint32(1)
	if desc.Cubemap {
		layers = 6
	}
	if uint32(len(desc.Layers)) != layers {
		return metadata.InvalidGPUHandle, fmt.Errorf("texture '%s' expects %d layers, got %d", desc.Name, layers, len(desc.Layers))
	}
	format, err := textureFormat(desc.ChannelCount)
	if err != nil {
		return metadata.InvalidGPUHandle, fmt.Errorf("texture '%s': %w", desc.Name, err)
	}

	layerSize := uint64(desc.Width) * uint64(desc.Height) * uint64(desc.ChannelCount)
	staging, stagingMemory, err := vr.createBuffer(layerSize*uint64(layers),
		vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return metadata.InvalidGPUHandle, err
	}
	defer func() {
		vk.DestroyBuffer(vr.context.Device.LogicalDevice, staging, vr.context.Allocator)
		vk.FreeMemory(vr.context.Device.LogicalDevice, stagingMemory, vr.context.Allocator)
	}()

	pixels := make([]byte, 0, layerSize*uint64(layers))
	for _, layer := range desc.Layers {
		pixels = append(pixels, layer...)
	}
	if err := vr.upload(stagingMemory, pixels); err != nil {
		return metadata.InvalidGPUHandle, err
	}

	image, memory, err := vr.createImage(desc.Width, desc.Height, layers, format,
		vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit, desc.Cubemap)
	if err != nil {
		return metadata.InvalidGPUHandle, err
	}
	res := &VulkanResource{
		Type:   metadata.GPUResourceTexture,
		Name:   desc.Name,
		Width:  desc.Width,
		Height: desc.Height,
		Image:  image,
		Memory: memory,
	}
	if desc.Cubemap {
		res.Type = metadata.GPUResourceCubemap
	}

	regions := make([]vk.BufferImageCopy, layers)
	for i := uint32(0); i < layers; i++ {
		regions[i] = vk.BufferImageCopy{
			BufferOffset: vk.DeviceSize(uint64(i) * layerSize),
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseArrayLayer: i,
				LayerCount:     1,
			},
			ImageExtent: vk.Extent3D{Width: desc.Width, Height: desc.Height, Depth: 1},
		}
	}
	err = oneShot(vr.context, func(cmd vk.CommandBuffer) {
		transition(cmd, image, layers, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
		vk.CmdCopyBufferToImage(cmd, staging, image, vk.ImageLayoutTransferDstOptimal, layers, regions)
		transition(cmd, image, layers, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	})
	if err != nil {
		vr.destroyResource(res)
		return metadata.InvalidGPUHandle, err
	}

	view, err := vr.createImageView(image, format, vk.ImageAspectColorBit, layers, desc.Cubemap)
	if err != nil {
		vr.destroyResource(res)
		return metadata.InvalidGPUHandle, err
	}
	res.View = view
	return vr.context.track(res), nil
}

func (vr *VulkanRenderer) CreateShader(desc *metadata.ShaderDesc) (metadata.GPUHandle, error) {
	if len(desc.Code) == 0 {
		return metadata.InvalidGPUHandle, fmt.Errorf("shader '%s' has no code", desc.Name)
	}
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(desc.Code) * 4),
		PCode:    desc.Code,
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(vr.context.Device.LogicalDevice, &createInfo, vr.context.Allocator, &module); res != vk.Success {
		err := fmt.Errorf("failed to create shader module '%s': %s", desc.Name, VulkanResultString(res, true))
		core.LogError(err.Error())
		return metadata.InvalidGPUHandle, err
	}
	return vr.context.track(&VulkanResource{
		Type:   metadata.GPUResourceShader,
		Name:   desc.Name,
		Shader: module,
	}), nil
}

func (vr *VulkanRenderer) CreateBuffer(desc *metadata.BufferDesc) (metadata.GPUHandle, error) {
	usage := vk.BufferUsageVertexBufferBit
	switch desc.Usage {
	case metadata.BufferUsageIndex:
		usage = vk.BufferUsageIndexBufferBit
	case metadata.BufferUsageUniform:
		usage = vk.BufferUsageUniformBufferBit
	}
	size := uint64(len(desc.Data))
	if size == 0 {
		size = 1
	}
	buffer, memory, err := vr.createBuffer(size, usage,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return metadata.InvalidGPUHandle, err
	}
	if err := vr.upload(memory, desc.Data); err != nil {
		vk.DestroyBuffer(vr.context.Device.LogicalDevice, buffer, vr.context.Allocator)
		vk.FreeMemory(vr.context.Device.LogicalDevice, memory, vr.context.Allocator)
		return metadata.InvalidGPUHandle, err
	}
	return vr.context.track(&VulkanResource{
		Type:   metadata.GPUResourceBuffer,
		Name:   desc.Name,
		Buffer: buffer,
		Memory: memory,
	}), nil
}

func (vr *VulkanRenderer) CreateRenderTarget(desc *metadata.RenderTargetDesc) (metadata.GPUHandle, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return metadata.InvalidGPUHandle, fmt.Errorf("render target '%s' has zero size", desc.Name)
	}
	format := vk.FormatR8g8b8a8Unorm
	usage := vk.ImageUsageColorAttachmentBit | vk.ImageUsageSampledBit
	aspect := vk.ImageAspectColorBit
	if desc.DepthOnly {
		format = vk.FormatD32Sfloat
		usage = vk.ImageUsageDepthStencilAttachmentBit | vk.ImageUsageSampledBit
		aspect = vk.ImageAspectDepthBit
	}
	image, memory, err := vr.createImage(desc.Width, desc.Height, 1, format, usage, false)
	if err != nil {
		return metadata.InvalidGPUHandle, err
	}
	res := &VulkanResource{
		Type:   metadata.GPUResourceRenderTarget,
		Name:   desc.Name,
		Width:  desc.Width,
		Height: desc.Height,
		Image:  image,
		Memory: memory,
	}
	view, err := vr.createImageView(image, format, aspect, 1, false)
	if err != nil {
		vr.destroyResource(res)
		return metadata.InvalidGPUHandle, err
	}
	res.View = view
	return vr.context.track(res), nil
}

func (vr *VulkanRenderer) BindRenderTarget(target metadata.GPUHandle) error {
	if target.IsValid() {
		res, ok := vr.context.Resources[target]
		if !ok || res.Type != metadata.GPUResourceRenderTarget {
			return fmt.Errorf("%s is not a render target", target)
		}
	}
	vr.context.BoundTarget = target
	return nil
}

// Draw validates the command against live resources. Pipeline recording is
// owned by the material pipelines, which are not part of this backend yet.
func (vr *VulkanRenderer) Draw(cmd *metadata.DrawCommand) error {
	if !vr.inFrame {
		return fmt.Errorf("draw outside of a frame")
	}
	if cmd.Shader.IsValid() {
		if _, ok := vr.context.Resources[cmd.Shader]; !ok {
			return fmt.Errorf("draw with unknown shader %s", cmd.Shader)
		}
	}
	for _, t := range cmd.Textures {
		if _, ok := vr.context.Resources[t]; !ok {
			return fmt.Errorf("draw with unknown texture %s", t)
		}
	}
	vr.draws++
	return nil
}

func (vr *VulkanRenderer) Destroy(handle metadata.GPUHandle) error {
	res, ok := vr.context.Resources[handle]
	if !ok {
		return fmt.Errorf("destroy of unknown resource %s", handle)
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	vr.destroyResource(res)
	delete(vr.context.Resources, handle)
	return nil
}

func hasInstanceLayer(name string) bool {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return false
	}
	layers := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, layers); res != vk.Success {
		return false
	}
	for i := range layers {
		layers[i].Deref()
		end := FindFirstZeroInByteArray(layers[i].LayerName[:])
		if string(layers[i].LayerName[:end]) == name {
			return true
		}
	}
	return false
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
