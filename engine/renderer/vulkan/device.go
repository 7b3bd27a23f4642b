package vulkan

import (
	"fmt"
	"runtime"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/sdengine/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	GraphicsQueueIndex int32
	PresentQueueIndex  int32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties
}

type VulkanPhysicalDeviceRequirements struct {
	Graphics             bool
	Present              bool
	DeviceExtensionNames []string
	SamplerAnisotropy    bool
	DiscreteGPU          bool
}

type VulkanPhysicalDeviceQueueFamilyInfo struct {
	GraphicsFamilyIndex int32
	PresentFamilyIndex  int32
}

func DeviceCreate(context *VulkanContext) error {
	if err := SelectPhysicalDevice(context); err != nil {
		return err
	}

	core.LogInfo("Creating logical device...")

	// NOTE: Do not create additional queues for shared indices.
	indices := []uint32{uint32(context.Device.GraphicsQueueIndex)}
	if context.Device.PresentQueueIndex != context.Device.GraphicsQueueIndex {
		indices = append(indices, uint32(context.Device.PresentQueueIndex))
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: indices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	deviceFeatures := vk.PhysicalDeviceFeatures{
		SamplerAnisotropy: context.Device.Features.SamplerAnisotropy,
	}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	if hasDeviceExtension(context.Device.PhysicalDevice, "VK_KHR_portability_subset") {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
	}

	var device vk.Device
	if res := vk.CreateDevice(context.Device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &device); res != vk.Success {
		err := fmt.Errorf("failed to create logical device: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	context.Device.LogicalDevice = device
	core.LogInfo("Logical device created.")

	var graphicsQueue, presentQueue vk.Queue
	vk.GetDeviceQueue(device, uint32(context.Device.GraphicsQueueIndex), 0, &graphicsQueue)
	vk.GetDeviceQueue(device, uint32(context.Device.PresentQueueIndex), 0, &presentQueue)
	context.Device.GraphicsQueue = graphicsQueue
	context.Device.PresentQueue = presentQueue
	core.LogInfo("Queues obtained.")

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(device, &poolCreateInfo, context.Allocator, &pool); res != vk.Success {
		err := fmt.Errorf("failed to create graphics command pool: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	context.Device.GraphicsCommandPool = pool
	core.LogInfo("Graphics command pool created.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	context.Device.GraphicsQueue = nil
	context.Device.PresentQueue = nil

	core.LogInfo("Destroying command pools...")
	if context.Device.GraphicsCommandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(context.Device.LogicalDevice, context.Device.GraphicsCommandPool, context.Allocator)
		context.Device.GraphicsCommandPool = vk.NullCommandPool
	}

	core.LogInfo("Destroying logical device...")
	if context.Device.LogicalDevice != nil {
		vk.DestroyDevice(context.Device.LogicalDevice, context.Allocator)
		context.Device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	context.Device.PhysicalDevice = nil
	context.Device.GraphicsQueueIndex = -1
	context.Device.PresentQueueIndex = -1
}

func SelectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		return fmt.Errorf("failed to enumerate physical devices: %s", VulkanResultString(res, false))
	}
	if physicalDeviceCount == 0 {
		err := fmt.Errorf("no devices which support Vulkan were found")
		core.LogError(err.Error())
		return err
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		return fmt.Errorf("failed to enumerate physical devices: %s", VulkanResultString(res, false))
	}

	requirements := VulkanPhysicalDeviceRequirements{
		Graphics:             true,
		Present:              true,
		SamplerAnisotropy:    true,
		DiscreteGPU:          runtime.GOOS != "darwin",
		DeviceExtensionNames: []string{vk.KhrSwapchainExtensionName},
	}

	for _, candidate := range physicalDevices {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(candidate, &properties)
		properties.Deref()

		var features vk.PhysicalDeviceFeatures
		vk.GetPhysicalDeviceFeatures(candidate, &features)
		features.Deref()

		var memory vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(candidate, &memory)
		memory.Deref()

		queueInfo, ok := PhysicalDeviceMeetsRequirements(candidate, context.Surface, &properties, &features, &requirements)
		if !ok {
			continue
		}

		name := vk.ToString(properties.DeviceName[:])
		core.LogInfo("Selected device: '%s'.", name)
		core.LogInfo(
			"Vulkan API version: %d.%d.%d",
			vk.Version(properties.ApiVersion).Major(),
			vk.Version(properties.ApiVersion).Minor(),
			vk.Version(properties.ApiVersion).Patch(),
		)

		context.Device.PhysicalDevice = candidate
		context.Device.GraphicsQueueIndex = queueInfo.GraphicsFamilyIndex
		context.Device.PresentQueueIndex = queueInfo.PresentFamilyIndex
		context.Device.Properties = properties
		context.Device.Features = features
		context.Device.Memory = memory
		core.LogInfo("Physical device selected.")
		return nil
	}

	err := fmt.Errorf("no physical devices were found which meet the requirements")
	core.LogError(err.Error())
	return err
}

func PhysicalDeviceMeetsRequirements(
	device vk.PhysicalDevice,
	surface vk.Surface,
	properties *vk.PhysicalDeviceProperties,
	features *vk.PhysicalDeviceFeatures,
	requirements *VulkanPhysicalDeviceRequirements,
) (VulkanPhysicalDeviceQueueFamilyInfo, bool) {
	info := VulkanPhysicalDeviceQueueFamilyInfo{GraphicsFamilyIndex: -1, PresentFamilyIndex: -1}

	if requirements.DiscreteGPU && properties.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu {
		core.LogInfo("Device is not a discrete GPU, and one is required. Skipping.")
		return info, false
	}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	for i := range queueFamilies {
		queueFamilies[i].Deref()
		if info.GraphicsFamilyIndex < 0 && vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueGraphicsBit != 0 {
			info.GraphicsFamilyIndex = int32(i)
		}
		var supportsPresent vk.Bool32
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supportsPresent); res != vk.Success {
			return info, false
		}
		if info.PresentFamilyIndex < 0 && supportsPresent == vk.True {
			info.PresentFamilyIndex = int32(i)
		}
	}

	if requirements.Graphics && info.GraphicsFamilyIndex < 0 {
		return info, false
	}
	if requirements.Present && info.PresentFamilyIndex < 0 {
		return info, false
	}
	core.LogDebug("Graphics Family Index: %d", info.GraphicsFamilyIndex)
	core.LogDebug("Present Family Index:  %d", info.PresentFamilyIndex)

	for _, ext := range requirements.DeviceExtensionNames {
		if !hasDeviceExtension(device, ext) {
			core.LogInfo("Required extension not found: '%s', skipping device.", ext)
			return info, false
		}
	}

	if requirements.SamplerAnisotropy && features.SamplerAnisotropy == vk.False {
		core.LogInfo("Device does not support samplerAnisotropy, skipping.")
		return info, false
	}
	return info, true
}

func hasDeviceExtension(device vk.PhysicalDevice, name string) bool {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, nil); res != vk.Success || count == 0 {
		return false
	}
	available := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, available); res != vk.Success {
		return false
	}
	for i := range available {
		available[i].Deref()
		end := FindFirstZeroInByteArray(available[i].ExtensionName[:])
		if string(available[i].ExtensionName[:end]) == name {
			return true
		}
	}
	return false
}
