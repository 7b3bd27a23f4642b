package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
)

type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32
	// Bumped on every resize; compared against FramebufferSizeLastGeneration
	// at the start of a frame.
	FramebufferSizeGeneration     uint64
	FramebufferSizeLastGeneration uint64

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	// Submitted in EndFrame and waited on in the next BeginFrame.
	Frame *frameSync

	// Every object created through the backend, by handle.
	Resources map[metadata.GPUHandle]*VulkanResource
	nextID    metadata.GPUHandle
	// Render target currently bound; InvalidGPUHandle is the back buffer.
	BoundTarget metadata.GPUHandle
}

func (vc *VulkanContext) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (uint32(memoryProperties.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}

func (vc *VulkanContext) track(res *VulkanResource) metadata.GPUHandle {
	vc.nextID++
	vc.Resources[vc.nextID] = res
	return vc.nextID
}
