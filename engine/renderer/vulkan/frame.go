package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
)

// frameSync is the primary command buffer a frame is recorded into and the
// fence the GPU signals once it has consumed that buffer.
type frameSync struct {
	cmd   vk.CommandBuffer
	fence vk.Fence
	// submitted and not waited on yet
	inFlight bool
}

func newFrameSync(vc *VulkanContext) (*frameSync, error) {
	cmd, err := allocateCommandBuffer(vc)
	if err != nil {
		return nil, err
	}
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	var fence vk.Fence
	if res := vk.CreateFence(vc.Device.LogicalDevice, &info, vc.Allocator, &fence); res != vk.Success {
		freeCommandBuffer(vc, cmd)
		return nil, fmt.Errorf("failed to create frame fence: %s", VulkanResultString(res, false))
	}
	return &frameSync{cmd: cmd, fence: fence}, nil
}

// begin waits for the previous submission and starts recording.
func (f *frameSync) begin(vc *VulkanContext) error {
	if f.inFlight {
		device := vc.Device.LogicalDevice
		if res := vk.WaitForFences(device, 1, []vk.Fence{f.fence}, vk.True, math.MaxUint64); res != vk.Success {
			return fmt.Errorf("frame fence wait failed: %s", VulkanResultString(res, true))
		}
		if res := vk.ResetFences(device, 1, []vk.Fence{f.fence}); res != vk.Success {
			return fmt.Errorf("failed to reset frame fence: %s", VulkanResultString(res, false))
		}
		f.inFlight = false
	}
	return beginCommandBuffer(f.cmd)
}

func (f *frameSync) submit(vc *VulkanContext) error {
	if err := submitCommandBuffer(vc, f.cmd, f.fence); err != nil {
		return err
	}
	f.inFlight = true
	return nil
}

func (f *frameSync) destroy(vc *VulkanContext) {
	if f.fence != vk.NullFence {
		vk.DestroyFence(vc.Device.LogicalDevice, f.fence, vc.Allocator)
		f.fence = vk.NullFence
	}
	if f.cmd != nil {
		freeCommandBuffer(vc, f.cmd)
		f.cmd = nil
	}
	f.inFlight = false
}

// oneShot records commands into a temporary buffer and blocks until the
// graphics queue has executed them. Used for uploads.
func oneShot(vc *VulkanContext, record func(cmd vk.CommandBuffer)) error {
	cmd, err := allocateCommandBuffer(vc)
	if err != nil {
		return err
	}
	defer freeCommandBuffer(vc, cmd)

	if err := beginCommandBuffer(cmd); err != nil {
		return err
	}
	record(cmd)
	if err := submitCommandBuffer(vc, cmd, vk.NullFence); err != nil {
		return err
	}
	if res := vk.QueueWaitIdle(vc.Device.GraphicsQueue); res != vk.Success {
		return fmt.Errorf("graphics queue wait failed: %s", VulkanResultString(res, false))
	}
	return nil
}

func allocateCommandBuffer(vc *VulkanContext) (vk.CommandBuffer, error) {
	info := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        vc.Device.GraphicsCommandPool,
		CommandBufferCount: 1,
		Level:              vk.CommandBufferLevelPrimary,
	}
	handles := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(vc.Device.LogicalDevice, &info, handles); res != vk.Success {
		return nil, fmt.Errorf("failed to allocate command buffer: %s", VulkanResultString(res, false))
	}
	return handles[0], nil
}

func freeCommandBuffer(vc *VulkanContext, cmd vk.CommandBuffer) {
	vk.FreeCommandBuffers(vc.Device.LogicalDevice, vc.Device.GraphicsCommandPool, 1, []vk.CommandBuffer{cmd})
}

func beginCommandBuffer(cmd vk.CommandBuffer) error {
	info := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(cmd, &info); res != vk.Success {
		return fmt.Errorf("failed to begin command buffer: %s", VulkanResultString(res, false))
	}
	return nil
}

func submitCommandBuffer(vc *VulkanContext, cmd vk.CommandBuffer, fence vk.Fence) error {
	if res := vk.EndCommandBuffer(cmd); res != vk.Success {
		return fmt.Errorf("failed to end command buffer: %s", VulkanResultString(res, false))
	}
	submit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}
	if res := vk.QueueSubmit(vc.Device.GraphicsQueue, 1, []vk.SubmitInfo{submit}, fence); res != vk.Success {
		return fmt.Errorf("vkQueueSubmit failed: %s", VulkanResultString(res, true))
	}
	return nil
}
