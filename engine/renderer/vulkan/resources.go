package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/sdengine/engine/core"
	"github.com/spaghettifunk/sdengine/engine/renderer/metadata"
)

/**
 * @brief A GPU object created through the backend. Only the fields matching
 * Type are populated.
 */
type VulkanResource struct {
	Type   metadata.GPUResourceType
	Name   string
	Width  uint32
	Height uint32

	Buffer vk.Buffer
	Image  vk.Image
	View   vk.ImageView
	Memory vk.DeviceMemory
	Shader vk.ShaderModule
}

func (vr *VulkanRenderer) createBuffer(size uint64, usage vk.BufferUsageFlagBits, properties vk.MemoryPropertyFlagBits) (vk.Buffer, vk.DeviceMemory, error) {
	device := vr.context.Device.LogicalDevice

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	var buffer vk.Buffer
	if res := vk.CreateBuffer(device, &bufferInfo, vr.context.Allocator, &buffer); res != vk.Success {
		return vk.NullBuffer, vk.NullDeviceMemory, fmt.Errorf("vkCreateBuffer failed: %s", VulkanResultString(res, true))
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, buffer, &requirements)
	requirements.Deref()

	memory, err := vr.allocate(requirements, properties)
	if err != nil {
		vk.DestroyBuffer(device, buffer, vr.context.Allocator)
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}
	if res := vk.BindBufferMemory(device, buffer, memory, 0); res != vk.Success {
		vk.FreeMemory(device, memory, vr.context.Allocator)
		vk.DestroyBuffer(device, buffer, vr.context.Allocator)
		return vk.NullBuffer, vk.NullDeviceMemory, fmt.Errorf("vkBindBufferMemory failed: %s", VulkanResultString(res, true))
	}
	return buffer, memory, nil
}

func (vr *VulkanRenderer) allocate(requirements vk.MemoryRequirements, properties vk.MemoryPropertyFlagBits) (vk.DeviceMemory, error) {
	index := vr.context.FindMemoryIndex(requirements.MemoryTypeBits, uint32(properties))
	if index < 0 {
		return vk.NullDeviceMemory, fmt.Errorf("required memory type not found")
	}
	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(index),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(vr.context.Device.LogicalDevice, &allocateInfo, vr.context.Allocator, &memory); res != vk.Success {
		return vk.NullDeviceMemory, fmt.Errorf("vkAllocateMemory failed: %s", VulkanResultString(res, true))
	}
	return memory, nil
}

func (vr *VulkanRenderer) upload(memory vk.DeviceMemory, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var ptr unsafe.Pointer
	if res := vk.MapMemory(vr.context.Device.LogicalDevice, memory, 0, vk.DeviceSize(len(data)), 0, &ptr); res != vk.Success {
		return fmt.Errorf("vkMapMemory failed: %s", VulkanResultString(res, true))
	}
	vk.Memcopy(ptr, data)
	vk.UnmapMemory(vr.context.Device.LogicalDevice, memory)
	return nil
}

func (vr *VulkanRenderer) createImage(width, height, layers uint32, format vk.Format, usage vk.ImageUsageFlagBits, cubemap bool) (vk.Image, vk.DeviceMemory, error) {
	device := vr.context.Device.LogicalDevice

	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   layers,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	if cubemap {
		imageInfo.Flags = vk.ImageCreateFlags(vk.ImageCreateCubeCompatibleBit)
	}

	var image vk.Image
	if res := vk.CreateImage(device, &imageInfo, vr.context.Allocator, &image); res != vk.Success {
		return vk.NullImage, vk.NullDeviceMemory, fmt.Errorf("vkCreateImage failed: %s", VulkanResultString(res, true))
	}

	var requirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, image, &requirements)
	requirements.Deref()

	memory, err := vr.allocate(requirements, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		vk.DestroyImage(device, image, vr.context.Allocator)
		return vk.NullImage, vk.NullDeviceMemory, err
	}
	if res := vk.BindImageMemory(device, image, memory, 0); res != vk.Success {
		vk.FreeMemory(device, memory, vr.context.Allocator)
		vk.DestroyImage(device, image, vr.context.Allocator)
		return vk.NullImage, vk.NullDeviceMemory, fmt.Errorf("vkBindImageMemory failed: %s", VulkanResultString(res, true))
	}
	return image, memory, nil
}

func (vr *VulkanRenderer) createImageView(image vk.Image, format vk.Format, aspect vk.ImageAspectFlagBits, layers uint32, cubemap bool) (vk.ImageView, error) {
	viewType := vk.ImageViewType2d
	if cubemap {
		viewType = vk.ImageViewTypeCube
	}
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: viewType,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(aspect),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     layers,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(vr.context.Device.LogicalDevice, &viewInfo, vr.context.Allocator, &view); res != vk.Success {
		return vk.NullImageView, fmt.Errorf("vkCreateImageView failed: %s", VulkanResultString(res, true))
	}
	return view, nil
}

// transition records a layout change for every layer of image.
func transition(cmd vk.CommandBuffer, image vk.Image, layers uint32, from, to vk.ImageLayout) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           from,
		NewLayout:           to,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: layers,
		},
	}

	var srcStage, dstStage vk.PipelineStageFlagBits
	if from == vk.ImageLayoutUndefined && to == vk.ImageLayoutTransferDstOptimal {
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageTopOfPipeBit
		dstStage = vk.PipelineStageTransferBit
	} else {
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageTransferBit
		dstStage = vk.PipelineStageFragmentShaderBit
	}

	vk.CmdPipelineBarrier(cmd,
		vk.PipelineStageFlags(srcStage), vk.PipelineStageFlags(dstStage),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func (vr *VulkanRenderer) destroyResource(res *VulkanResource) {
	device := vr.context.Device.LogicalDevice
	alloc := vr.context.Allocator
	switch res.Type {
	case metadata.GPUResourceShader:
		vk.DestroyShaderModule(device, res.Shader, alloc)
	case metadata.GPUResourceBuffer:
		vk.DestroyBuffer(device, res.Buffer, alloc)
	default:
		if res.View != vk.NullImageView {
			vk.DestroyImageView(device, res.View, alloc)
		}
		vk.DestroyImage(device, res.Image, alloc)
	}
	if res.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(device, res.Memory, alloc)
	}
	core.LogDebug("destroyed %s '%s'", res.Type, res.Name)
}

func textureFormat(channels uint8) (vk.Format, error) {
	switch channels {
	case 1:
		return vk.FormatR8Unorm, nil
	case 2:
		return vk.FormatR8g8Unorm, nil
	case 4:
		return vk.FormatR8g8b8a8Unorm, nil
	}
	return vk.FormatUndefined, fmt.Errorf("unsupported channel count %d", channels)
}
