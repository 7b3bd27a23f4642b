package vulkan

import (
	vk "github.com/goki/vulkan"
)

type resultText struct {
	name     string
	extended string
}

var resultTexts = map[vk.Result]resultText{
	vk.Success:                   {"VK_SUCCESS", "Command successfully completed"},
	vk.NotReady:                  {"VK_NOT_READY", "A fence or query has not yet completed"},
	vk.Timeout:                   {"VK_TIMEOUT", "A wait operation has not completed in the specified time"},
	vk.Incomplete:                {"VK_INCOMPLETE", "A return array was too small for the result"},
	vk.Suboptimal:                {"VK_SUBOPTIMAL_KHR", "A swapchain no longer matches the surface properties exactly"},
	vk.ErrorOutOfHostMemory:      {"VK_ERROR_OUT_OF_HOST_MEMORY", "A host memory allocation has failed."},
	vk.ErrorOutOfDeviceMemory:    {"VK_ERROR_OUT_OF_DEVICE_MEMORY", "A device memory allocation has failed."},
	vk.ErrorInitializationFailed: {"VK_ERROR_INITIALIZATION_FAILED", "Initialization of an object could not be completed."},
	vk.ErrorDeviceLost:           {"VK_ERROR_DEVICE_LOST", "The logical or physical device has been lost."},
	vk.ErrorMemoryMapFailed:      {"VK_ERROR_MEMORY_MAP_FAILED", "Mapping of a memory object has failed."},
	vk.ErrorLayerNotPresent:      {"VK_ERROR_LAYER_NOT_PRESENT", "A requested layer is not present or could not be loaded."},
	vk.ErrorExtensionNotPresent:  {"VK_ERROR_EXTENSION_NOT_PRESENT", "A requested extension is not supported."},
	vk.ErrorFeatureNotPresent:    {"VK_ERROR_FEATURE_NOT_PRESENT", "A requested feature is not supported."},
	vk.ErrorIncompatibleDriver:   {"VK_ERROR_INCOMPATIBLE_DRIVER", "The requested version of Vulkan is not supported by the driver."},
	vk.ErrorTooManyObjects:       {"VK_ERROR_TOO_MANY_OBJECTS", "Too many objects of the type have already been created."},
	vk.ErrorFormatNotSupported:   {"VK_ERROR_FORMAT_NOT_SUPPORTED", "A requested format is not supported on this device."},
	vk.ErrorSurfaceLost:          {"VK_ERROR_SURFACE_LOST_KHR", "A surface is no longer available."},
	vk.ErrorOutOfDate:            {"VK_ERROR_OUT_OF_DATE_KHR", "A surface has changed and is no longer compatible with the swapchain."},
	vk.ErrorUnknown:              {"VK_ERROR_UNKNOWN", "An unknown error has occurred."},
}

func VulkanResultString(result vk.Result, getExtended bool) string {
	text, ok := resultTexts[result]
	if !ok {
		return "VK_ERROR_UNKNOWN"
	}
	if getExtended {
		return text.name + " " + text.extended
	}
	return text.name
}

func VulkanResultIsSuccess(result vk.Result) bool {
	return result >= vk.Success
}

var end = "\x00"
var endChar byte = '\x00'

func VulkanSafeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func VulkanSafeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = VulkanSafeString(list[i])
	}
	return out
}

// FindFirstZeroInByteArray returns the length of a NUL-terminated byte array.
func FindFirstZeroInByteArray(arr []byte) int {
	for i, b := range arr {
		if b == 0 {
			return i
		}
	}
	return len(arr)
}
