package common

/*
#include <stdint.h>

typedef struct GLFWwindow GLFWwindow;

// Compiled into github.com/vulkan-go/glfw from glfw/src/vulkan.c. Vulkan handles are passed opaque.
const char** glfwGetRequiredInstanceExtensions(uint32_t* count);
int32_t glfwCreateWindowSurface(void* instance, GLFWwindow* window, const void* allocator, uint64_t* surface);
*/
import "C"
import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/vulkan-go/glfw/v3.3/glfw"

	"GPU_present_chain/vkd"
)

func glfwRequiredInstanceExtensions() []string {
	var count C.uint32_t
	names := C.glfwGetRequiredInstanceExtensions(&count)
	if names == nil || count == 0 {
		return nil
	}
	extensions := make([]string, 0, int(count))
	for _, name := range unsafe.Slice(names, int(count)) {
		extensions = append(extensions, C.GoString(name))
	}
	return extensions
}

func glfwCreateWindowSurface(instance vk.Instance, win *glfw.Window) (vk.Surface, error) {
	var surface C.uint64_t
	res := C.glfwCreateWindowSurface(
		unsafe.Pointer(instance),
		(*C.GLFWwindow)(unsafe.Pointer(win.GLFWWindow())),
		nil,
		&surface,
	)
	if err := vkd.Check(vk.Result(res), "glfwCreateWindowSurface"); err != nil {
		return nil, err
	}
	return vk.SurfaceFromPointer(uintptr(surface)), nil
}
