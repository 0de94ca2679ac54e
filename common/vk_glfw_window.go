package common

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/vulkan-go/glfw/v3.3/glfw"
)

// GlfwWindow is the GLFW backed Platform. GLFW requires all calls to happen on the main thread.
type GlfwWindow struct {
	Win        *glfw.Window
	extensions []string
	state      WindowState
}

var _ Platform = (*GlfwWindow)(nil)

func NewGlfwWindow(title string, w int, h int) (*GlfwWindow, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "initialize GLFW")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("GLFW reports no Vulkan support")
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(w, h, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create GLFW window")
	}
	window := &GlfwWindow{Win: win}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, _ int, _ int) {
		window.state.Resized = true
	})
	win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		window.state.Minimized = iconified
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			window.state.Close = true
		}
	})
	extensions, err := surfaceExtensions(glfwRequiredInstanceExtensions())
	if err == nil {
		err = InitDefaultVulkan()
	}
	if err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, err
	}
	window.extensions = extensions
	log.Printf("Created GLFW window for use with Vulkan. Title: \"%s\", Width: %d, Height: %d", title, w, h)
	return window, nil
}

func (w *GlfwWindow) Surface(instance vk.Instance) (vk.Surface, error) {
	surface, err := glfwCreateWindowSurface(instance, w.Win)
	if err != nil {
		return nil, errors.Wrap(err, "create GLFW window's Vulkan-surface")
	}
	return surface, nil
}

func (w *GlfwWindow) FramebufferSize() (int, int) {
	return w.Win.GetFramebufferSize()
}

func (w *GlfwWindow) RequiredInstanceExtensions() []string {
	return w.extensions
}

func (w *GlfwWindow) Poll() WindowState {
	glfw.PollEvents()
	if w.Win.ShouldClose() {
		w.state.Close = true
	}
	st := w.state
	w.state.Resized = false
	return st
}

func (w *GlfwWindow) WaitEvents() {
	glfw.WaitEvents()
}

func (w *GlfwWindow) Destroy() {
	w.Win.Destroy()
	glfw.Terminate()
}

// surfaceExtensions checks the instance extensions GLFW asks for, which are empty when it found no
// way to create surfaces for its window system.
func surfaceExtensions(required []string) ([]string, error) {
	if len(required) == 0 {
		return nil, errors.New("GLFW reports no Vulkan surface extensions for this window system")
	}
	if !AllOfAinB([]string{"VK_KHR_surface"}, required) {
		return nil, errors.Newf("GLFW surface extensions %v lack VK_KHR_surface", required)
	}
	return append([]string(nil), required...), nil
}
