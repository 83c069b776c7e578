package vkr

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkframe/vkframe/frame"
)

// Window is an SDL window created for Vulkan rendering. SDL requires every
// call on it to come from the thread that created it.
type Window struct {
	handle *sdl.Window
}

func OpenWindow(title string, extent frame.Extent) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "initialize sdl")
	}

	handle, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(extent.Width), int32(extent.Height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	return &Window{handle: handle}, nil
}

// GlobalDriver loads Vulkan through the loader SDL opened for the window.
func (w *Window) GlobalDriver() (core1_0.GlobalDriver, error) {
	driver, err := core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	return driver, errors.Wrap(err, "load vulkan from sdl")
}

// InstanceExtensions are the instance extensions SDL needs to create a
// surface for the window.
func (w *Window) InstanceExtensions() []string {
	return w.handle.VulkanGetInstanceExtensions()
}

// Size reports the window's drawable size in pixels.
func (w *Window) Size() frame.Extent {
	width, height := w.handle.VulkanGetDrawableSize()
	return frame.Extent{Width: int(width), Height: int(height)}
}

func (w *Window) WaitEvent(timeout time.Duration) frame.Event {
	return translateEvent(sdl.WaitEventTimeout(int(timeout.Milliseconds())))
}

func translateEvent(event sdl.Event) frame.Event {
	switch e := event.(type) {
	case nil:
		return frame.Event{Kind: frame.EventNone}
	case *sdl.QuitEvent:
		return frame.Event{Kind: frame.EventClose}
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_CLOSE:
			return frame.Event{Kind: frame.EventClose}
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			return frame.Event{Kind: frame.EventResize, Width: int(e.Data1), Height: int(e.Data2)}
		}
	}
	return frame.Event{Kind: frame.EventOther}
}

func (w *Window) Destroy() {
	if w.handle == nil {
		return
	}
	w.handle.Destroy()
	w.handle = nil
	sdl.Quit()
}
