package vkr

import (
	"testing"

	qt "github.com/frankban/quicktest"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"

	"github.com/vkframe/vkframe/frame"
)

func TestDebugLevel(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		severity ext_debug_utils.DebugUtilsMessageSeverityFlags
		level    log.Level
	}{
		{ext_debug_utils.SeverityError, log.ErrorLevel},
		{ext_debug_utils.SeverityWarning, log.WarnLevel},
		{ext_debug_utils.SeverityInfo, log.InfoLevel},
		{ext_debug_utils.SeverityVerbose, log.DebugLevel},
		{ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityError, log.ErrorLevel},
	}

	for _, test := range tests {
		c.Check(debugLevel(test.severity), qt.Equals, test.level, qt.Commentf("severity %v", test.severity))
	}
}

func TestQueueFlags(t *testing.T) {
	c := qt.New(t)

	flags := queueFlags(core1_0.QueueGraphics | core1_0.QueueTransfer)
	family := frame.QueueFamily{Flags: flags}
	c.Assert(family.Graphics(), qt.IsTrue)
	c.Assert(family.Transfer(), qt.IsTrue)
	c.Assert(family.Compute(), qt.IsFalse)
	c.Assert(family.SparseBinding(), qt.IsFalse)

	c.Assert(queueFlags(0), qt.Equals, frame.QueueFlags(0))
}

func TestMemoryFlags(t *testing.T) {
	c := qt.New(t)

	c.Assert(memoryFlags(core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent),
		qt.Equals, frame.MemoryHostVisible|frame.MemoryHostCoherent)
	c.Assert(memoryFlags(core1_0.MemoryPropertyDeviceLocal), qt.Equals, frame.MemoryDeviceLocal)
}

func TestEnabledFeatures(t *testing.T) {
	c := qt.New(t)

	features := &core1_0.PhysicalDeviceFeatures{
		GeometryShader:    true,
		SamplerAnisotropy: true,
	}
	c.Assert(enabledFeatures(features), qt.DeepEquals, []string{"GeometryShader", "SamplerAnisotropy"})
	c.Assert(enabledFeatures(core1_0.PhysicalDeviceFeatures{}), qt.HasLen, 0)
	c.Assert(enabledFeatures(42), qt.IsNil)
}

func TestSortedKeys(t *testing.T) {
	c := qt.New(t)

	keys := sortedKeys(map[string]int{"VK_KHR_surface": 1, "VK_EXT_debug_utils": 2, "VK_KHR_display": 3})
	c.Assert(keys, qt.DeepEquals, []string{"VK_EXT_debug_utils", "VK_KHR_display", "VK_KHR_surface"})
}

func TestTranslateEvent(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		name  string
		event sdl.Event
		want  frame.Event
	}{
		{"timeout", nil, frame.Event{Kind: frame.EventNone}},
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, frame.Event{Kind: frame.EventClose}},
		{"close", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_CLOSE}, frame.Event{Kind: frame.EventClose}},
		{"resized", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 640, Data2: 480},
			frame.Event{Kind: frame.EventResize, Width: 640, Height: 480}},
		{"size changed", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 800, Data2: 600},
			frame.Event{Kind: frame.EventResize, Width: 800, Height: 600}},
		{"focus", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_FOCUS_GAINED}, frame.Event{Kind: frame.EventOther}},
		{"key", &sdl.KeyboardEvent{Type: sdl.KEYDOWN}, frame.Event{Kind: frame.EventOther}},
	}

	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			c.Assert(translateEvent(test.event), qt.Equals, test.want)
		})
	}
}

func TestViewportFor(t *testing.T) {
	c := qt.New(t)

	viewport := viewportFor(ViewportExtent)
	c.Assert(viewport.Width, qt.Equals, float32(1024))
	c.Assert(viewport.Height, qt.Equals, float32(1024))
	c.Assert(viewport.MinDepth, qt.Equals, float32(0))
	c.Assert(viewport.MaxDepth, qt.Equals, float32(1))
}
