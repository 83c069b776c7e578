// Command windowed draws a red triangle on a blue background into an SDL
// window and keeps the window open until it is closed.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkframe/vkframe/config"
	"github.com/vkframe/vkframe/frame"
	"github.com/vkframe/vkframe/mesh"
	"github.com/vkframe/vkframe/vkr"
)

func run(ctx context.Context, cfg config.Config) error {
	windowExtent := frame.Extent{Width: cfg.WindowWidth, Height: cfg.WindowHeight}
	window, err := vkr.OpenWindow("vkframe", windowExtent)
	if err != nil {
		return err
	}
	defer window.Destroy()

	globalDriver, err := window.GlobalDriver()
	if err != nil {
		return err
	}

	instance, err := vkr.NewInstance(globalDriver, vkr.InstanceOptions{
		ApplicationName: "windowed",
		Extensions:      window.InstanceExtensions(),
		Validation:      cfg.Validation,
		FenceTimeout:    cfg.FenceTimeout,
	})
	if err != nil {
		return err
	}
	defer instance.Destroy()

	if cfg.Diagnostics {
		dump := frame.DumpInfo
		if cfg.JSON {
			dump = frame.DumpInfoJSON
		}
		err = dump(os.Stdout, instance)
		if err != nil {
			return errors.Wrap(err, "dump diagnostics")
		}
	}

	surface, err := instance.CreateSurface(window)
	if err != nil {
		return err
	}
	defer surface.Destroy()

	deviceCtx, err := frame.AcquireDevice(instance, []string{khr_swapchain.ExtensionName})
	if err != nil {
		return err
	}
	defer deviceCtx.Destroy()

	supported, err := surface.SupportsPresent(deviceCtx.Physical, deviceCtx.QueueFamily.Index)
	if err != nil {
		return err
	}
	if !supported {
		return errors.Wrapf(frame.ErrPresentUnsupported, "queue family %d", deviceCtx.QueueFamily.Index)
	}

	caps, err := surface.Capabilities(deviceCtx.Physical)
	if err != nil {
		return err
	}

	swapchainConfig, err := frame.ChooseSwapchain(caps, window.Size())
	if err != nil {
		return err
	}

	device, err := vkr.DeviceFrom(deviceCtx)
	if err != nil {
		return err
	}

	swapchain, err := device.CreateSwapchain(surface, swapchainConfig)
	if err != nil {
		return err
	}
	defer swapchain.Destroy()

	vertices, err := mesh.LoadTriangle()
	if err != nil {
		return err
	}

	pipeline, err := device.CreateTrianglePipeline(swapchain, vertices)
	if err != nil {
		return err
	}
	defer pipeline.Destroy()

	presenter, err := vkr.NewTrianglePresenter(swapchain, pipeline, frame.ClearBlue)
	if err != nil {
		return err
	}
	defer presenter.Destroy()

	log.WithFields(log.Fields{
		"device":    deviceCtx.Physical.Name(),
		"swapchain": swapchain.Extent(),
		"present":   swapchainConfig.PresentMode,
	}).Info("window ready")

	return frame.RunWindowed(ctx, presenter, window)
}

func main() {
	runtime.LockOSThread()

	cfg, err := config.FromArgs(os.Args[0], os.Args[1:], os.Stderr, config.DiagnosticsFlag|config.JSONFlag)
	if errors.Is(err, config.ErrHelp) {
		return
	} else if err != nil {
		log.Fatalln(err)
	}
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = run(ctx, cfg)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
