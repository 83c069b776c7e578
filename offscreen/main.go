// Command offscreen clears a 1024x1024 image to blue on the GPU, reads it
// back and saves it as an image file.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/vkframe/vkframe/config"
	"github.com/vkframe/vkframe/frame"
	"github.com/vkframe/vkframe/vkr"
)

func run(ctx context.Context, cfg config.Config) error {
	globalDriver, err := vkr.SystemDriver()
	if err != nil {
		return err
	}

	instance, err := vkr.NewInstance(globalDriver, vkr.InstanceOptions{
		ApplicationName: "offscreen",
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

	device, err := frame.AcquireDevice(instance, nil)
	if err != nil {
		return err
	}
	defer device.Destroy()

	img, err := frame.RenderOffscreen(ctx, device.Device, frame.DefaultOffscreenOptions())
	if err != nil {
		return err
	}

	return frame.WriteImage(cfg.OutputPath, img)
}

func main() {
	runtime.LockOSThread()

	cfg, err := config.FromArgs(os.Args[0], os.Args[1:], os.Stderr,
		config.OutputFlag|config.DiagnosticsFlag|config.JSONFlag)
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
