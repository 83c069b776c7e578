package frame

import (
	"context"
	"image"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	log "github.com/sirupsen/logrus"
)

type OffscreenOptions struct {
	Extent Extent
	Clear  Color
}

// DefaultOffscreenOptions clears a 1024x1024 target to opaque blue.
func DefaultOffscreenOptions() OffscreenOptions {
	return OffscreenOptions{
		Extent: OffscreenExtent,
		Clear:  ClearBlue,
	}
}

// RenderOffscreen clears an offscreen image, copies it to host memory and
// returns it as an RGBA raster. The readback buffer is only read after the
// submission fence has signalled. If the wait is cancelled or fails, the
// device is drained before anything is released.
func RenderOffscreen(ctx context.Context, device Device, opts OffscreenOptions) (*image.RGBA, error) {
	target, err := device.CreateImage(opts.Extent)
	if err != nil {
		return nil, errors.Wrap(err, "create offscreen image")
	}
	defer target.Destroy()

	size := opts.Extent.Pixels() * 4
	readback, err := device.CreateReadbackBuffer(size)
	if err != nil {
		return nil, errors.Wrap(err, "create readback buffer")
	}
	defer readback.Destroy()

	cmd, err := device.RecordClearAndCopy(target, readback, opts.Clear)
	if err != nil {
		return nil, errors.Wrap(err, "record clear and copy")
	}
	defer cmd.Destroy()

	start := hrtime.Now()
	fence, err := device.Submit(cmd)
	if err != nil {
		return nil, errors.Wrap(err, "submit frame")
	}
	defer fence.Destroy()

	err = fence.Wait(ctx)
	if err != nil {
		// The deferred releases must not run while the submission is pending.
		idleErr := device.WaitIdle()
		if idleErr != nil {
			log.WithError(idleErr).Error("wait for device idle")
		}
		return nil, errors.Wrap(err, "wait for frame")
	}
	log.WithField("elapsed", hrtime.Since(start)).Debug("offscreen frame complete")

	data, err := readback.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read back frame")
	}
	if len(data) != size {
		return nil, errors.Wrapf(ErrBufferSize, "got %d bytes, want %d", len(data), size)
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Extent.Width, opts.Extent.Height))
	copy(img.Pix, data)
	return img, nil
}
