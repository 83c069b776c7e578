package frame

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type EventKind int

const (
	EventNone EventKind = iota
	EventClose
	EventResize
	EventOther
)

type Event struct {
	Kind   EventKind
	Width  int
	Height int
}

// EventSource delivers window events. WaitEvent returns an EventNone event
// when nothing arrives before timeout.
type EventSource interface {
	WaitEvent(timeout time.Duration) Event
}

// Presenter renders and presents the single windowed frame.
type Presenter interface {
	// Submit acquires a swapchain image, records the frame into it and submits
	// it. The returned fence signals when the frame has executed.
	Submit() (Fence, error)
	// Present queues the submitted image for presentation.
	Present() error
	// WaitIdle blocks until the submitted frame and its presentation have
	// executed.
	WaitIdle() error
}

const eventPollInterval = 50 * time.Millisecond

// RunEventLoop dispatches window events until the window is closed or ctx is
// done. Resize events are logged and otherwise ignored; no frame is redrawn.
func RunEventLoop(ctx context.Context, events EventSource) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		event := events.WaitEvent(eventPollInterval)
		switch event.Kind {
		case EventClose:
			log.Info("window closed")
			return nil
		case EventResize:
			log.WithFields(log.Fields{
				"width":  event.Width,
				"height": event.Height,
			}).Debug("window resized")
		}
	}
}

// RunWindowed submits and presents one frame, then runs the event loop while
// the frame completes in the background. Failures after submission are
// logged rather than returned: the window stays up until it is closed. The
// device is drained before the frame's fence is released.
func RunWindowed(ctx context.Context, presenter Presenter, events EventSource) error {
	start := hrtime.Now()
	fence, err := presenter.Submit()
	if err != nil {
		return errors.Wrap(err, "submit frame")
	}
	defer fence.Destroy()
	defer drain(presenter)

	err = presenter.Present()
	if errors.Is(err, ErrSwapchainOutOfDate) {
		log.WithError(err).Warn("frame presented to an out of date swapchain")
	} else if err != nil {
		log.WithError(err).Error("present frame")
	}

	waitCtx, stopWaiting := context.WithCancel(ctx)
	defer stopWaiting()

	group, groupCtx := errgroup.WithContext(waitCtx)
	group.Go(func() error {
		err := fence.Wait(groupCtx)
		switch {
		case errors.Is(err, context.Canceled):
			log.WithError(err).Debug("stopped waiting for frame")
		case err != nil:
			log.WithError(err).Error("frame did not complete")
		default:
			log.WithField("elapsed", hrtime.Since(start)).Debug("windowed frame complete")
		}
		return nil
	})

	loopErr := RunEventLoop(ctx, events)
	stopWaiting()
	group.Wait()

	if errors.Is(loopErr, context.Canceled) {
		return nil
	}
	return loopErr
}

func drain(presenter Presenter) {
	err := presenter.WaitIdle()
	if err != nil {
		log.WithError(err).Error("wait for frame to drain")
	}
}
