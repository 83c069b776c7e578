package frame

import (
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
)

// DeviceContext is the result of device acquisition. It is created once per
// run and destroyed after every resource made from it.
type DeviceContext struct {
	Physical    PhysicalDevice
	QueueFamily QueueFamily
	Device      Device
}

func (c *DeviceContext) Destroy() {
	if c.Device != nil {
		c.Device.Destroy()
		c.Device = nil
	}
}

// SelectQueueFamily returns the first family that supports graphics.
func SelectQueueFamily(families []QueueFamily) (QueueFamily, error) {
	for _, family := range families {
		if family.Graphics() {
			return family, nil
		}
	}

	return QueueFamily{}, ErrNoGraphicsQueue
}

// AcquireDevice picks the first physical device the backend enumerates and
// creates a logical device with a single graphics queue on it.
func AcquireDevice(backend Backend, extensions []string) (*DeviceContext, error) {
	devices, err := backend.PhysicalDevices()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate physical devices")
	}
	if len(devices) == 0 {
		return nil, ErrNoPhysicalDevice
	}

	physical := devices[0]
	family, err := SelectQueueFamily(physical.QueueFamilies())
	if err != nil {
		return nil, errors.Wrapf(err, "device %q", physical.Name())
	}

	log.WithFields(log.Fields{
		"device":      physical.Name(),
		"queueFamily": family.Index,
	}).Debug("selected queue family")

	device, err := physical.CreateDevice(family.Index, QueuePriority, extensions)
	if err != nil {
		return nil, errors.Wrapf(err, "create logical device on %q", physical.Name())
	}

	log.WithField("device", physical.Name()).Info("using physical device")

	return &DeviceContext{
		Physical:    physical,
		QueueFamily: family,
		Device:      device,
	}, nil
}
