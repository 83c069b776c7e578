// Command vulkaninfo prints the instance extensions, layers and physical
// devices the Vulkan loader reports.
package main

import (
	"os"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/vkframe/vkframe/config"
	"github.com/vkframe/vkframe/frame"
	"github.com/vkframe/vkframe/vkr"
)

func main() {
	cfg, err := config.FromArgs(os.Args[0], os.Args[1:], os.Stderr, config.JSONFlag)
	if errors.Is(err, config.ErrHelp) {
		return
	} else if err != nil {
		log.Fatalln(err)
	}
	cfg.ConfigureLogging()

	globalDriver, err := vkr.SystemDriver()
	if err != nil {
		log.Fatalf("%+v", err)
	}

	instance, err := vkr.NewInstance(globalDriver, vkr.InstanceOptions{
		ApplicationName: "vulkaninfo",
		Validation:      cfg.Validation,
	})
	if err != nil {
		log.Fatalf("%+v", err)
	}
	defer instance.Destroy()

	if cfg.JSON {
		err = frame.DumpInfoJSON(os.Stdout, instance)
	} else {
		err = frame.DumpInfo(os.Stdout, instance)
	}
	if err != nil {
		instance.Destroy()
		log.Fatalf("%+v", err)
	}
}
