package infrastructure

import (
	"fmt"

	"github.com/hashicorp/go-version"
)

// Version is overridden at build time with
// -ldflags "-X github.com/samoilenko/home_sensors/simulator/infrastructure.Version=1.2.3".
var Version = "0.4.0"

const productName = "home-sensors-simulator"

// BuildVersion parses Version. A malformed value falls back to 0.0.0-dev so a
// bad build flag never prevents the simulator from starting.
func BuildVersion() *version.Version {
	v, err := version.NewVersion(Version)
	if err != nil {
		return version.Must(version.NewVersion("0.0.0-dev"))
	}
	return v
}

// UserAgent identifies the simulator to the collector.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", productName, BuildVersion().String())
}
