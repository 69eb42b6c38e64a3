package cli

import (
	"github.com/Masterminds/semver/v3"
)

// Version is the version of the capi CLI.
const Version = "0.3.0"

// ConfigFormatVersion is the current version of the configuration file format.
const ConfigFormatVersion = "1.1.0"

// configVersionConstraint accepts every config written by a 1.x CLI up to the
// current format.
var configVersionConstraint *semver.Constraints

func init() {
	var err error
	configVersionConstraint, err = semver.NewConstraint(">= 1.0.0, <= " + ConfigFormatVersion)
	if err != nil {
		panic(err)
	}
}

// IsConfigVersionCompatible reports whether a config file of the given format
// version can be read. Invalid version strings are not compatible.
func IsConfigVersionCompatible(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return configVersionConstraint.Check(v)
}
