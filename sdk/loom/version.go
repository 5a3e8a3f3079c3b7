package loom

import "github.com/blang/semver"

// Version is the version of the loom SDK itself. Bindings constructed without
// an explicit provider version pin are stamped with this value so that the
// engine can associate the registration with the SDK that produced it.
const Version = "0.4.0"

// SemVer is the parsed form of Version.
var SemVer = semver.MustParse(Version)
