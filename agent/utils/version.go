package utils

// Version is set by the build, e.g.
//
//	go build -ldflags "-X github.com/bnonni/tool5/agent/utils.Version=v0.3.0"
var Version = "v0.1.0-dev"

const (
	Name = "tool5"
	Desc = "Decentralized identity CLI: DIDs, verifiable credentials, DWN records and agents"
)

// VersionInfo returns the one line version banner.
func VersionInfo() string {
	return Name + " " + Version + "\n" + Desc
}
