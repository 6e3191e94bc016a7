package version

// Version is overridden at build time:
//
//	go build -ldflags "-X slimdiag/core/internal/version.Version=v1.2.0" ./core/cmd/slimdiag
var Version = "dev"
