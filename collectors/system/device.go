package system

import (
	"bufio"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// DeviceInfo identifies the device a bug report was taken on.
type DeviceInfo struct {
	GOOS            string            `json:"goos"`
	GOARCH          string            `json:"goarch"`
	Hostname        string            `json:"hostname,omitempty"`
	KernelVersion   string            `json:"kernel_version,omitempty"`
	Platform        string            `json:"platform,omitempty"`
	PlatformVersion string            `json:"platform_version,omitempty"`
	UptimeSeconds   uint64            `json:"uptime_seconds,omitempty"`
	MemTotalMB      float64           `json:"mem_total_mb,omitempty"`
	MemAvailableMB  float64           `json:"mem_available_mb,omitempty"`
	StorageFreeMB   float64           `json:"storage_free_mb,omitempty"`
	Build           map[string]string `json:"build,omitempty"`
}

// Android build.prop first, then the os-release locations for plain Linux.
var propertyFiles = []string{"/system/build.prop", "/etc/os-release", "/usr/lib/os-release"}

var buildKeys = []string{
	"ro.build.fingerprint",
	"ro.build.version.release",
	"ro.build.version.sdk",
	"ro.product.manufacturer",
	"ro.product.model",
	"PRETTY_NAME",
	"ID",
	"VERSION_ID",
}

// Describe collects best-effort device details. storageRoot, when set, is
// where free space is measured. Fields that cannot be read stay empty.
func Describe(storageRoot string) DeviceInfo {
	info := describe(propertyFiles)
	if h, err := host.Info(); err == nil {
		info.Hostname = h.Hostname
		info.KernelVersion = h.KernelVersion
		info.Platform = h.Platform
		info.PlatformVersion = h.PlatformVersion
		info.UptimeSeconds = h.Uptime
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemTotalMB = float64(vm.Total) / 1024 / 1024
		info.MemAvailableMB = float64(vm.Available) / 1024 / 1024
	}
	if storageRoot != "" {
		if u, err := disk.Usage(storageRoot); err == nil {
			info.StorageFreeMB = float64(u.Free) / 1024 / 1024
		}
	}
	return info
}

func describe(paths []string) DeviceInfo {
	info := DeviceInfo{GOOS: runtime.GOOS, GOARCH: runtime.GOARCH}
	if h, err := os.Hostname(); err == nil {
		info.Hostname = h
	}
	for _, p := range paths {
		props, err := readProperties(p)
		if err != nil {
			continue
		}
		build := make(map[string]string)
		for _, k := range buildKeys {
			if v, ok := props[k]; ok && v != "" {
				build[k] = v
			}
		}
		if len(build) > 0 {
			info.Build = build
			break
		}
	}
	return info
}

// readProperties parses key=value files such as build.prop and os-release.
func readProperties(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	props := make(map[string]string)
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		props[strings.TrimSpace(k)] = strings.Trim(strings.TrimSpace(v), `"'`)
	}
	return props, s.Err()
}
