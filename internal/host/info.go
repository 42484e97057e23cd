// Package host describes the machine gpumon runs on.
package host

import (
	"context"
	"os"
	"time"

	gohost "github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Info is a snapshot of the local machine.
type Info struct {
	Hostname        string        `json:"hostname" yaml:"hostname"`
	OS              string        `json:"os" yaml:"os"`
	Platform        string        `json:"platform,omitempty" yaml:"platform,omitempty"`
	PlatformVersion string        `json:"platform_version,omitempty" yaml:"platform_version,omitempty"`
	KernelVersion   string        `json:"kernel_version,omitempty" yaml:"kernel_version,omitempty"`
	Uptime          time.Duration `json:"uptime" yaml:"uptime"`
	MemTotalMiB     uint64        `json:"mem_total_mib,omitempty" yaml:"mem_total_mib,omitempty"`
}

// Describe collects host information. Fields gopsutil cannot read are
// left empty; only a missing hostname is an error.
func Describe(ctx context.Context) (Info, error) {
	var info Info

	hi, err := gohost.InfoWithContext(ctx)
	if err == nil {
		info.Hostname = hi.Hostname
		info.OS = hi.OS
		info.Platform = hi.Platform
		info.PlatformVersion = hi.PlatformVersion
		info.KernelVersion = hi.KernelVersion
		info.Uptime = time.Duration(hi.Uptime) * time.Second
	}

	if vm, memErr := mem.VirtualMemoryWithContext(ctx); memErr == nil {
		info.MemTotalMiB = vm.Total / (1024 * 1024)
	}

	if info.Hostname == "" {
		name, hostErr := os.Hostname()
		if hostErr != nil {
			if err != nil {
				return info, err
			}
			return info, hostErr
		}
		info.Hostname = name
	}

	return info, nil
}

// Hostname returns the local hostname, or "localhost" if it cannot be read.
func Hostname(ctx context.Context) string {
	info, err := Describe(ctx)
	if err != nil || info.Hostname == "" {
		return "localhost"
	}
	return info.Hostname
}
