// pkg/platform/detect.go
package platform

import (
	"fmt"
	"runtime"
)

// Platform is a platform/arch pair in the naming used by release manifests
// (win32 rather than windows, x64 rather than amd64).
type Platform struct {
	OS   string // linux, darwin, win32, ...
	Arch string // x64, arm64, ia32, ...
}

var osNames = map[string]string{
	"windows": "win32",
	"solaris": "sunos",
}

var archNames = map[string]string{
	"amd64":   "x64",
	"386":     "ia32",
	"ppc64le": "ppc64",
	"mipsle":  "mipsel",
}

// Detect returns the platform of the running process
func Detect() *Platform {
	return FromGo(runtime.GOOS, runtime.GOARCH)
}

// FromGo converts a GOOS/GOARCH pair to manifest naming
func FromGo(goos, goarch string) *Platform {
	p := &Platform{OS: goos, Arch: goarch}
	if name, ok := osNames[goos]; ok {
		p.OS = name
	}
	if name, ok := archNames[goarch]; ok {
		p.Arch = name
	}
	return p
}

// Override replaces OS and Arch with non-empty values
func (p *Platform) Override(os, arch string) *Platform {
	out := *p
	if os != "" {
		out.OS = os
	}
	if arch != "" {
		out.Arch = arch
	}
	return &out
}

// Family returns the platform family strategy
func (p *Platform) Family() Family {
	return FamilyOf(p.OS)
}

// String returns a string representation of the platform
func (p *Platform) String() string {
	return fmt.Sprintf("%s-%s", p.OS, p.Arch)
}
