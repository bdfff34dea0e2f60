// pkg/platform/family.go
package platform

// Archive formats a release may be published in
const (
	FormatTarGz = "tar.gz"
	FormatZip   = "zip"
)

// Family groups platforms that share archive format and linker behavior
type Family struct {
	Name          string
	ArchiveFormat string // Default format when the file name does not say
	LinkQuery     string // Link flag query a build on this family should use
}

var (
	// FamilyGNU covers linux and the other ELF platforms
	FamilyGNU = Family{Name: "gnu", ArchiveFormat: FormatTarGz, LinkQuery: "ldflags"}

	// FamilyDarwin uses the Mach-O linker with -all_load
	FamilyDarwin = Family{Name: "darwin", ArchiveFormat: FormatTarGz, LinkQuery: "ldflags_mac"}

	// FamilyWindows is published as zip and linked with a GNU toolchain (mingw)
	FamilyWindows = Family{Name: "windows", ArchiveFormat: FormatZip, LinkQuery: "ldflags"}
)

// FamilyOf returns the family for a platform name
func FamilyOf(os string) Family {
	switch os {
	case "darwin":
		return FamilyDarwin
	case "win32", "windows", "cygwin":
		return FamilyWindows
	default:
		return FamilyGNU
	}
}
