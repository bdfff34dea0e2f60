// pkg/env/doc.go

/*
Package env resolves compiler and linker flags for libgenaro builds.

A build consumes either the system installation or the vendored tree
extracted under the manifest's base path. Resolve answers one query for
one provisioning state:

	e := env.New("/path/to/binding", manifest)

	flags, err := e.Resolve(env.QueryLdflags, core.VendoredPresent)
	// -Wl,--whole-archive /path/to/binding/libgenaro-1.0.0/depends/lib/libnettle.a ... -Wl,--no-whole-archive

	flags, err = e.Resolve(env.QueryLibraries, core.SystemInstalled)
	// -lgenaro

Resolve is pure string construction and never touches the filesystem.
Check inspects the vendored tree and lists what is missing.

Vendored Layout:

	<base_path>/include/<header>
	<base_path>/lib/libgenaro.a
	<base_path>/depends/include/
	<base_path>/depends/lib/lib*.a

On darwin the static archives are loaded with -all_load and the Security
framework is linked ahead of them; elsewhere GNU ld --whole-archive is used.
*/
package env
