// Package common holds process-wide constants shared across the desugaring
// pipeline: names that would otherwise be duplicated between the config,
// report, and naming packages.
package common

import "hash/fnv"

// Version is the current version of the desugaring engine.
const Version = "0.1.0"

// ConfigFileName is the default name of a TOML run-configuration file, as
// looked up by cmd/deshim when no explicit path is given.
const ConfigFileName = "deshim.toml"

// ObjectClassName is the fully qualified name of the universal super-type.
// Companion and dispatch classes always declare this as their super-type.
const ObjectClassName = "java.lang.Object"

// ClassInitializerName is the method name reserved for class initializers
// (`<clinit>`), the only direct method permitted to remain on a program
// interface after planning.
const ClassInitializerName = "<clinit>"

// InvalidChecksumSentinel is the checksum value assigned to synthesized
// classes when EncodeChecksums is disabled, standing in for the source's
// "invalid request" placeholder -- a value that can never arise from the
// real "7 * interface.checksum" scheme for any plausible interface checksum.
const InvalidChecksumSentinel uint64 = ^uint64(0)

// ChecksumFromName derives a checksum straight from a class's own type
// name, unconditionally -- the "checksumFromType" scheme library dispatch
// classes use instead of the gated "7 * origin.checksum" scheme companion
// classes use. Unlike a companion class, a library dispatch class has no
// single originating program interface to derive a checksum from (its
// inputs are the library interface plus every calling program class), so
// it is checksummed from its own identity instead, and that checksum is
// always meaningful -- it does not need gating behind EncodeChecksums.
func ChecksumFromName(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}
