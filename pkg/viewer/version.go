package viewer

import "github.com/bft-labs/vpxview/pkg/vpx"

// Version is the version of the viewer package.
const Version = "1.0.0"

// DumpFormatVersion is the newest internals dump format the default codec
// reads. Dumps written by a newer instrumented decoder fail to load.
const DumpFormatVersion = vpx.DumpFormatVersion
