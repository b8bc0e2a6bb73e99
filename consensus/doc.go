// Package consensus extracts relay records from a network consensus
// document.
//
// Each relay occupies a fixed sequence of lines: r (main), optional a
// (IPv6 address), s (flags), v (version), optional pr (protocols), w
// (weights) and p (ports). Reader walks this sequence line by line and
// never consumes a line that starts the next relay, so a broken block
// does not damage its neighbours.
package consensus
