// This package provides a set of structs and functions which turn
// relay records into a density map of the network.
//
// relaylib is core of the relaymap project. The rest of the application
// wires it with concrete geocoders, configuration and output formats.
//
// Relaymap is a main entity of the relaylib. It reads a consensus
// document, geocodes every relay with a Geocoder (PointBuilder spreads
// lookups over a worker pool), and groups resulting points into clusters
// of relays which are close to each other. ClusterSet is all that a
// renderer needs: cluster centers, their aggregated values and a range
// of these values.
package relaylib
