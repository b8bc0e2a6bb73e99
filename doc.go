// Relaymap builds a geographic map of Tor relays.
//
// It reads a network-status consensus document, resolves an address
// of every relay with a local geolocation database and groups relays
// which are close to each other into clusters. Each cluster gets a
// center and a value: either a number of relays or their total
// bandwidth.
//
// Tool itself is organized into several parts:
//
// Consensus
//
// consensus package extracts relay records from a consensus document.
// It is lenient: broken relay blocks are skipped and counted.
//
// Relaylib
//
// relaylib is a main package of the application. It has Relaymap struct
// which runs the whole pipeline, a point builder which geocodes relays in
// parallel and a clusterer.
//
// Providers
//
// A set of geocoders over local databases: MaxMind, IP2Location,
// SypexGeo and plain CSV files of ip ranges.
//
// Export and API
//
// Clusters are written as JSON or GeoJSON with marker hints for
// renderers. serve command runs the pipeline once and serves results
// over HTTP with Prometheus metrics.
package main
