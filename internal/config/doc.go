// Package config holds the run configuration of handlescan: per-probe
// timeout and concurrency, the target catalog location, network routing,
// report format and the history database location.
//
// Values come from defaults, then the optional .handlescan YAML file, then
// command line flags.
package config
