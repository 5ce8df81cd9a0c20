// Package config defines the format-agnostic model of a flock declaration
// and the Loader interface a format adapter implements. The rest of the
// system consumes only this model; nothing outside the adapter packages
// knows the declaration came from HCL.
package config
