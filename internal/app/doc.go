// Package app wires the whole application together: logger, runner
// catalog, flock declaration and the supervised manager. It owns no domain
// logic of its own; everything interesting happens in the packages it
// assembles.
package app
