// Package vessel holds the numeric state of a piece on the wheel: its
// shape parameters, the glaze being applied, the kiln state, and the
// ephemeral pointer tracking of the gesture in progress.
//
// Every mutator clamps into the documented bounds before returning, so
// readers never observe an out-of-range value.
package vessel
