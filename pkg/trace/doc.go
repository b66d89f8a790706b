// Package trace captures render call sequences and reduces them to
// content fingerprints.
//
// The Recorder implements render.Surface but never produces output:
// every drawing and linking call appends one tagged, binary-encoded
// event to an ordered trace. Two pages produce equal traces exactly
// when they are visually and behaviorally indistinguishable to a
// reader, including which page every link lands on after identifier
// redirection.
//
// A trace is reduced to a Fingerprint by hashing the encoded event
// sequence with SHA-256. Fingerprint equality stands in for exact
// trace equality: at 256 bits the collision risk is a design
// assumption, but a collision would silently merge two distinct pages,
// so the hash deliberately errs on the wide side.
package trace
