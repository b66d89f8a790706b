// Package render draws book pages onto an abstract Surface.
//
// The Surface interface is the closed operation set every output
// backend must support: page breaks, fonts, text, images, clip
// regions, rotations and link handles. The package ships one real
// backend (SVGSurface) plus conversion helpers to PDF and PNG; the
// trace package provides a recording backend used for fingerprinting.
//
// DrawPage is the single render function. It is deterministic: given
// identical page content and identical resolved link-target
// identifiers it issues the exact same call sequence, which is what
// makes trace fingerprints a usable equality proxy.
package render
