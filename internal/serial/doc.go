// Package serial extracts disc serial numbers from filenames and raw image
// headers.
//
// Filename tokens are the bracketed catalog form ([SLUS-01234]) plus the
// Lightspan LSP variant. Header probing reads a bounded prefix of a .bin or
// .iso image and searches for the boot-configuration byte layout PlayStation
// discs use (SLUS_012.34), reassembling it into the canonical dashed form.
// Both lookups miss softly: an unmatched, short, or unreadable file yields no
// serial rather than an error, so a batch never aborts on one bad image.
package serial
