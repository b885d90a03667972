// Package notes implements the release-note fragment model: parsing the
// reStructuredText changelog fragments maintained under the documentation
// tree, rendering them to markdown, and editing them (inserting entries,
// rolling the unreleased fragment into a dated release).
//
// A fragment holds an optional anchor, an optional version title, and up
// to three canonical sections (Enhancements, Bugs, API changes) of bullet
// entries. Entries accumulate newest-on-top; each carries free prose plus
// inline markup for symbol cross-references, issue numbers, and author
// attributions (see the markup package).
//
// The parser is structural: it reports hard errors only for text the
// fragment grammar cannot place. Everything else parses into the model,
// and the lint package decides what is acceptable.
package notes
