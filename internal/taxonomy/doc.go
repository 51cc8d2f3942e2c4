// Package taxonomy loads the reference species list that photo filenames are
// classified against.
//
// The reference source is a spreadsheet (an IOC World Bird List workbook in
// practice) or a CSV export of it. A header row maps column names to
// positions; Schema names the order, family, latin and localized columns and
// is validated once per load, failing with the first missing column. Data rows
// lacking an order, family or latin name are skipped as footers.
//
// A Catalog keeps every accepted row in source order plus a case-insensitive
// latin-name index. The latin name is the stable identity of a species across
// runs; row positions are only meaningful within one loaded Catalog.
package taxonomy
