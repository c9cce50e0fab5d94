// Package core resolves cascading part specifications.
//
// A specification sheet lists one part variant per row. Columns are read
// left to right as classification, series, a chain of hierarchy columns
// (type, material, size, ...) and finally leaf attributes. Blank cells in
// the sheet mean "same as the row above".
//
// The package is independent of any file format, database or transport.
// Readers build a [SpecTable] from raw strings; everything else is derived
// from it and never modified.
//
// # Pipeline
//
//   - [NewSpecTable] forward-fills blank cells so every row is complete.
//   - [BuildTree] arranges the hierarchy columns as a prefix tree.
//   - [Tree.AvailableValues] and [Tree.LeafValues] answer cascading queries
//     for a [SelectionPath].
//   - [Exporter] turns the table into the enum cross-referenced schema used
//     by the rules consumer.
//
// [Service] ties these together over the currently loaded [Workbook] and is
// safe for concurrent use.
//
// # Cell Values
//
// A cell may hold several values separated by commas or line breaks. Leaf
// columns may also hold the markers "E" (free text), "C" (check box) and
// "X" (not applicable). The first value of a column decides its
// [ControlKind]; markers are never offered as values.
//
// # Layouts
//
// Column roles are positional and described by a [Layout]. Layouts are
// registered by name with [Register]; the standard workbook layout lives in
// the profiles subpackage.
//
// # Error Handling
//
// Errors are sentinel values wrapped with %w. [MapError] maps them to a
// [UserMessage] with a support code (SHEET, PATH, EXP, STORE).
package core
