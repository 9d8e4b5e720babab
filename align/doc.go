// Package align merges time series and tables on a shared timestamp key.
//
// A Table is keyed by timestamp and carries one or more named numeric
// columns, each sourced from a distinct series. Absent cells are NaN; a merge
// never drops a row unless the join policy says so.
//
// # Merging
//
// Wrap series as tables and merge them:
//
//	gdp := align.FromSeries(gdpSeries)
//	cpi := align.FromSeries(cpiSeries)
//
//	// every row of gdp, cpi values or NaN
//	wide, err := align.Merge(align.Left(0), gdp, cpi)
//
//	// only quarters observed by both
//	both, err := align.Merge(align.Inner(), gdp, cpi)
//
// # Errors
//
// Merge fails with a *SchemaError (errors.Is ErrSchema) when two inputs
// declare the same column name, and with an *EmptyInputError (errors.Is
// ErrEmptyInput) when an input has no rows.
//
// # Column Roles
//
// Columns are RoleValue by default. A RoleIdentifier column passes through
// merges but is excluded when a model regresses on "all other numeric"
// columns.
package align
