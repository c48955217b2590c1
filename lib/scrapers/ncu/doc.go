// Package ncu scrapes the NCU course catalog.
//
// scraping happens in two read-only steps, both stateless apart from the
// page cache:
// 1. the directory page is turned into class listing targets, one per
//    department/class anchor.
// 2. each class listing page (rendered as a table) is turned into raw
//    course rows.
//
// each step has the same shape: input -> http request -> response ->
// goquery selectors -> output structs. the selector half is kept in pure
// functions (parseDirectory, parseClassTable) so it can be tested against
// fixture html.
package ncu
