// Package query resolves free-text requests such as "show me all pods in
// namespace dev" to kubectl or helm command lines.
//
// Resolution walks an ordered table of templates; the first template whose
// pattern matches the start of the query wins. Unmatched queries resolve to a
// command listing everything.
package query
