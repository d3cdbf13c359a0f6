// Package permission models permission-code sets and the operation
// registry.
//
// Permission codes are plain strings granted through roles. A required-code
// expression may be comma-joined, meaning any one of the listed codes
// suffices; that mirrors the resource model where one action can be gated by
// several alternative codes.
//
// [Registry] replaces call-site annotation discovery with an explicit
// mapping from operation identifier to required-code expression, attached at
// registration time and frozen before serving.
package permission
