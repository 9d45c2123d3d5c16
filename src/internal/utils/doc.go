// Package utils provides small helpers shared across botiplist packages:
// path resolution, safe closing, prefix parsing and domain suffix matching.
package utils
