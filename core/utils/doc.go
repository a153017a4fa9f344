// Package utils provides common helpers shared by the catalog packages.
// It mostly covers lenient conversion of loosely typed upstream JSON values.
package utils
