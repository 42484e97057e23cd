// Package ui holds the shared colors, symbols and table rendering used by
// gpumon's non-dashboard commands.
package ui
