// Package viz renders episode output for the terminal: lipgloss-styled
// headings, tab-aligned field tables, asciigraph line plots and a braille
// [Canvas] that outlines a [dynamo.Snapshot].
package viz
