// Package ui implements the interactive dashboard using bubbletea's Elm architecture.
//
// The TUI renders the signed-in user's content list:
//  1. [ListView] : Browse, search, and filter tracked content
//  2. [ConfirmDeleteView] : Confirm removal of an item
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via typed message structs.
// Live snapshots flow through a channel from the ContentStore subscription, replacing the rendered list wholesale on every push.
//
// Keyboard navigation uses vim-style bindings (j/k, +/-, tab, d, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
// Progress can also be set by clicking a position on the selected item's progress bar.
package ui
