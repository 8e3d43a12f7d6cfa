// Package ui is the Bubble Tea console for the Dahell backend.
//
// # Screens
//
// Four screens share one root Model:
//
//   - Gold Mine: the filtered, paginated opportunity list and image search,
//     driven by a listview.Controller
//   - Cluster Lab: the live decision console with verdict feedback and the
//     orphan investigator, driven by an actions.Controller
//   - System: container status and per-service log tails with restart
//   - Diagnostics: the console's own zap log file
//
// # Data flow
//
// Background pollers write into a state.Store. A UI tick copies the store
// snapshot into the model once per second, so rendering never blocks on the
// network. Requests the operator triggers directly (list pages, investigations,
// actions) run as tea.Cmd values against the gateway and come back as
// messages. Every such message carries a sequence number or product id so a
// late answer for a view that has moved on is dropped.
//
// # Keys
//
// Global keys switch screens (1-4, tab), toggle help (?) and cycle the theme
// (T). The remaining bindings are per screen; see keys.go.
package ui
