// Package ui provides the terminal shell for erpdesk.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea model. The left pane shows the navigation
// tree from state.Store; enter on a program opens it as a tab in a
// tabs.Store. Each tab owns a search.Store built from its screens.Definition
// and a text input for the query. Searches run as commands bound to the
// tab's context, so closing a tab abandons its request.
//
// Whenever the active tab changes, the permission.Provider is synced with the
// tab's program number and route. Each sync carries a sequence number taken
// in Update, so the provider ignores a sync that finishes after a later one.
// Tabs for unregistered routes do not require auth and clear the list.
// Screen buttons are shown only when the loaded button permissions allow
// them.
//
// # Dialogs
//
// Three modal.Controller instances back the dialogs:
//
//   - alert: input validation warnings, admitted one at a time by a
//     modal.Gate that stays held until the close animation delay passes
//   - detail: the selected grid row, scrollable through a bubbles viewport
//   - confirm: a screen action awaiting confirmation
//
// A left click outside an open dialog is treated as a mask click.
//
// # Keyboard Shortcuts
//
//   - tab: toggle menu / grid focus
//   - [ / ]: previous / next tab
//   - w / W: close tab / close all tabs
//   - /: edit the search query, enter runs it
//   - R: repeat the last search, C: clear results
//   - j/k, g/G, pgup/pgdown: navigation
//   - esc: dismiss the oldest notice
//   - T: cycle theme (saved to prefs)
//   - ?: help, q or ctrl+c: quit
package ui
