// Package app is the composition root of erpdesk.
//
// Setup loads the config, installs the slog default and opens the menu
// cache on file or Redis storage. Run then builds the API client, fills
// state.Store from the cache (or the backend), starts the Refresher, wires
// the permission provider to the same cache and hands everything to ui.Run.
//
//	Run()
//	 ├─> Setup()            config, logging, storage, menu cache
//	 ├─> erpapi.NewClient() REST client
//	 ├─> Refresher.Refresh() initial menus
//	 ├─> Refresher.Start()  background refresh with backoff
//	 ├─> permission.New()   button permissions
//	 └─> ui.Run()           TUI (blocks)
//
// Refresh failures keep the last good tree; after two consecutive failures
// the header reports the backend as offline.
package app
