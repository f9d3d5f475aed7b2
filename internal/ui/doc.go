// Package ui renders the njtstatus terminal interface with Bubble Tea.
//
// # Layout
//
// The screen mirrors the two-section menu of the watch app:
//
//	Lines · Updated: 15:04
//	  NE Corridor              No Delays!     ✓
//	  NJ Coastline             12 Minutes     !
//	  ...
//	Options
//	  Refresh                  Update the status.
//	  Quit
//
// The Lines header follows the sync state (Updating..., Updated: <time>,
// Updating Failed, Updating Failed!!, Not updated yet). Failure reasons
// and an offline warning appear above the help footer.
//
// # Data Flow
//
// The model never talks to the network. It re-reads state.Store on a tick
// and asks for new data through Options.Refresh, which posts to the event
// loop in package app. Selecting Refresh (or pressing r) moves the cursor
// back to the first line.
//
// # Themes
//
// T cycles Nightfox, Kanagawa and Slate. The choice is saved with package
// prefs and restored on the next start.
package ui
