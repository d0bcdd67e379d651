// Package interact owns the open state of one floating element.
//
// A Controller holds a single boolean mutated only through SetOpen. Triggers
// (hover, focus, dismiss) are Interactions attached to the controller; they
// never touch the state directly, so concurrent sources are serialized through
// one setter. Pending open and close timers live in two clock slots shared by
// every interaction: scheduling an open cancels nothing, but entering cancels
// a pending close and leaving cancels a pending open.
//
// Controllers are not safe for use from several goroutines at once except
// through a clock that dispatches timer callbacks onto the owning goroutine
// (see clock.Dispatching).
package interact
