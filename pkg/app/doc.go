/*
Package app implements the show / update / submit flows of the UI engine.

A Service glues the driven ports together: it loads the current tree of an
application from the StateStore, asks the Orchestrator for a new one when
the application is unknown or an action arrives, validates the result and
persists it, and finally lowers it to FastUI components.

All mutating flows for one application run under a per-application lock
(in-process, and across replicas when a DistributedLocker is configured),
so concurrent first visits generate the tree exactly once.
*/
package app
