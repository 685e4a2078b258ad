/*
Package observability provides tools for monitoring the uiengineer app service.

It includes Prometheus collectors fed by lifecycle hooks, logging hooks for
auditing generations and updates, and change notification (Notifier and
Aggregator) used to stream tree changes to connected clients.
*/
package observability
