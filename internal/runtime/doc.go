// Package runtime lowers component trees into the FastUI target schema.
//
// Lowering is pure: it never touches storage or the network, never mutates
// the input tree and yields the same output for the same (tree, app) pair.
// Each interactive node is bound to the application it belongs to by
// synthesizing navigation URLs of the form
//
//	/{app}?action=<percent-encoded action>
//
// so the frontend can round-trip the action text back to the server, where
// it becomes the next update instruction.
package runtime
