// Package llm implements ports.Orchestrator on an OpenAI-compatible chat
// completion API.
//
// The model is asked for a JSON object whose "components" member holds the
// tree. Its reply is treated as untrusted input: it is parsed and validated
// by the schema package and any defect surfaces as a schema violation.
// Provider failures wrap domain.ErrOrchestrator. There are no retries.
package llm
