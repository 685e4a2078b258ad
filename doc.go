/*
Package uiengineer renders user interfaces described by a language model.

A model produces a small, closed component vocabulary (text, button, input
field, link, container). The tree is validated, stored per application, and
lowered into FastUI components whose buttons, links and forms point back to
the service with an "action" describing what the user did. Following that
action asks the model to update the tree, so the interface evolves with use.

# Architecture

The module follows a hexagonal layout:

  - pkg/domain: the component IR, tree helpers and sentinel errors.
  - pkg/schema: parsing and validation of raw model output.
  - internal/runtime: lowering into pkg/fastui and the action URL codec.
  - pkg/app: the application service (show, update, submit, rename) with
    single-flight generation per application.
  - pkg/ports: store, orchestrator and locker interfaces, implemented under
    pkg/adapters (memory, file, bolt, sqlite, redis, llm, static, http, mcp).

# Usage

	store := memory.NewStore()
	svc := app.NewService(store, static.New())
	components, err := svc.Render(ctx, "todo-list", "")

The uiengineer command wires the same pieces from a configuration file and
serves them over HTTP or MCP.
*/
package uiengineer
