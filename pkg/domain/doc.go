/*
Package domain contains the component vocabulary a language model may emit and the
errors shared by every layer of uiengineer.

The package is kept pure and free of I/O, following Hexagonal Architecture principles.
Adapters (stores, orchestrators, transports) depend on it; it depends on nothing but the
standard library.

# Key Entities

  - Component: the closed set of UI variants (Text, Button, InputField, Link, Container).
  - Tree: an ordered list of root components, the unit that is generated, stored and lowered.
  - LifecycleHooks: callbacks fired by the app service around generation, storage and lowering.
*/
package domain
