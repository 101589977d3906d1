// Package model defines the provider agnostic abstractions and concrete
// helpers for interacting with language / reasoning models inside AgentLite.
//
// Core goals:
//   - Separate blocking generation (Generate) from incremental delivery (Stream)
//   - Normalize completions into a closed union (Text | ToolUse) so callers
//     classify by type instead of inspecting provider payloads
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic, Ollama) implement the Model interface
// from this package so higher layers (agents, router) remain decoupled from
// vendor SDKs.
package model
