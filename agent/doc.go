// Package agent contains the agent implementations of AgentLite. The package
// covers three concerns:
//
//  1. The tool-calling execution loop (Agent): call the model, execute any
//     requested tools, feed the results back, repeat until the model answers
//     in plain text or the iteration budget runs out.
//  2. Routing (Chief): classify a request against a catalog of agents, retry
//     malformed routing replies with corrective feedback, then delegate the
//     run to the selected agent.
//  3. Retrieval augmentation (RAG): fetch passages from a vector index and
//     inject them into the user's question before the first model call.
//
// Design principles:
//   - One run, one ledger. Every agent records into a ledger.Ledger; during
//     delegation the router hands its ledger to the target so the whole
//     exchange lands in a single record.
//   - Failures the model can fix stay in-band. Unknown tools, tool errors and
//     malformed routing replies are fed back as messages; only transport and
//     contract violations surface as Go errors.
//   - Blocking and streaming runs emit the same event vocabulary (core.Event)
//     and record the same ledger steps.
//
// Model specifics, tool schemas and retrieval backends live in their own
// packages; this package only orchestrates them.
package agent
