// Package prompt holds the built-in prompt templates of the runtime: router
// classification (with and without query expansion), retrieval context
// injection and ledger summarization. All templates are plain strings so
// callers can swap them out through the respective options.
package prompt

import (
	"fmt"
	"strings"
)

// ChiefRouting is the classification instruction for a router without query
// expansion. The single format argument is the rendered agent catalog.
const ChiefRouting = `You are the chief orchestrator of a team of specialized agents. Analyze the user's request and select the single agent best suited to handle it.

Available agents:
%s
Respond with ONLY a JSON object and no other text:
{
    "route_to": "<agent name from the list>",
    "reason": "<one sentence explaining the choice>"
}`

// ChiefRoutingExpansion is the classification instruction for a router with
// query expansion enabled. Beyond the routing decision it asks the model to
// summarize the conversation and rewrite the request as a self-contained
// query.
const ChiefRoutingExpansion = `You are the chief orchestrator of a team of specialized agents. Analyze the user's request, condense the conversation so far, rewrite the request so it stands on its own, and select the single agent best suited to handle it.

Available agents:
%s
Respond with ONLY a JSON object and no other text:
{
    "route_to": "<agent name from the list>",
    "reason": "<one sentence explaining the choice>",
    "context": "<short summary of the conversation so far>",
    "expanded_query": "<the user's request rewritten as a self-contained query>"
}`

// RAGAnswer is the default system prompt of the retrieval-augmented agent.
const RAGAnswer = `You are a helpful assistant. Answer the user's question using the provided context. If the context does not contain the answer, say that instead of guessing.`

// Summarize asks a model to compress a conversation transcript into a short
// synopsis.
const Summarize = `Summarize the following conversation in one concise paragraph. Keep the user's goals, the answers given and any tool results that mattered.

Conversation:
%s

Summary:`

// RenderChiefRouting fills the routing template with the agent catalog.
func RenderChiefRouting(catalog string) string {
	return fmt.Sprintf(ChiefRouting, catalog)
}

// RenderChiefRoutingExpansion fills the expansion routing template with the
// agent catalog.
func RenderChiefRoutingExpansion(catalog string) string {
	return fmt.Sprintf(ChiefRoutingExpansion, catalog)
}

// RenderSummarize fills the summarization template with a transcript.
func RenderSummarize(transcript string) string {
	return fmt.Sprintf(Summarize, transcript)
}

// RenderContext formats retrieved passages for injection, one tagged block
// per item. An empty list renders as "EMPTY".
func RenderContext(items []string) string {
	if len(items) == 0 {
		return "EMPTY"
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "<item_%d>\n%s\n</item_%d>", i+1, item, i+1)
	}
	return b.String()
}

// AugmentQuery wraps the user's question with the retrieval context block.
func AugmentQuery(contextBlock, query string) string {
	return fmt.Sprintf("## **Context**\n%s\n\n ## **User Question**\n%s", contextBlock, query)
}
