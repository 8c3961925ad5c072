// Package llm provides abstractions for the scoring backends.
//
// Two interchangeable providers sit behind one interface: a cloud API
// (pkg/llm/openai) and a local API (pkg/llm/ollama). The scoring adapter
// selects and chains them based on configuration; providers themselves stay
// ignorant of fallback order, rate budgets, and prompt contents.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o-mini"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reply, err := provider.Complete(ctx, "Rate this content from 1-10: ...")
package llm

import (
	"context"

	"github.com/feedwise/feedwise/pkg/types"
)

// Provider defines the interface for scoring backends.
//
// Implementations handle transport and authentication for one backend and
// return the model's raw text reply. They never parse scores; reply parsing
// belongs to the scoring adapter so that all providers are held to the same
// contract.
type Provider interface {
	// Complete sends a prompt and returns the model's full text reply.
	//
	// Returns an error on transport failure, non-2xx responses, or an
	// empty reply. Callers treat any error as "this backend failed" and
	// may fall back to another provider.
	Complete(ctx context.Context, prompt string) (string, error)

	// Kind reports which backend family this provider belongs to.
	Kind() types.ProviderKind

	// Name returns a human-readable identifier for logs.
	Name() string
}
