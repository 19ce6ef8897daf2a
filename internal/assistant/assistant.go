// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assistant answers usage questions about literature-helper through
// the configured language model, keeping the conversation in the session.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/literature-helper/internal/analyze"
	"github.com/pdiddy/literature-helper/internal/session"
	"github.com/pdiddy/literature-helper/pkg/types"
)

// ErrEmptyQuestion is returned when Ask is called with blank input.
var ErrEmptyQuestion = errors.New("question is empty")

// DefaultMaxTurns bounds how many earlier questions are resent.
const DefaultMaxTurns = 10

// HelpText is the usage guide the model answers from.
const HelpText = `literature-helper is a research assistant that finds academic papers,
analyzes their relevance with a language model, and helps you export or save them.

How to use:
1. Enter your research topic or keywords.
2. Choose a source: scholar (Google Scholar via a scraping proxy),
   semantic_scholar, arxiv, or openalex.
3. Set how many papers to fetch (1 to the configured maximum) and the
   minimum relevance score (0 to the score scale, 5 by default).
4. Optionally enable saving to push qualifying papers into Zotero.
5. Run the search. Each paper gets tags, a summary, a relevance score
   and the reasoning behind it.

Exports:
- BibTeX (.bib) for citation managers.
- Markdown (.md) digests for notes.
- CSL YAML for pandoc bibliographies.

Zotero:
- Requires zotero-api-key and zotero-user-id secrets; zotero-collection-id
  files new items into a collection.
- Only papers scoring at or above the threshold are saved.
- Papers already in the library (same DOI, or same title when there is no
  DOI) are skipped unless duplicates are allowed.

Troubleshooting:
- Missing API keys: put them in .secrets/ or a .env file, or pass flags.
- Fetch warnings usually mean the source rejected the request or changed
  its page layout; try another source.
- An empty analysis means the language model call failed; the paper is
  still listed and exported.`

const preamble = "You are the help assistant for literature-helper. Answer the user's questions about using it, briefly and concretely, based on this guide:\n\n"

// Assistant is a multi-turn help chat.
type Assistant struct {
	gen      analyze.Generator
	maxTurns int
}

// New returns an Assistant backed by gen.
func New(gen analyze.Generator) *Assistant {
	return &Assistant{gen: gen, maxTurns: DefaultMaxTurns}
}

// Ask sends the help preamble, the session's earlier questions and the new
// question, then records the exchange. Earlier model replies are not
// resent. A failed call leaves the history unchanged.
func (a *Assistant) Ask(ctx context.Context, s *session.Session, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	reply, err := a.gen.Generate(ctx, a.messages(s.History(), question))
	if err != nil {
		return "", fmt.Errorf("asking for help: %w", err)
	}
	reply = strings.TrimSpace(reply)
	s.AppendExchange(question, reply)
	return reply, nil
}

func (a *Assistant) messages(history []types.ChatMessage, question string) []types.ChatMessage {
	var prior []string
	for _, m := range history {
		if m.Role == types.RoleUser {
			prior = append(prior, m.Text)
		}
	}
	if a.maxTurns > 0 && len(prior) > a.maxTurns {
		prior = prior[len(prior)-a.maxTurns:]
	}

	msgs := make([]types.ChatMessage, 0, len(prior)+2)
	msgs = append(msgs, types.ChatMessage{Role: types.RoleUser, Text: preamble + HelpText})
	for _, q := range prior {
		msgs = append(msgs, types.ChatMessage{Role: types.RoleUser, Text: q})
	}
	return append(msgs, types.ChatMessage{Role: types.RoleUser, Text: question})
}
