// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zotero

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/literature-helper/internal/logging"
	"github.com/pdiddy/literature-helper/pkg/types"
)

// Library is the subset of the Zotero API the sink needs.
type Library interface {
	Search(ctx context.Context, q, itemType string, mode QueryMode) ([]Item, error)
	Create(ctx context.Context, items []types.ReferenceItem) (*CreateResult, error)
}

// Sink saves analyzed papers into a Zotero library.
type Sink struct {
	lib          Library
	collectionID string
	log          *zap.Logger
}

// NewSink returns a Sink writing to lib. A non-empty collectionID files
// every created item into that collection.
func NewSink(lib Library, collectionID string, log *zap.Logger) *Sink {
	return &Sink{lib: lib, collectionID: collectionID, log: logging.OrNop(log)}
}

// Save creates a reference item for p unless an equivalent item already
// exists and allowDuplicates is false. Errors never escape: they are
// reported as a SaveFailed outcome.
func (s *Sink) Save(ctx context.Context, p types.Paper, a types.Analysis, allowDuplicates bool) types.SaveOutcome {
	log := s.log.With(zap.String("title", p.Title))

	if !allowDuplicates {
		dup, err := s.findDuplicate(ctx, p)
		if err != nil {
			log.Warn("duplicate check failed", zap.Error(err))
			return types.SaveOutcome{Status: types.SaveFailed, Message: fmt.Sprintf("duplicate check: %v", err)}
		}
		if dup != nil {
			log.Info("skipped duplicate", zap.String("key", dup.Key))
			return types.SaveOutcome{
				Status:  types.SaveDuplicate,
				Key:     dup.Key,
				Message: fmt.Sprintf("already in library as %s", dup.Key),
			}
		}
	}

	item := NewReferenceItem(p, a, s.collectionID)
	result, err := s.lib.Create(ctx, []types.ReferenceItem{item})
	if err != nil {
		log.Warn("create failed", zap.Error(err))
		return types.SaveOutcome{Status: types.SaveFailed, Message: err.Error()}
	}
	if f, ok := result.Failed["0"]; ok {
		log.Warn("item rejected", zap.Int("code", f.Code), zap.String("message", f.Message))
		return types.SaveOutcome{
			Status:  types.SaveFailed,
			Message: fmt.Sprintf("%v: %s (code %d)", ErrCreateFailed, f.Message, f.Code),
		}
	}
	keys := result.Keys()
	if len(keys) == 0 {
		return types.SaveOutcome{Status: types.SaveFailed, Message: "no item created"}
	}
	log.Info("saved", zap.String("key", keys[0]))
	return types.SaveOutcome{Status: types.SaveCreated, Key: keys[0]}
}

// findDuplicate searches journal articles by title, or by DOI across all
// fields when the title is empty. A paper with a DOI matches on normalized
// DOI only; without one it matches on normalized title.
func (s *Sink) findDuplicate(ctx context.Context, p types.Paper) (*Item, error) {
	q, mode := strings.TrimSpace(p.Title), QueryTitleCreatorYear
	if q == "" {
		q, mode = strings.TrimSpace(p.DOI), QueryEverything
	}
	if q == "" {
		return nil, nil
	}

	items, err := s.lib.Search(ctx, q, types.ItemTypeJournalArticle, mode)
	if err != nil {
		return nil, err
	}

	doi := types.NormalizeDOI(p.DOI)
	title := types.NormalizeTitle(p.Title)
	for i := range items {
		d := items[i].Data
		if doi != "" {
			if types.NormalizeDOI(d.DOI) == doi {
				return &items[i], nil
			}
			continue
		}
		if title != "" && types.NormalizeTitle(d.Title) == title {
			return &items[i], nil
		}
	}
	return nil, nil
}

// NewReferenceItem maps a paper and its analysis to a journalArticle item.
// Papers without structured authors get the placeholder creator.
func NewReferenceItem(p types.Paper, a types.Analysis, collectionID string) types.ReferenceItem {
	item := types.ReferenceItem{
		ItemType:     types.ItemTypeJournalArticle,
		Title:        p.Title,
		AbstractNote: p.Abstract,
		URL:          p.URL,
		DOI:          p.DOI,
		Tags:         []types.Tag{},
		Creators:     []types.Creator{},
	}
	for _, t := range a.Tags {
		if t = strings.TrimSpace(t); t != "" {
			item.Tags = append(item.Tags, types.Tag{Tag: t})
		}
	}
	for _, name := range p.Authors {
		given, family := types.SplitName(name)
		if family == "" {
			continue
		}
		item.Creators = append(item.Creators, types.Creator{CreatorType: "author", FirstName: given, LastName: family})
	}
	if len(item.Creators) == 0 {
		item.Creators = append(item.Creators, types.Creator{
			CreatorType: "author",
			FirstName:   types.PlaceholderFirstName,
			LastName:    types.PlaceholderLastName,
		})
	}
	if collectionID != "" {
		item.Collections = []string{collectionID}
	}
	return item
}
