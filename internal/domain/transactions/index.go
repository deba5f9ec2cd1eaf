package transactions

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/bachatbox/bachatbox/internal/storage"
)

// indexDocument is the searchable projection of one transaction.
type indexDocument struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Type        string `json:"type"`
}

// Index is an in-memory full-text index over transaction descriptions and
// categories. It is rebuilt from scratch at startup and kept current by the
// service on every write.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
}

// NewIndex builds an empty in-memory index.
func NewIndex() (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	return &Index{index: index}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", textFieldMapping)
	docMapping.AddFieldMappingsAt("type", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

// IndexTransactions adds or replaces documents for the given transactions.
func (ix *Index) IndexTransactions(_ context.Context, txs []storage.Transaction) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	batch := ix.index.NewBatch()
	for _, tx := range txs {
		doc := indexDocument{
			Description: tx.Description,
			Category:    tx.Category,
			Type:        tx.TransactionType,
		}
		if err := batch.Index(strconv.FormatInt(tx.ID, 10), doc); err != nil {
			return fmt.Errorf("failed to index transaction %d: %w", tx.ID, err)
		}
	}
	if err := ix.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute index batch: %w", err)
	}
	return nil
}

// Close releases the underlying bleve index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.index.Close()
}

// Remove drops a transaction's document.
func (ix *Index) Remove(id int64) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.index.Delete(strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("failed to remove transaction %d from index: %w", id, err)
	}
	return nil
}

// Search returns the ids of transactions matching the query, best first.
// One edit of fuzziness tolerates typos in the query.
func (ix *Index) Search(query string, limit int) ([]int64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1)

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = limit

	result, err := ix.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	ids := make([]int64, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
