// Package corpus loads corpus documents and turns their Sources into
// canonical records.
package corpus

import (
	"errors"
	"fmt"
	"os"

	"github.com/danielolaszy/convostat/internal/adapter"
	"github.com/danielolaszy/convostat/internal/logging"
	"github.com/danielolaszy/convostat/pkg/models"
	"github.com/tidwall/gjson"
)

// Source names a corpus document and how it should be read and labelled.
type Source struct {
	Path  string
	Label string
	// Kind is used for items that carry no Type field
	Kind models.SourceKind
}

// Corpus is the adapted content of one Source.
type Corpus struct {
	Source  Source
	Records []models.Record
	// Skipped lists the items rejected by the adapter
	Skipped []*models.SchemaError
	// Enriched counts records whose language was looked up on GitHub
	Enriched int
}

// Load reads the document at src.Path and adapts its Sources. A missing or
// invalid document yields a *models.LoadError; rejected items are logged and
// collected in Corpus.Skipped.
func Load(src Source, a *adapter.Adapter) (*Corpus, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, &models.LoadError{Path: src.Path, Err: err}
	}
	c, err := Parse(src, data, a)
	if err != nil {
		return nil, err
	}

	logging.Info("loaded corpus",
		"path", src.Path,
		"label", src.Label,
		"records", len(c.Records),
		"skipped", len(c.Skipped))
	return c, nil
}

// Parse adapts an in-memory corpus document.
func Parse(src Source, data []byte, a *adapter.Adapter) (*Corpus, error) {
	if !gjson.ValidBytes(data) {
		return nil, &models.LoadError{Path: src.Path, Err: errors.New("document is not valid JSON")}
	}

	sources := gjson.GetBytes(data, "Sources")
	if !sources.IsArray() {
		return nil, &models.LoadError{Path: src.Path, Err: fmt.Errorf("document has no Sources array")}
	}

	c := &Corpus{Source: src}
	for i, item := range sources.Array() {
		record, err := a.Adapt(i, item, src.Kind)
		if err != nil {
			var schemaErr *models.SchemaError
			if !errors.As(err, &schemaErr) {
				return nil, fmt.Errorf("failed to adapt source %d of %s: %w", i, src.Path, err)
			}
			logging.Warn("skipping source",
				"corpus", src.Path,
				"index", schemaErr.Index,
				"record", schemaErr.ID,
				"reason", schemaErr.Error())
			c.Skipped = append(c.Skipped, schemaErr)
			continue
		}
		c.Records = append(c.Records, record)
	}

	return c, nil
}

// Name returns the label of the corpus, or its path when it has none.
func (c *Corpus) Name() string {
	if c.Source.Label != "" {
		return c.Source.Label
	}
	return c.Source.Path
}
