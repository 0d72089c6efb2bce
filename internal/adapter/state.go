package adapter

import (
	"fmt"
	"strings"

	"github.com/danielolaszy/convostat/pkg/models"
	"github.com/tidwall/gjson"
)

// StateReader reads the declared resolution state of a corpus item. Each
// source kind encodes it differently, so there is one reader per kind.
type StateReader interface {
	// ResolvedState returns the declared state or an error when the field is
	// missing or has an unexpected encoding.
	ResolvedState(item gjson.Result) (models.State, error)
}

// stringState reads "CLOSED"/"OPEN" style fields used by pull requests and
// issues. Any string other than CLOSED counts as open.
type stringState struct {
	field string
}

func (s stringState) ResolvedState(item gjson.Result) (models.State, error) {
	v := item.Get(s.field)
	if !v.Exists() || v.Type == gjson.Null {
		return "", fmt.Errorf("missing %s", s.field)
	}
	if v.Type != gjson.String {
		return "", fmt.Errorf("%s must be a string, got %s", s.field, v.Type)
	}
	if strings.TrimSpace(v.Str) == "CLOSED" {
		return models.Closed, nil
	}
	return models.Open, nil
}

// boolState reads boolean "closed" flags used by discussions.
type boolState struct {
	field string
}

func (b boolState) ResolvedState(item gjson.Result) (models.State, error) {
	v := item.Get(b.field)
	switch v.Type {
	case gjson.True:
		return models.Closed, nil
	case gjson.False:
		return models.Open, nil
	case gjson.Null:
		return "", fmt.Errorf("missing %s", b.field)
	}
	return "", fmt.Errorf("%s must be a boolean, got %s", b.field, v.Type)
}

var stateReaders = map[models.SourceKind]StateReader{
	models.PullRequest: stringState{field: "State"},
	models.Issue:       stringState{field: "State"},
	models.Discussion:  boolState{field: "Closed"},
}

// ReaderFor returns the StateReader registered for kind.
func ReaderFor(kind models.SourceKind) (StateReader, error) {
	r, ok := stateReaders[kind]
	if !ok {
		return nil, fmt.Errorf("no state reader for source kind %q", kind)
	}
	return r, nil
}
