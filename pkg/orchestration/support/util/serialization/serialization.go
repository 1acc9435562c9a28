// Package serialization provides helpers for serializing the document maps
// used throughout the orchestration engine (configuration content, job
// configuration data, request/response snapshots) and for masking sensitive
// keys before anything reaches a log line.
package serialization

import (
	"encoding/json"

	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
)

// maskedValue replaces sensitive values in log output.
const maskedValue = "********"

// MaskedDocument returns a copy of doc with the given keys masked. The
// input document is never mutated.
func MaskedDocument(doc map[string]interface{}, maskedKeys []string) map[string]interface{} {
	if len(doc) == 0 {
		return map[string]interface{}{}
	}

	masked := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		masked[k] = v
	}
	for _, key := range maskedKeys {
		if _, ok := masked[key]; ok {
			masked[key] = maskedValue
		}
	}
	return masked
}

// MarshalDocument serializes a document map into a JSON byte slice.
// A nil document serializes to an empty JSON object.
func MarshalDocument(doc map[string]interface{}) ([]byte, error) {
	if doc == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, exception.NewBatchError("serialization", "failed to serialize document", err, false)
	}
	return data, nil
}

// UnmarshalDocument deserializes a JSON byte slice into a document map,
// replacing any existing content of *doc.
func UnmarshalDocument(data []byte, doc *map[string]interface{}) error {
	if *doc == nil {
		*doc = make(map[string]interface{})
	} else {
		for k := range *doc {
			delete(*doc, k)
		}
	}

	if len(data) == 0 || string(data) == "null" || string(data) == "{}" {
		return nil
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return exception.NewBatchError("serialization", "failed to deserialize document", err, false)
	}
	return nil
}
