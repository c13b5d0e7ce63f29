package docstore

import "encoding/json"

// Document is a raw record as the remote store sees it: opaque fields plus
// the store-assigned identifier. A Document with an empty ID is unsaved.
type Document struct {
	ID   string
	Data map[string]any
}

// Codec translates between a caller's type and raw document fields. The
// store treats it as opaque; consumers supply one per document type.
type Codec[T any] interface {
	Encode(T) (map[string]any, error)
	Decode(Document) (T, error)
}

// JSONCodec round-trips values through encoding/json. The document ID is
// exposed to the typed value under the "id" key unless the payload already
// carries a non-empty one, so types with an `json:"id"` field pick up the
// store-assigned identifier on decode. An unsaved value's empty id never
// reaches the remote: it would otherwise shadow the assigned id on decode.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(v T) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if id, ok := data["id"]; ok && id == "" {
		delete(data, "id")
	}
	return data, nil
}

func (JSONCodec[T]) Decode(doc Document) (T, error) {
	var v T
	data := doc.Data
	if doc.ID != "" {
		if existing, ok := data["id"]; !ok || existing == "" {
			merged := make(map[string]any, len(data)+1)
			for k, val := range data {
				merged[k] = val
			}
			merged["id"] = doc.ID
			data = merged
		}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, err
	}
	return v, nil
}
