// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the post-engine pipeline:
// topic records and the topic store, ledger entries, archived drafts and the
// runtime configuration.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TopicRecord is one entry in a bucket: the topic phrase and an optional
// image URL discovered while scraping.
type TopicRecord struct {
	// Topic is the phrase the post is written about. Deduplication keys on it.
	Topic string `json:"topic" yaml:"topic"`

	// Image is an image URL, empty when the topic has none.
	Image string `json:"image" yaml:"image,omitempty"`
}

// HasImage reports whether the record carries an image URL.
func (r TopicRecord) HasImage() bool {
	return r.Image != ""
}

// MarshalJSON writes the record as {"topic": ..., "image": ...} with a null
// image when none is set.
func (r TopicRecord) MarshalJSON() ([]byte, error) {
	out := struct {
		Topic string  `json:"topic"`
		Image *string `json:"image"`
	}{Topic: r.Topic}
	if r.Image != "" {
		img := r.Image
		out.Image = &img
	}
	return marshalNoEscape(out)
}

// UnmarshalJSON accepts either a bare string or an object with topic and
// image fields, so older topic files keep loading.
func (r *TopicRecord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = TopicRecord{Topic: s}
		return nil
	}

	var obj struct {
		Topic string  `json:"topic"`
		Image *string `json:"image"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("topic entry must be a string or {topic, image} object: %w", err)
	}
	*r = TopicRecord{Topic: obj.Topic}
	if obj.Image != nil {
		r.Image = *obj.Image
	}
	return nil
}

// UsedEntry identifies a topic within its bucket. The ledger stores it as a
// two-element JSON array.
type UsedEntry struct {
	Bucket string
	Topic  string
}

// MarshalJSON writes the entry as [bucket, topic].
func (e UsedEntry) MarshalJSON() ([]byte, error) {
	return marshalNoEscape([2]string{e.Bucket, e.Topic})
}

// UnmarshalJSON reads a [bucket, topic] pair.
func (e *UsedEntry) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("ledger entry must be a [bucket, topic] array: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("ledger entry must have 2 elements, got %d", len(pair))
	}
	e.Bucket, e.Topic = pair[0], pair[1]
	return nil
}

// String formats the entry for log output.
func (e UsedEntry) String() string {
	return e.Bucket + "/" + e.Topic
}

// TopicStore maps bucket names to ordered topic lists. Bucket order follows
// the order buckets were added or read from the file.
type TopicStore struct {
	order  []string
	topics map[string][]TopicRecord
}

// NewTopicStore returns an empty store.
func NewTopicStore() *TopicStore {
	return &TopicStore{topics: make(map[string][]TopicRecord)}
}

// Buckets returns bucket names in store order.
func (s *TopicStore) Buckets() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Topics returns the records of a bucket; nil when the bucket is unknown.
func (s *TopicStore) Topics(bucket string) []TopicRecord {
	if s == nil {
		return nil
	}
	return s.topics[bucket]
}

// Set replaces the records of a bucket, appending the bucket to the order
// when it is new.
func (s *TopicStore) Set(bucket string, records []TopicRecord) {
	if s.topics == nil {
		s.topics = make(map[string][]TopicRecord)
	}
	if _, ok := s.topics[bucket]; !ok {
		s.order = append(s.order, bucket)
	}
	if records == nil {
		records = []TopicRecord{}
	}
	s.topics[bucket] = records
}

// Lookup finds the first record in bucket whose text equals topic.
func (s *TopicStore) Lookup(bucket, topic string) (TopicRecord, bool) {
	for _, r := range s.Topics(bucket) {
		if r.Topic == topic {
			return r, true
		}
	}
	return TopicRecord{}, false
}

// Pairs flattens the store into (bucket, topic) entries in store order.
func (s *TopicStore) Pairs() []UsedEntry {
	if s == nil {
		return nil
	}
	var pairs []UsedEntry
	for _, b := range s.order {
		for _, r := range s.topics[b] {
			pairs = append(pairs, UsedEntry{Bucket: b, Topic: r.Topic})
		}
	}
	return pairs
}

// Len returns the total number of topics across buckets.
func (s *TopicStore) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, recs := range s.topics {
		n += len(recs)
	}
	return n
}

// IsEmpty reports whether no bucket holds any topic.
func (s *TopicStore) IsEmpty() bool {
	return s.Len() == 0
}

// MarshalJSON writes buckets in store order.
func (s *TopicStore) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(b)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalNoEscape(s.topics[b])
		if err != nil {
			return nil, fmt.Errorf("bucket %q: %w", b, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a bucket object, keeping the key order of the document.
func (s *TopicStore) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("topic store must be a JSON object of buckets")
	}

	fresh := NewTopicStore()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		bucket, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in topic store", tok)
		}
		var records []TopicRecord
		if err := dec.Decode(&records); err != nil {
			return fmt.Errorf("bucket %q: %w", bucket, err)
		}
		fresh.Set(bucket, records)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// MarshalYAML exports the store as an ordered list of buckets.
func (s *TopicStore) MarshalYAML() (interface{}, error) {
	type bucketYAML struct {
		Bucket string        `yaml:"bucket"`
		Topics []TopicRecord `yaml:"topics"`
	}
	out := make([]bucketYAML, 0, len(s.order))
	for _, b := range s.order {
		out = append(out, bucketYAML{Bucket: b, Topics: s.topics[b]})
	}
	return out, nil
}

// marshalNoEscape encodes v without HTML escaping so topic text with &, <
// or > round-trips readably.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
