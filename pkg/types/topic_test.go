// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestTopicStoreUnmarshalMixedShapes(t *testing.T) {
	data := []byte(`{
		"career": ["Topic A", {"topic": "Topic B", "image": "https://img/b.png"}],
		"ai": [{"topic": "Topic C", "image": null}, {"topic": "Topic D"}]
	}`)

	var s TopicStore
	require.NoError(t, json.Unmarshal(data, &s))

	assert.Equal(t, []string{"career", "ai"}, s.Buckets())
	assert.Equal(t, []TopicRecord{
		{Topic: "Topic A"},
		{Topic: "Topic B", Image: "https://img/b.png"},
	}, s.Topics("career"))
	assert.Equal(t, []TopicRecord{{Topic: "Topic C"}, {Topic: "Topic D"}}, s.Topics("ai"))
	assert.Equal(t, 4, s.Len())
}

func TestTopicStoreKeepsDocumentOrder(t *testing.T) {
	data := []byte(`{"zeta": ["z"], "alpha": ["a"], "mid": []}`)

	var s TopicStore
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, s.Buckets())

	out, err := json.Marshal(&s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":[{"topic":"z","image":null}],"alpha":[{"topic":"a","image":null}],"mid":[]}`, string(out))
	assert.Regexp(t, `^\{"zeta".*"alpha".*"mid"`, string(out))
}

func TestTopicStoreRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"array root", `[["career", "x"]]`},
		{"number entry", `{"career": [42]}`},
		{"bucket not a list", `{"career": "x"}`},
		{"truncated", `{"career": ["x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s TopicStore
			assert.Error(t, json.Unmarshal([]byte(tt.data), &s))
		})
	}
}

func TestTopicStoreLookupAndPairs(t *testing.T) {
	s := NewTopicStore()
	s.Set("career", []TopicRecord{{Topic: "A", Image: "img"}, {Topic: "B"}})
	s.Set("ai", []TopicRecord{{Topic: "C"}})

	rec, ok := s.Lookup("career", "A")
	require.True(t, ok)
	assert.Equal(t, "img", rec.Image)

	_, ok = s.Lookup("ai", "A")
	assert.False(t, ok, "lookup is scoped to the bucket")

	assert.Equal(t, []UsedEntry{
		{Bucket: "career", Topic: "A"},
		{Bucket: "career", Topic: "B"},
		{Bucket: "ai", Topic: "C"},
	}, s.Pairs())
}

func TestTopicStoreIsEmpty(t *testing.T) {
	s := NewTopicStore()
	assert.True(t, s.IsEmpty())

	s.Set("career", nil)
	s.Set("ai", []TopicRecord{})
	assert.True(t, s.IsEmpty(), "buckets without topics do not count")

	s.Set("ai", []TopicRecord{{Topic: "x"}})
	assert.False(t, s.IsEmpty())

	var nilStore *TopicStore
	assert.True(t, nilStore.IsEmpty())
}

func TestTopicRecordMarshalDoesNotEscapeHTML(t *testing.T) {
	out, err := json.Marshal(TopicRecord{Topic: "Pros & cons of <remote> work"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "Pros & cons")
}

func TestUsedEntryJSON(t *testing.T) {
	out, err := json.Marshal([]UsedEntry{{Bucket: "career", Topic: "Topic A"}})
	require.NoError(t, err)
	assert.Equal(t, `[["career","Topic A"]]`, string(out))

	var e UsedEntry
	require.NoError(t, json.Unmarshal([]byte(`["ai","Topic B"]`), &e))
	assert.Equal(t, UsedEntry{Bucket: "ai", Topic: "Topic B"}, e)

	assert.Error(t, json.Unmarshal([]byte(`["ai"]`), &e))
	assert.Error(t, json.Unmarshal([]byte(`{"bucket":"ai"}`), &e))
}

func TestTopicStoreYAML(t *testing.T) {
	s := NewTopicStore()
	s.Set("career", []TopicRecord{{Topic: "A", Image: "img"}})
	s.Set("ai", []TopicRecord{{Topic: "B"}})

	out, err := yaml.Marshal(s)
	require.NoError(t, err)

	var decoded []struct {
		Bucket string        `yaml:"bucket"`
		Topics []TopicRecord `yaml:"topics"`
	}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "career", decoded[0].Bucket)
	assert.Equal(t, "img", decoded[0].Topics[0].Image)
	assert.Equal(t, "ai", decoded[1].Bucket)
}
