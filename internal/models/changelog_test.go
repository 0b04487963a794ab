package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, ts int64, device string) ChangeLogEntry {
	return ChangeLogEntry{
		ChangeID:   id,
		DeviceID:   device,
		Timestamp:  ts,
		ChangeType: ChangeUpdate,
		EntityType: EntitySong,
		EntityID:   "song-1",
	}
}

func TestChangeLog_Since(t *testing.T) {
	log := &ChangeLog{}
	log.Append(entry("c1", 100, "a"), entry("c2", 200, "a"), entry("c3", 300, "b"))

	tests := []struct {
		name   string
		cursor string
		want   []string
	}{
		{name: "empty cursor returns full log", cursor: "", want: []string{"c1", "c2", "c3"}},
		{name: "unknown cursor returns full log", cursor: "nope", want: []string{"c1", "c2", "c3"}},
		{name: "after first", cursor: "c1", want: []string{"c2", "c3"}},
		{name: "after last", cursor: "c3", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := log.Since(tt.cursor)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ChangeID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestChangeLog_SinceNeverIncludesCursor(t *testing.T) {
	log := &ChangeLog{}
	log.Append(entry("c1", 100, "a"), entry("c2", 200, "a"))

	got := log.Since("c1")
	for _, e := range got {
		assert.NotEqual(t, "c1", e.ChangeID)
	}
	require.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ChangeID)

	// результат - копия, изменение не трогает журнал
	got[0].ChangeID = "mutated"
	assert.Equal(t, "c2", log.Changes[1].ChangeID)
}

func TestChangeLog_AppendDedupe(t *testing.T) {
	log := &ChangeLog{}
	added := log.Append(entry("c1", 100, "a"), entry("c2", 200, "a"))
	assert.Equal(t, 2, added)
	assert.Equal(t, "c2", log.LastChangeID)

	added = log.Append(entry("c2", 200, "a"), entry("c3", 300, "a"), entry("c3", 300, "a"))
	assert.Equal(t, 1, added)
	assert.Len(t, log.Changes, 3)
	assert.Equal(t, "c3", log.LastChangeID)

	added = log.Append(entry("c1", 100, "a"))
	assert.Equal(t, 0, added)
	assert.Equal(t, "c3", log.LastChangeID)
}

func TestChangeLogEntry_Ordering(t *testing.T) {
	tests := []struct {
		name      string
		a, b      ChangeLogEntry
		before    bool
		newerThan bool
	}{
		{
			name:      "earlier timestamp",
			a:         entry("z", 100, "a"),
			b:         entry("a", 200, "a"),
			before:    true,
			newerThan: false,
		},
		{
			name:      "same timestamp, change id breaks order",
			a:         entry("c1", 100, "a"),
			b:         entry("c2", 100, "a"),
			before:    true,
			newerThan: false,
		},
		{
			name:      "same timestamp, greater device wins",
			a:         entry("c1", 100, "dev-b"),
			b:         entry("c2", 100, "dev-a"),
			before:    true,
			newerThan: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.before, tt.a.Before(&tt.b))
			assert.Equal(t, tt.newerThan, tt.a.IsNewerThan(&tt.b))
		})
	}
}

func TestChangeLogEntry_Validate(t *testing.T) {
	valid := entry("c1", 1, "a")
	require.NoError(t, valid.Validate())

	noEntity := valid
	noEntity.EntityID = ""
	assert.Error(t, noEntity.Validate())

	badType := valid
	badType.ChangeType = "RENAME"
	assert.Error(t, badType.Validate())

	badEntity := valid
	badEntity.EntityType = "PLAYLIST"
	assert.Error(t, badEntity.Validate())
}

func TestMetadata_PreservesOrder(t *testing.T) {
	var m Metadata
	m = m.Set("version", "2").Set("baseVersion", "1").Set("fields", "title,key")

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"2","baseVersion":"1","fields":"title,key"}`, string(raw))
	assert.Equal(t, `{"version":"2","baseVersion":"1","fields":"title,key"}`, string(raw))

	var decoded Metadata
	require.NoError(t, json.Unmarshal([]byte(`{"z":"1","a":"2","m":"3"}`), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "z", decoded[0].Key)
	assert.Equal(t, "a", decoded[1].Key)
	assert.Equal(t, "m", decoded[2].Key)
}

func TestMetadata_Accessors(t *testing.T) {
	m := Metadata{}.Set(MetaFields, "title, key,").Set(MetaVersion, "7")

	assert.Equal(t, []string{"title", "key"}, m.Fields())

	v, ok := m.Int(MetaVersion)
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)

	_, ok = m.Int(MetaBaseVersion)
	assert.False(t, ok)

	updated := m.Set(MetaVersion, "8")
	assert.Equal(t, "7", m.Value(MetaVersion), "Set не должен менять исходный срез")
	assert.Equal(t, "8", updated.Value(MetaVersion))
	assert.Len(t, updated, 2)
}

func TestMetadata_UnmarshalErrors(t *testing.T) {
	var m Metadata
	assert.Error(t, json.Unmarshal([]byte(`["a","b"]`), &m))
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &m))

	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.Nil(t, m)
}
