package model

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tidwall/gjson"
)

// TagForm is the element shape of a tag list. It is decided once per list
// from the first element.
type TagForm int

const (
	// TagFormPlain is a list of bare strings such as ["v1.0.0", "v1.1.0"]
	TagFormPlain TagForm = iota + 1
	// TagFormRecord is a list of objects carrying the tag text in a field
	TagFormRecord
)

// String returns the name of the form
func (f TagForm) String() string {
	switch f {
	case TagFormPlain:
		return "plain"
	case TagFormRecord:
		return "record"
	default:
		return "unknown"
	}
}

// tagRecordFields are the record fields holding the tag text, in lookup order
var tagRecordFields = []string{"tag", "name"}

// Tag is a single version tag. The original JSON element is kept so that
// record fields other than the tag text survive a round trip.
type Tag struct {
	Name string
	raw  json.RawMessage
}

// TagList is the tagInfo property of an action
type TagList struct {
	form TagForm
	tags []Tag

	// raw holds a tagInfo value that is not a sequence. Such lists are
	// passed through untouched and never trimmed.
	raw json.RawMessage
}

// NewPlainTagList creates a tag list of bare strings
func NewPlainTagList(names ...string) *TagList {
	tags := make([]Tag, len(names))
	for i, name := range names {
		tags[i] = Tag{Name: name}
	}
	return &TagList{form: TagFormPlain, tags: tags}
}

// NewRecordTagList creates a tag list of {"tag": name} records
func NewRecordTagList(names ...string) *TagList {
	tags := make([]Tag, len(names))
	for i, name := range names {
		tags[i] = Tag{Name: name}
	}
	return &TagList{form: TagFormRecord, tags: tags}
}

// Form returns the element shape of the list
func (l *TagList) Form() TagForm {
	return l.form
}

// IsSequence reports whether tagInfo was a JSON array
func (l *TagList) IsSequence() bool {
	return l != nil && l.raw == nil
}

// Len returns the number of tags
func (l *TagList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.tags)
}

// Names returns the tag text of every element in list order
func (l *TagList) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, len(l.tags))
	for i, t := range l.tags {
		names[i] = t.Name
	}
	return names
}

// Clone returns a copy that can be trimmed without touching the receiver
func (l *TagList) Clone() *TagList {
	if l == nil {
		return nil
	}
	return &TagList{
		form: l.form,
		tags: slices.Clone(l.tags),
		raw:  slices.Clone(l.raw),
	}
}

// TrimToLatest keeps the newest maxCount tags ordered newest first. Lists
// that are not a sequence or already fit the window are left as is. It
// returns true when the list was changed.
func (l *TagList) TrimToLatest(maxCount int) bool {
	if !l.IsSequence() || maxCount < 0 || len(l.tags) <= maxCount {
		return false
	}

	sorted := slices.Clone(l.tags)
	slices.SortStableFunc(sorted, func(a, b Tag) int {
		return CompareTagsDesc(a.Name, b.Name)
	})
	l.tags = sorted[:maxCount]
	return true
}

// MarshalJSON implements json.Marshaler
func (l *TagList) MarshalJSON() ([]byte, error) {
	if l.raw != nil {
		return l.raw, nil
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, t := range l.tags {
		if i > 0 {
			buf.WriteByte(',')
		}
		elem, err := l.marshalTag(t)
		if err != nil {
			return nil, err
		}
		buf.Write(elem)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (l *TagList) marshalTag(t Tag) ([]byte, error) {
	if t.raw != nil {
		return t.raw, nil
	}

	var v any = t.Name
	if l.form == TagFormRecord {
		v = map[string]string{tagRecordFields[0]: t.Name}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal tag", goerr.V("tag", t.Name))
	}
	return data, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (l *TagList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*l = TagList{raw: slices.Clone(trimmed)}
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return goerr.Wrap(err, "failed to unmarshal tagInfo")
	}

	list := TagList{form: TagFormPlain, tags: make([]Tag, len(elems))}
	if len(elems) > 0 && bytes.HasPrefix(bytes.TrimSpace(elems[0]), []byte("{")) {
		list.form = TagFormRecord
	}

	for i, elem := range elems {
		list.tags[i] = Tag{
			Name: list.tagText(elem),
			raw:  slices.Clone(elem),
		}
	}

	*l = list
	return nil
}

// tagText extracts the comparable text of one element. Elements that do
// not fit the list's form yield an empty string and sort last.
func (l *TagList) tagText(elem json.RawMessage) string {
	if l.form == TagFormPlain {
		res := gjson.ParseBytes(elem)
		if res.Type != gjson.String {
			return ""
		}
		return res.Str
	}

	for _, field := range tagRecordFields {
		if res := gjson.GetBytes(elem, field); res.Type == gjson.String {
			return res.Str
		}
	}
	return ""
}
