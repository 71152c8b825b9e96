package normalize

import (
	"github.com/okian/handicap/internal/domain/model"
	"github.com/tidwall/gjson"
)

// Document field names.
const (
	FieldRevisions = "handicap_revisions"
	FieldRevDate   = "RevDate"
	FieldValue     = "Value"
	FieldLowHI     = "LowHI"
)

// ParseDocument extracts the raw revisions of a player document. The document must be a JSON
// object with a handicap_revisions array of objects. RevDate is checked later, and only for
// revisions that survive sentinel filtering.
func ParseDocument(player string, doc []byte) ([]model.RawRevision, error) {
	if !gjson.ValidBytes(doc) {
		return nil, &ParseError{Player: player, Index: DocumentIndex, Field: FieldRevisions, Err: ErrMalformedDocument}
	}
	list := gjson.GetBytes(doc, FieldRevisions)
	if !list.IsArray() {
		return nil, &ParseError{Player: player, Index: DocumentIndex, Field: FieldRevisions, Err: ErrMalformedDocument}
	}

	items := list.Array()
	out := make([]model.RawRevision, 0, len(items))
	for i, rev := range items {
		if !rev.IsObject() {
			return nil, &ParseError{Player: player, Index: i, Field: FieldRevisions, Raw: rev.Raw, Err: ErrMalformedDocument}
		}
		out = append(out, model.RawRevision{
			RevDate: revDateText(rev.Get(FieldRevDate)),
			Value:   rawValue(rev.Get(FieldValue)),
			LowHI:   rawValue(rev.Get(FieldLowHI)),
		})
	}
	return out, nil
}

func rawValue(r gjson.Result) model.RawValue {
	switch r.Type {
	case gjson.Null:
		if !r.Exists() {
			return model.RawValue{Kind: model.RawAbsent}
		}
		return model.Null()
	case gjson.Number:
		return model.Number(r.Num, r.Raw)
	case gjson.String:
		return model.Str(r.Str)
	default:
		return model.RawValue{Kind: model.RawOther, Text: r.Raw}
	}
}

// revDateText returns a string RevDate as is and the raw token of anything else; an absent
// RevDate is empty.
func revDateText(r gjson.Result) string {
	if r.Type == gjson.String {
		return r.Str
	}
	return r.Raw
}
