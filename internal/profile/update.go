package profile

import "encoding/json"

// Update is a typed write of exactly one top-level field.
type Update struct {
	field Field
	patch Partial
}

// Field returns the field the update writes.
func (u Update) Field() Field { return u.field }

// Partial returns the update as a one-field Partial.
func (u Update) Partial() Partial { return u.patch }

// SetText builds an update for a scalar text field.
func SetText(f Field, value string) (Update, error) {
	if k, ok := fieldKinds[f]; !ok || k != kindText {
		return Update{}, &FieldError{Field: f, Message: "not a text field"}
	}
	var p Partial
	p.set(f, value)
	return Update{field: f, patch: p}, nil
}

// SetList builds an update replacing a string list field.
func SetList(f Field, values []string) (Update, error) {
	if k, ok := fieldKinds[f]; !ok || k != kindList {
		return Update{}, &FieldError{Field: f, Message: "not a list field"}
	}
	if values == nil {
		values = []string{}
	}
	var p Partial
	p.set(f, cloneStrings(values))
	return Update{field: f, patch: p}, nil
}

// SetPositions builds an update replacing the work history.
func SetPositions(positions []Position) Update {
	l := append([]Position{}, positions...)
	return Update{field: FieldPositions, patch: Partial{Positions: &l}}
}

// SetEducation builds an update replacing the education list.
func SetEducation(education []Education) Update {
	l := append([]Education{}, education...)
	return Update{field: FieldEducation, patch: Partial{Education: &l}}
}

// SetBrands builds an update replacing the brand list.
func SetBrands(brands []Brand) Update {
	l := append([]Brand{}, brands...)
	return Update{field: FieldBrands, patch: Partial{Brands: &l}}
}

// SetSocialLinks builds an update replacing the social links record.
func SetSocialLinks(links SocialLinks) Update {
	return Update{field: FieldSocialLinks, patch: Partial{SocialLinks: &links}}
}

// SetContact builds an update replacing the contact record.
func SetContact(contact Contact) Update {
	return Update{field: FieldContact, patch: Partial{Contact: &contact}}
}

// DecodeUpdate builds an update for f from a JSON-encoded value of the
// field's type. It is the entry point for untyped callers such as the HTTP API.
func DecodeUpdate(f Field, raw json.RawMessage) (Update, error) {
	kind, ok := fieldKinds[f]
	if !ok {
		return Update{}, &FieldError{Field: f, Message: "unknown field"}
	}
	var err error
	switch kind {
	case kindText:
		var v string
		if err = json.Unmarshal(raw, &v); err == nil {
			return SetText(f, v)
		}
	case kindList:
		var v []string
		if err = json.Unmarshal(raw, &v); err == nil {
			return SetList(f, v)
		}
	case kindPositions:
		var v []Position
		if err = json.Unmarshal(raw, &v); err == nil {
			return SetPositions(v), nil
		}
	case kindEducation:
		var v []Education
		if err = json.Unmarshal(raw, &v); err == nil {
			return SetEducation(v), nil
		}
	case kindBrands:
		var v []Brand
		if err = json.Unmarshal(raw, &v); err == nil {
			return SetBrands(v), nil
		}
	case kindSocialLinks:
		var v SocialLinks
		if err = json.Unmarshal(raw, &v); err == nil {
			return SetSocialLinks(v), nil
		}
	case kindContact:
		var v Contact
		if err = json.Unmarshal(raw, &v); err == nil {
			return SetContact(v), nil
		}
	}
	return Update{}, &FieldError{Field: f, Message: "value does not match field type", Cause: err}
}
