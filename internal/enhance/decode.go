package enhance

import (
	"bytes"
	"encoding/json"
	"html"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/microcosm-cc/bluemonday"

	"github.com/jonathan/profile-studio/internal/llm"
	"github.com/jonathan/profile-studio/internal/profile"
)

// textPolicy strips every tag; suggestions are plain text.
var textPolicy = bluemonday.StrictPolicy()

// DecodePartial turns a model reply into a validated, markup-free Partial.
// Replies are unwrapped from code fences and repaired when they are not
// quite valid JSON. Keys that are not profile fields are rejected.
func DecodePartial(raw string) (profile.Partial, error) {
	text := llm.CleanJSONBlock(raw)
	if text == "" {
		return profile.Partial{}, &ResponseError{Message: "empty reply", Raw: raw}
	}
	if !json.Valid([]byte(text)) {
		repaired, err := jsonrepair.JSONRepair(text)
		if err != nil {
			return profile.Partial{}, &ResponseError{Message: "reply is not JSON", Raw: raw, Cause: err}
		}
		text = repaired
	}

	var p profile.Partial
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return profile.Partial{}, &ResponseError{Message: "reply does not match the profile shape", Raw: raw, Cause: err}
	}

	p, err := sanitize(p)
	if err != nil {
		return profile.Partial{}, &ResponseError{Message: "reply has invalid values", Raw: raw, Cause: err}
	}
	if err := p.Validate(); err != nil {
		return profile.Partial{}, &ResponseError{Message: "reply has invalid values", Raw: raw, Cause: err}
	}
	return p, nil
}

func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if c := cleanText(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// sanitize strips markup from every string in p.
func sanitize(p profile.Partial) (profile.Partial, error) {
	var out profile.Partial
	for _, f := range p.Fields() {
		v, _ := p.Value(f)
		var u profile.Update
		var err error
		switch val := v.(type) {
		case string:
			u, err = profile.SetText(f, cleanText(val))
		case []string:
			u, err = profile.SetList(f, cleanList(val))
		case []profile.Position:
			for i := range val {
				pos := &val[i]
				pos.Title, pos.Company = cleanText(pos.Title), cleanText(pos.Company)
				pos.Location, pos.Duration = cleanText(pos.Location), cleanText(pos.Duration)
				pos.Description, pos.Logo = cleanText(pos.Description), strings.TrimSpace(pos.Logo)
			}
			u = profile.SetPositions(val)
		case []profile.Education:
			for i := range val {
				e := &val[i]
				e.SchoolName, e.DegreeName = cleanText(e.SchoolName), cleanText(e.DegreeName)
				e.FieldOfStudy, e.Duration = cleanText(e.FieldOfStudy), cleanText(e.Duration)
			}
			u = profile.SetEducation(val)
		case []profile.Brand:
			for i := range val {
				b := &val[i]
				b.Name, b.Role, b.Duration = cleanText(b.Name), cleanText(b.Role), cleanText(b.Duration)
			}
			u = profile.SetBrands(val)
		case profile.SocialLinks:
			val.LinkedIn, val.Website = cleanText(val.LinkedIn), cleanText(val.Website)
			val.Instagram, val.Twitter = cleanText(val.Instagram), cleanText(val.Twitter)
			val.YouTube, val.Facebook = cleanText(val.YouTube), cleanText(val.Facebook)
			val.CompanyWebsite = cleanText(val.CompanyWebsite)
			u = profile.SetSocialLinks(val)
		case profile.Contact:
			val.EmailPrimary, val.PhonePrimary = cleanText(val.EmailPrimary), cleanText(val.PhonePrimary)
			val.WhatsApp, val.Address = cleanText(val.WhatsApp), cleanText(val.Address)
			val.Website = cleanText(val.Website)
			u = profile.SetContact(val)
		default:
			continue
		}
		if err != nil {
			return profile.Partial{}, err
		}
		out = out.Overlay(u.Partial())
	}
	return out, nil
}
