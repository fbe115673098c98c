package profile

import (
	"encoding/json"
	"strings"
)

// Value returns the current value of f, or nil for an unknown field.
func (d Data) Value(f Field) any {
	switch f {
	case FieldFullName:
		return d.FullName
	case FieldProfessionalTitle:
		return d.ProfessionalTitle
	case FieldTagline:
		return d.Tagline
	case FieldProfilePhoto:
		return d.ProfilePhoto
	case FieldAboutMe:
		return d.AboutMe
	case FieldPersonalStory30:
		return d.PersonalStory30
	case FieldTopHighlights:
		return cloneStrings(d.TopHighlights)
	case FieldExpertiseAreas:
		return cloneStrings(d.ExpertiseAreas)
	case FieldExpertiseDescriptions:
		return cloneStrings(d.ExpertiseDescriptions)
	case FieldSkills:
		return cloneStrings(d.Skills)
	case FieldAwards:
		return cloneStrings(d.Awards)
	case FieldWorkExperienceType:
		return d.WorkExperienceType
	case FieldImpactHeadline:
		return d.ImpactHeadline
	case FieldImpactStory:
		return d.ImpactStory
	case FieldPositions:
		return append([]Position(nil), d.Positions...)
	case FieldEducation:
		return append([]Education(nil), d.Education...)
	case FieldBrands:
		return append([]Brand(nil), d.Brands...)
	case FieldSocialLinks:
		return d.SocialLinks
	case FieldContact:
		return d.Contact
	}
	return nil
}

// set stores v, which must have the concrete type of f, into d.
func (d *Data) set(f Field, v any) {
	switch f {
	case FieldFullName:
		d.FullName = v.(string)
	case FieldProfessionalTitle:
		d.ProfessionalTitle = v.(string)
	case FieldTagline:
		d.Tagline = v.(string)
	case FieldProfilePhoto:
		d.ProfilePhoto = v.(string)
	case FieldAboutMe:
		d.AboutMe = v.(string)
	case FieldPersonalStory30:
		d.PersonalStory30 = v.(string)
	case FieldTopHighlights:
		d.TopHighlights = v.([]string)
	case FieldExpertiseAreas:
		d.ExpertiseAreas = v.([]string)
	case FieldExpertiseDescriptions:
		d.ExpertiseDescriptions = v.([]string)
	case FieldSkills:
		d.Skills = v.([]string)
	case FieldAwards:
		d.Awards = v.([]string)
	case FieldWorkExperienceType:
		d.WorkExperienceType = v.(string)
	case FieldImpactHeadline:
		d.ImpactHeadline = v.(string)
	case FieldImpactStory:
		d.ImpactStory = v.(string)
	case FieldPositions:
		d.Positions = v.([]Position)
	case FieldEducation:
		d.Education = v.([]Education)
	case FieldBrands:
		d.Brands = v.([]Brand)
	case FieldSocialLinks:
		d.SocialLinks = v.(SocialLinks)
	case FieldContact:
		d.Contact = v.(Contact)
	}
}

// Lookup resolves a "field" or "parent.key" path. Nested paths are only
// defined for socialLinks and contact.
func (d Data) Lookup(path string) (any, bool) {
	parent, key, nested := strings.Cut(path, ".")
	f := Field(parent)
	if !KnownField(f) {
		return nil, false
	}
	if !nested {
		return d.Value(f), true
	}
	switch f {
	case FieldSocialLinks:
		v, ok := d.SocialLinks.Get(key)
		return v, ok
	case FieldContact:
		v, ok := d.Contact.Get(key)
		return v, ok
	}
	return nil, false
}

// With returns a copy of d with p applied.
func (d Data) With(p Partial) Data {
	out := d.Clone()
	p.Apply(&out)
	return out
}

// TemplateData flattens d into the generic map consumed by templates.
func (d Data) TemplateData() map[string]any {
	raw, err := json.Marshal(d)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// DisplayData is TemplateData with placeholder text for the identity fields
// so an empty profile still renders a readable document.
func (d Data) DisplayData() map[string]any {
	out := d.TemplateData()
	if d.FullName == "" {
		out[string(FieldFullName)] = "Your Name"
	}
	if d.Tagline == "" {
		out[string(FieldTagline)] = "Your Professional Title"
	}
	return out
}
