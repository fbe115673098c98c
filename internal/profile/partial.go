package profile

import (
	"github.com/go-playground/validator/v10"
)

// Partial is a sparse set of field values. A nil pointer means the field is
// absent; a pointer to an empty value clears the field when applied.
type Partial struct {
	FullName              *string      `json:"fullName,omitempty"`
	ProfessionalTitle     *string      `json:"professionalTitle,omitempty"`
	Tagline               *string      `json:"tagline,omitempty"`
	ProfilePhoto          *string      `json:"profilePhoto,omitempty" validate:"omitempty,url"`
	AboutMe               *string      `json:"aboutMe,omitempty"`
	PersonalStory30       *string      `json:"personalStory30,omitempty"`
	TopHighlights         *[]string    `json:"topHighlights,omitempty"`
	ExpertiseAreas        *[]string    `json:"expertiseAreas,omitempty"`
	ExpertiseDescriptions *[]string    `json:"expertiseDescriptions,omitempty"`
	Skills                *[]string    `json:"skills,omitempty"`
	Awards                *[]string    `json:"awards,omitempty"`
	WorkExperienceType    *string      `json:"workExperienceType,omitempty"`
	ImpactHeadline        *string      `json:"impactHeadline,omitempty"`
	ImpactStory           *string      `json:"impactStory,omitempty"`
	Positions             *[]Position  `json:"positions,omitempty" validate:"omitempty,dive"`
	Education             *[]Education `json:"education,omitempty"`
	Brands                *[]Brand     `json:"brands,omitempty"`
	SocialLinks           *SocialLinks `json:"socialLinks,omitempty"`
	Contact               *Contact     `json:"contact,omitempty"`
}

var partialValidator = validator.New()

// Validate checks field formats (URLs, emails) of the values present.
func (p Partial) Validate() error {
	return partialValidator.Struct(p)
}

// textField returns the address of the text slot for f, or nil.
func (p *Partial) textField(f Field) **string {
	switch f {
	case FieldFullName:
		return &p.FullName
	case FieldProfessionalTitle:
		return &p.ProfessionalTitle
	case FieldTagline:
		return &p.Tagline
	case FieldProfilePhoto:
		return &p.ProfilePhoto
	case FieldAboutMe:
		return &p.AboutMe
	case FieldPersonalStory30:
		return &p.PersonalStory30
	case FieldWorkExperienceType:
		return &p.WorkExperienceType
	case FieldImpactHeadline:
		return &p.ImpactHeadline
	case FieldImpactStory:
		return &p.ImpactStory
	}
	return nil
}

// listField returns the address of the string-list slot for f, or nil.
func (p *Partial) listField(f Field) **[]string {
	switch f {
	case FieldTopHighlights:
		return &p.TopHighlights
	case FieldExpertiseAreas:
		return &p.ExpertiseAreas
	case FieldExpertiseDescriptions:
		return &p.ExpertiseDescriptions
	case FieldSkills:
		return &p.Skills
	case FieldAwards:
		return &p.Awards
	}
	return nil
}

// Has reports whether f is present in p.
func (p Partial) Has(f Field) bool {
	_, ok := p.Value(f)
	return ok
}

// Value returns the value of f and whether it is present.
func (p Partial) Value(f Field) (any, bool) {
	if slot := p.textField(f); slot != nil {
		if *slot == nil {
			return nil, false
		}
		return **slot, true
	}
	if slot := p.listField(f); slot != nil {
		if *slot == nil {
			return nil, false
		}
		return cloneStrings(**slot), true
	}
	switch f {
	case FieldPositions:
		if p.Positions != nil {
			return append([]Position(nil), (*p.Positions)...), true
		}
	case FieldEducation:
		if p.Education != nil {
			return append([]Education(nil), (*p.Education)...), true
		}
	case FieldBrands:
		if p.Brands != nil {
			return append([]Brand(nil), (*p.Brands)...), true
		}
	case FieldSocialLinks:
		if p.SocialLinks != nil {
			return *p.SocialLinks, true
		}
	case FieldContact:
		if p.Contact != nil {
			return *p.Contact, true
		}
	}
	return nil, false
}

// Fields lists the fields present in p in declaration order.
func (p Partial) Fields() []Field {
	var out []Field
	for _, f := range orderedFields {
		if p.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// IsEmpty reports whether p carries no fields.
func (p Partial) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Overlay returns p with every field present in q replacing p's value.
func (p Partial) Overlay(q Partial) Partial {
	out := p
	for _, f := range q.Fields() {
		out.copyFrom(q, f)
	}
	return out
}

// Restrict returns the subset of p limited to fields.
func (p Partial) Restrict(fields []Field) Partial {
	var out Partial
	for _, f := range fields {
		out.copyFrom(p, f)
	}
	return out
}

// copyFrom copies field f from q into p, deep-copying slices.
func (p *Partial) copyFrom(q Partial, f Field) {
	v, ok := q.Value(f)
	if !ok {
		return
	}
	p.set(f, v)
}

// set stores v (already the correct concrete type for f) into p.
func (p *Partial) set(f Field, v any) {
	if slot := p.textField(f); slot != nil {
		s := v.(string)
		*slot = &s
		return
	}
	if slot := p.listField(f); slot != nil {
		l := v.([]string)
		*slot = &l
		return
	}
	switch f {
	case FieldPositions:
		l := v.([]Position)
		p.Positions = &l
	case FieldEducation:
		l := v.([]Education)
		p.Education = &l
	case FieldBrands:
		l := v.([]Brand)
		p.Brands = &l
	case FieldSocialLinks:
		s := v.(SocialLinks)
		p.SocialLinks = &s
	case FieldContact:
		c := v.(Contact)
		p.Contact = &c
	}
}

// Apply writes every field present in p onto d.
func (p Partial) Apply(d *Data) {
	for _, f := range p.Fields() {
		v, _ := p.Value(f)
		d.set(f, v)
	}
}

var orderedFields = []Field{
	FieldFullName,
	FieldProfessionalTitle,
	FieldTagline,
	FieldProfilePhoto,
	FieldAboutMe,
	FieldPersonalStory30,
	FieldTopHighlights,
	FieldExpertiseAreas,
	FieldExpertiseDescriptions,
	FieldSkills,
	FieldAwards,
	FieldWorkExperienceType,
	FieldImpactHeadline,
	FieldImpactStory,
	FieldPositions,
	FieldEducation,
	FieldBrands,
	FieldSocialLinks,
	FieldContact,
}
