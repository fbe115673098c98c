// Package profile defines the structured profile record edited by the studio
// and the single-owner store that holds it for a session.
package profile

// Field names a top-level field of Data. Values match the JSON names used by
// templates, so a Field can be used directly as a Handlebars placeholder.
type Field string

// Top-level profile fields.
const (
	FieldFullName              Field = "fullName"
	FieldProfessionalTitle     Field = "professionalTitle"
	FieldTagline               Field = "tagline"
	FieldProfilePhoto          Field = "profilePhoto"
	FieldAboutMe               Field = "aboutMe"
	FieldPersonalStory30       Field = "personalStory30"
	FieldTopHighlights         Field = "topHighlights"
	FieldExpertiseAreas        Field = "expertiseAreas"
	FieldExpertiseDescriptions Field = "expertiseDescriptions"
	FieldSkills                Field = "skills"
	FieldAwards                Field = "awards"
	FieldWorkExperienceType    Field = "workExperienceType"
	FieldImpactHeadline        Field = "impactHeadline"
	FieldImpactStory           Field = "impactStory"
	FieldPositions             Field = "positions"
	FieldEducation             Field = "education"
	FieldBrands                Field = "brands"
	FieldSocialLinks           Field = "socialLinks"
	FieldContact               Field = "contact"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindList
	kindPositions
	kindEducation
	kindBrands
	kindSocialLinks
	kindContact
)

var fieldKinds = map[Field]fieldKind{
	FieldFullName:              kindText,
	FieldProfessionalTitle:     kindText,
	FieldTagline:               kindText,
	FieldProfilePhoto:          kindText,
	FieldAboutMe:               kindText,
	FieldPersonalStory30:       kindText,
	FieldWorkExperienceType:    kindText,
	FieldImpactHeadline:        kindText,
	FieldImpactStory:           kindText,
	FieldTopHighlights:         kindList,
	FieldExpertiseAreas:        kindList,
	FieldExpertiseDescriptions: kindList,
	FieldSkills:                kindList,
	FieldAwards:                kindList,
	FieldPositions:             kindPositions,
	FieldEducation:             kindEducation,
	FieldBrands:                kindBrands,
	FieldSocialLinks:           kindSocialLinks,
	FieldContact:               kindContact,
}

// KnownField reports whether f is a top-level field of Data.
func KnownField(f Field) bool {
	_, ok := fieldKinds[f]
	return ok
}

// Position is one work history entry.
type Position struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty" validate:"omitempty,url"`
}

// Education is one education entry.
type Education struct {
	SchoolName   string `json:"schoolName"`
	DegreeName   string `json:"degreeName,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	Duration     string `json:"duration,omitempty"`
}

// Brand is a company or brand the person has been associated with.
type Brand struct {
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// SocialLinks holds the person's public profiles.
type SocialLinks struct {
	LinkedIn       string `json:"linkedin,omitempty" validate:"omitempty,url"`
	Website        string `json:"website,omitempty" validate:"omitempty,url"`
	Instagram      string `json:"instagram,omitempty" validate:"omitempty,url"`
	Twitter        string `json:"twitter,omitempty" validate:"omitempty,url"`
	YouTube        string `json:"youtube,omitempty" validate:"omitempty,url"`
	Facebook       string `json:"facebook,omitempty" validate:"omitempty,url"`
	CompanyWebsite string `json:"companyWebsite,omitempty" validate:"omitempty,url"`
}

// Contact holds direct contact details and their visibility flags.
type Contact struct {
	EmailPrimary string `json:"emailPrimary,omitempty" validate:"omitempty,email"`
	PhonePrimary string `json:"phonePrimary,omitempty"`
	WhatsApp     string `json:"whatsapp,omitempty"`
	Address      string `json:"address,omitempty"`
	Website      string `json:"website,omitempty"`
	EmailShow    bool   `json:"emailShow"`
	PhoneShow    bool   `json:"phoneShow"`
	WhatsAppShow bool   `json:"whatsappShow"`
	AddressShow  bool   `json:"addressShow"`
}

// Data is the full profile record.
type Data struct {
	FullName              string      `json:"fullName"`
	ProfessionalTitle     string      `json:"professionalTitle,omitempty"`
	Tagline               string      `json:"tagline,omitempty"`
	ProfilePhoto          string      `json:"profilePhoto,omitempty"`
	AboutMe               string      `json:"aboutMe,omitempty"`
	PersonalStory30       string      `json:"personalStory30,omitempty"`
	TopHighlights         []string    `json:"topHighlights"`
	ExpertiseAreas        []string    `json:"expertiseAreas"`
	ExpertiseDescriptions []string    `json:"expertiseDescriptions,omitempty"`
	Skills                []string    `json:"skills,omitempty"`
	Awards                []string    `json:"awards,omitempty"`
	WorkExperienceType    string      `json:"workExperienceType,omitempty"`
	ImpactHeadline        string      `json:"impactHeadline,omitempty"`
	ImpactStory           string      `json:"impactStory,omitempty"`
	Positions             []Position  `json:"positions,omitempty"`
	Education             []Education `json:"education,omitempty"`
	Brands                []Brand     `json:"brands"`
	SocialLinks           SocialLinks `json:"socialLinks"`
	Contact               Contact     `json:"contact"`
}

// Default returns the state a fresh studio session starts from.
func Default() Data {
	return Data{
		TopHighlights:      []string{},
		ExpertiseAreas:     []string{},
		Brands:             []Brand{},
		WorkExperienceType: "Multiple",
		Contact: Contact{
			EmailShow:    true,
			PhoneShow:    true,
			WhatsAppShow: true,
			AddressShow:  true,
		},
	}
}

// Clone returns a deep copy of d.
func (d Data) Clone() Data {
	out := d
	out.TopHighlights = cloneStrings(d.TopHighlights)
	out.ExpertiseAreas = cloneStrings(d.ExpertiseAreas)
	out.ExpertiseDescriptions = cloneStrings(d.ExpertiseDescriptions)
	out.Skills = cloneStrings(d.Skills)
	out.Awards = cloneStrings(d.Awards)
	if d.Positions != nil {
		out.Positions = append([]Position(nil), d.Positions...)
	}
	if d.Education != nil {
		out.Education = append([]Education(nil), d.Education...)
	}
	if d.Brands != nil {
		out.Brands = append([]Brand(nil), d.Brands...)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// AllFields lists every top-level field in declaration order.
func AllFields() []Field {
	return append([]Field(nil), orderedFields...)
}
