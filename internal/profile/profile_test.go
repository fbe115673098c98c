package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDefault_ContactFlagsVisible(t *testing.T) {
	d := Default()
	assert.True(t, d.Contact.EmailShow)
	assert.True(t, d.Contact.PhoneShow)
	assert.True(t, d.Contact.WhatsAppShow)
	assert.True(t, d.Contact.AddressShow)
	assert.Equal(t, "Multiple", d.WorkExperienceType)
	assert.NotNil(t, d.TopHighlights)
}

func TestClone_DoesNotShareSlices(t *testing.T) {
	d := Default()
	d.TopHighlights = []string{"a", "b"}
	d.Positions = []Position{{Title: "CTO", Company: "Acme"}}

	c := d.Clone()
	c.TopHighlights[0] = "changed"
	c.Positions[0].Title = "CEO"

	assert.Equal(t, "a", d.TopHighlights[0])
	assert.Equal(t, "CTO", d.Positions[0].Title)
}

func TestPartial_ApplyOnlyPresentFields(t *testing.T) {
	d := Default()
	d.FullName = "Ada"
	d.Tagline = "Engineer"

	p := Partial{Tagline: strPtr("Mathematician")}
	p.Apply(&d)

	assert.Equal(t, "Ada", d.FullName)
	assert.Equal(t, "Mathematician", d.Tagline)
}

func TestPartial_EmptyValueClearsField(t *testing.T) {
	d := Default()
	d.Tagline = "Engineer"

	Partial{Tagline: strPtr("")}.Apply(&d)
	assert.Equal(t, "", d.Tagline)
}

func TestPartial_OverlayRightWins(t *testing.T) {
	a := Partial{FullName: strPtr("Ada"), Tagline: strPtr("one")}
	b := Partial{Tagline: strPtr("two")}

	out := a.Overlay(b)
	assert.Equal(t, "Ada", *out.FullName)
	assert.Equal(t, "two", *out.Tagline)
	assert.Equal(t, "one", *a.Tagline, "overlay must not mutate the receiver")
}

func TestPartial_RestrictAndFields(t *testing.T) {
	links := SocialLinks{LinkedIn: "https://linkedin.com/in/ada"}
	p := Partial{FullName: strPtr("Ada"), Tagline: strPtr("x"), SocialLinks: &links}

	r := p.Restrict([]Field{FieldFullName, FieldSocialLinks})
	assert.Equal(t, []Field{FieldFullName, FieldSocialLinks}, r.Fields())
	assert.False(t, r.Has(FieldTagline))
	assert.True(t, Partial{}.IsEmpty())
}

func TestPartial_JSONRoundTripKeepsAbsence(t *testing.T) {
	var p Partial
	require.NoError(t, json.Unmarshal([]byte(`{"tagline":"X","topHighlights":[]}`), &p))

	assert.Equal(t, []Field{FieldTagline, FieldTopHighlights}, p.Fields())
	v, ok := p.Value(FieldTopHighlights)
	require.True(t, ok)
	assert.Empty(t, v)
}

func TestPartial_ValidateRejectsBadEmail(t *testing.T) {
	c := Contact{EmailPrimary: "not-an-email"}
	assert.Error(t, Partial{Contact: &c}.Validate())

	c.EmailPrimary = "jane@x.com"
	assert.NoError(t, Partial{Contact: &c}.Validate())
}

func TestSetText_RejectsListField(t *testing.T) {
	_, err := SetText(FieldTopHighlights, "x")
	require.Error(t, err)

	var fieldErr *FieldError
	assert.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, FieldTopHighlights, fieldErr.Field)
}

func TestSetText_UnknownField(t *testing.T) {
	_, err := SetText(Field("nickname"), "x")
	assert.Error(t, err)
}

func TestDecodeUpdate_ByFieldKind(t *testing.T) {
	u, err := DecodeUpdate(FieldFullName, json.RawMessage(`"Jane Doe"`))
	require.NoError(t, err)
	assert.Equal(t, FieldFullName, u.Field())

	u, err = DecodeUpdate(FieldPositions, json.RawMessage(`[{"title":"CTO","company":"Acme"}]`))
	require.NoError(t, err)
	v, _ := u.Partial().Value(FieldPositions)
	assert.Equal(t, []Position{{Title: "CTO", Company: "Acme"}}, v)

	_, err = DecodeUpdate(FieldFullName, json.RawMessage(`["a"]`))
	assert.Error(t, err)
}

func TestContactWith_ParsesVisibilityFlags(t *testing.T) {
	c, err := Contact{EmailShow: true}.With("emailShow", "false")
	require.NoError(t, err)
	assert.False(t, c.EmailShow)

	_, err = c.With("emailShow", "maybe")
	assert.Error(t, err)

	_, err = c.With("fax", "123")
	assert.Error(t, err)
}

func TestLookup_NestedPaths(t *testing.T) {
	d := Default()
	d.SocialLinks.Website = "https://ada.dev"
	d.Contact.EmailPrimary = "ada@x.com"

	v, ok := d.Lookup("socialLinks.website")
	require.True(t, ok)
	assert.Equal(t, "https://ada.dev", v)

	v, ok = d.Lookup("contact.emailPrimary")
	require.True(t, ok)
	assert.Equal(t, "ada@x.com", v)

	_, ok = d.Lookup("fullName.first")
	assert.False(t, ok)
	_, ok = d.Lookup("unknown")
	assert.False(t, ok)
}

func TestDisplayData_PlaceholdersForEmptyIdentity(t *testing.T) {
	d := Default()
	out := d.DisplayData()
	assert.Equal(t, "Your Name", out["fullName"])
	assert.Equal(t, "Your Professional Title", out["tagline"])

	d.FullName = "Ada"
	assert.Equal(t, "Ada", d.DisplayData()["fullName"])
}

func TestStore_MergeAndSetFieldNotifySubscribers(t *testing.T) {
	s := NewStore(Default())

	var seen []string
	cancel := s.Subscribe(func(d Data) { seen = append(seen, d.FullName) })

	s.Merge(Partial{FullName: strPtr("Ada")})
	u, err := SetText(FieldFullName, "Grace")
	require.NoError(t, err)
	s.SetField(u)

	assert.Equal(t, []string{"Ada", "Grace"}, seen)
	assert.Equal(t, uint64(2), s.Version())

	cancel()
	s.Merge(Partial{FullName: strPtr("Linus")})
	assert.Len(t, seen, 2)
}

func TestStore_EmptyMergeIsNoop(t *testing.T) {
	s := NewStore(Default())
	s.Merge(Partial{})
	assert.Equal(t, uint64(0), s.Version())
}

func TestStore_GetReturnsCopy(t *testing.T) {
	d := Default()
	d.TopHighlights = []string{"one"}
	s := NewStore(d)

	got := s.Get()
	got.TopHighlights[0] = "mutated"
	assert.Equal(t, "one", s.Get().TopHighlights[0])
}
