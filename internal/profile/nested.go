package profile

import (
	"strconv"
)

// Get returns the link stored under key and whether key is a known link name.
func (l SocialLinks) Get(key string) (string, bool) {
	switch key {
	case "linkedin":
		return l.LinkedIn, true
	case "website":
		return l.Website, true
	case "instagram":
		return l.Instagram, true
	case "twitter":
		return l.Twitter, true
	case "youtube":
		return l.YouTube, true
	case "facebook":
		return l.Facebook, true
	case "companyWebsite":
		return l.CompanyWebsite, true
	}
	return "", false
}

// With returns a copy of l with key set to value.
func (l SocialLinks) With(key, value string) (SocialLinks, error) {
	switch key {
	case "linkedin":
		l.LinkedIn = value
	case "website":
		l.Website = value
	case "instagram":
		l.Instagram = value
	case "twitter":
		l.Twitter = value
	case "youtube":
		l.YouTube = value
	case "facebook":
		l.Facebook = value
	case "companyWebsite":
		l.CompanyWebsite = value
	default:
		return l, &FieldError{Field: FieldSocialLinks, Key: key, Message: "unknown social link"}
	}
	return l, nil
}

// Get returns the contact value stored under key rendered as a string.
func (c Contact) Get(key string) (string, bool) {
	switch key {
	case "emailPrimary":
		return c.EmailPrimary, true
	case "phonePrimary":
		return c.PhonePrimary, true
	case "whatsapp":
		return c.WhatsApp, true
	case "address":
		return c.Address, true
	case "website":
		return c.Website, true
	case "emailShow":
		return strconv.FormatBool(c.EmailShow), true
	case "phoneShow":
		return strconv.FormatBool(c.PhoneShow), true
	case "whatsappShow":
		return strconv.FormatBool(c.WhatsAppShow), true
	case "addressShow":
		return strconv.FormatBool(c.AddressShow), true
	}
	return "", false
}

// With returns a copy of c with key set to value. Visibility flags accept
// anything strconv.ParseBool does.
func (c Contact) With(key, value string) (Contact, error) {
	switch key {
	case "emailPrimary":
		c.EmailPrimary = value
	case "phonePrimary":
		c.PhonePrimary = value
	case "whatsapp":
		c.WhatsApp = value
	case "address":
		c.Address = value
	case "website":
		c.Website = value
	case "emailShow", "phoneShow", "whatsappShow", "addressShow":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return c, &FieldError{Field: FieldContact, Key: key, Message: "expected a boolean", Cause: err}
		}
		switch key {
		case "emailShow":
			c.EmailShow = b
		case "phoneShow":
			c.PhoneShow = b
		case "whatsappShow":
			c.WhatsAppShow = b
		default:
			c.AddressShow = b
		}
	default:
		return c, &FieldError{Field: FieldContact, Key: key, Message: "unknown contact field"}
	}
	return c, nil
}
