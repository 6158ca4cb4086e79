package imagegen

import (
	"strings"

	"sitebuilder/internal/domain"
)

// LogoVariations is the number of images requested per logo.
const LogoVariations = 4

// LogoRequest describes a logo to generate.
type LogoRequest struct {
	CompanyName string `json:"company_name"`
	Style       string `json:"style"`
	Colors      string `json:"colors"`
	Industry    string `json:"industry"`
}

// LogoPrompt builds the generation prompt. Empty optional parts are left out.
func LogoPrompt(r LogoRequest) (string, error) {
	name := strings.TrimSpace(r.CompanyName)
	if name == "" {
		return "", &domain.ValidationError{Field: "company_name", Message: "company name is required"}
	}
	var b strings.Builder
	b.WriteString("Create a modern professional logo for ")
	b.WriteString(name)
	if s := strings.TrimSpace(r.Style); s != "" {
		b.WriteString(" in " + s + " style")
	}
	if c := strings.TrimSpace(r.Colors); c != "" {
		b.WriteString(" using " + c + " colors")
	}
	if i := strings.TrimSpace(r.Industry); i != "" {
		b.WriteString(" suitable for " + i + " industry")
	}
	b.WriteString(", clean background, high quality, professional design")
	return b.String(), nil
}
