package signup

// Country pairs a dialing code with the exact number of digits a local
// phone number must have for that code.
type Country struct {
	Code   string
	Name   string
	Digits int
}

// DefaultCountryCode preselects India in the registration form.
const DefaultCountryCode = "+91"

var countries = []Country{
	{Code: "+1", Name: "US/Canada", Digits: 10},
	{Code: "+44", Name: "UK", Digits: 10},
	{Code: "+49", Name: "Germany", Digits: 11},
	{Code: "+33", Name: "France", Digits: 9},
	{Code: "+61", Name: "Australia", Digits: 9},
	{Code: "+81", Name: "Japan", Digits: 10},
	{Code: "+86", Name: "China", Digits: 11},
	{Code: "+91", Name: "India", Digits: 10},
	{Code: "+52", Name: "Mexico", Digits: 10},
	{Code: "+55", Name: "Brazil", Digits: 9},
	{Code: "+27", Name: "South Africa", Digits: 9},
	{Code: "+82", Name: "South Korea", Digits: 10},
	{Code: "+39", Name: "Italy", Digits: 10},
	{Code: "+34", Name: "Spain", Digits: 9},
	{Code: "+7", Name: "Russia", Digits: 10},
	{Code: "+60", Name: "Malaysia", Digits: 9},
	{Code: "+65", Name: "Singapore", Digits: 8},
	{Code: "+971", Name: "UAE", Digits: 9},
	{Code: "+966", Name: "Saudi Arabia", Digits: 9},
	{Code: "+20", Name: "Egypt", Digits: 10},
}

// Countries lists the selectable dialing codes in display order.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

// CountryByCode resolves a dialing code; unknown codes fall back to the
// first entry so the form always has a working length rule.
func CountryByCode(code string) Country {
	for _, c := range countries {
		if c.Code == code {
			return c
		}
	}
	return countries[0]
}
