package outreach

import "strings"

// Person is a recruiter contact produced by a listing source. It is
// immutable once handed to discovery and dispatch.
type Person struct {
	FullName      string
	FirstName     string
	LastName      string
	CompanyName   string
	CompanyDomain string
	JobTitle      string
	Source        string
}

// NewPerson builds a Person from a display name and a company mail domain,
// inferring the first and last name from the outer name tokens. A single
// token yields an empty last name.
func NewPerson(fullName, companyDomain string) *Person {
	p := &Person{
		FullName:      strings.TrimSpace(fullName),
		CompanyDomain: strings.ToLower(strings.TrimSpace(companyDomain)),
	}

	parts := strings.Fields(p.FullName)
	switch {
	case len(parts) == 1:
		p.FirstName = parts[0]
	case len(parts) > 1:
		p.FirstName = parts[0]
		p.LastName = parts[len(parts)-1]
	}

	return p
}

type People struct {
	Items []*Person
}

func (p *People) Len() int {
	return len(p.Items)
}

func (p *People) Append(items ...*Person) {
	p.Items = append(p.Items, items...)
}

// Companies returns the distinct company names in insertion order.
func (p *People) Companies() []string {
	seen := make(map[string]bool)
	names := make([]string, 0, len(p.Items))
	for _, person := range p.Items {
		if person.CompanyName == "" || seen[person.CompanyName] {
			continue
		}
		seen[person.CompanyName] = true
		names = append(names, person.CompanyName)
	}
	return names
}
