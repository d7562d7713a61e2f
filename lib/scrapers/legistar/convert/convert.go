// Package convert turns extracted records into normalized civic
// objects. the extraction engine guarantees the record keys; this layer
// owns identity, deduplication and drop rules.
package convert

import (
	"fmt"

	"legiscrape/lib/civic"
	"legiscrape/lib/scrapers/legistar"
	"legiscrape/lib/textutil"

	"github.com/google/uuid"
)

// helpers over the untyped record values the engine emits

func recordText(rec legistar.Record, key string) string {
	value, ok := rec[key].(string)
	if !ok {
		return ""
	}
	return value
}

func recordList(rec legistar.Record, key string) []legistar.Record {
	value, ok := rec[key].([]legistar.Record)
	if !ok {
		return nil
	}
	return value
}

// OrgCache dedupes organizations within one conversion run. committees
// show up under slightly different names across pages, so lookups fall
// back to fuzzy matching. append-only for the duration of a run.
type OrgCache struct {
	orgs map[string]*civic.Organization
}

func NewOrgCache() *OrgCache {
	return &OrgCache{orgs: map[string]*civic.Organization{}}
}

func (c *OrgCache) Get(name string) (*civic.Organization, bool) {
	org, ok := c.orgs[textutil.NormalizeName(name)]
	if ok {
		return org, true
	}
	for cached, org := range c.orgs {
		if textutil.SameName(cached, name) {
			return org, true
		}
	}
	return nil, false
}

// GetOrCreate returns the cached org for this name or creates one,
// reporting whether it was created so callers can emit it exactly once.
func (c *OrgCache) GetOrCreate(name, classification string, sources []civic.Link) (*civic.Organization, bool) {
	org, ok := c.Get(name)
	if ok {
		return org, false
	}
	org = &civic.Organization{
		Id:             uuid.NewString(),
		Name:           name,
		Classification: classification,
		Sources:        sources,
	}
	c.orgs[textutil.NormalizeName(name)] = org
	return org, true
}

func recordSources(rec legistar.Record) []civic.Link {
	var out []civic.Link
	for _, source := range recordList(rec, "sources") {
		out = append(out, civic.Link{
			Note: recordText(source, "note"),
			Url:  recordText(source, "url"),
		})
	}
	return out
}

// PersonAdapter converts one extracted person record into a
// civic.Person. Instance returning nil means "drop this record".
type PersonAdapter struct {
	Data legistar.Record
}

func (a *PersonAdapter) Instance() (*civic.Person, error) {
	name := recordText(a.Data, "fullname")
	person := &civic.Person{
		Id:       uuid.NewString(),
		Name:     name,
		Image:    recordText(a.Data, "photo"),
		District: recordText(a.Data, "district"),
		Party:    recordText(a.Data, "party"),
		Sources:  recordSources(a.Data),
		Extras:   map[string]string{},
	}

	if website := recordText(a.Data, "website"); website != "" {
		person.Links = append(person.Links, civic.Link{Note: "website", Url: website})
	}
	if email := recordText(a.Data, "email"); email != "" {
		person.ContactDetails = append(person.ContactDetails, civic.Contact{
			Type: "email", Value: email,
		})
	}
	for _, key := range []string{"firstname", "lastname", "notes"} {
		if value := recordText(a.Data, key); value != "" {
			person.Extras[key] = value
		}
	}

	if a.shouldDrop(person) {
		return nil, nil
	}
	return person, nil
}

// a person without a name is a placeholder row (vacant seat), not data
func (a *PersonAdapter) shouldDrop(person *civic.Person) bool {
	return person.Name == ""
}

// PersonConverter emits the person, the organizations first seen
// through their memberships, and the memberships themselves.
type PersonConverter struct {
	Config *legistar.Config
	Orgs   *OrgCache
}

func NewPersonConverter(cfg *legistar.Config) *PersonConverter {
	return &PersonConverter{Config: cfg, Orgs: NewOrgCache()}
}

func (c *PersonConverter) shouldDropOrganization(name string) bool {
	return textutil.MatchName(name, c.Config.DropOrganizations)
}

func (c *PersonConverter) classify(orgName string) string {
	if textutil.SameName(orgName, c.Config.TopLevelOrg) {
		return "legislature"
	}
	return "committee"
}

// Convert returns every object one person record produces, orgs before
// the memberships that reference them.
func (c *PersonConverter) Convert(rec legistar.Record) ([]any, error) {
	adapter := &PersonAdapter{Data: rec}
	person, err := adapter.Instance()
	if err != nil {
		return nil, err
	}
	if person == nil {
		return nil, nil
	}

	memberships := recordList(rec, "memberships")

	// a membership in the top-level org carries the person's own term
	for _, membership := range memberships {
		if textutil.SameName(recordText(membership, "org"), c.Config.TopLevelOrg) {
			person.StartDate = recordText(membership, "start_date")
			person.EndDate = recordText(membership, "end_date")
		}
	}

	var out []any
	sawLegislature := false
	for _, membership := range memberships {
		orgName := recordText(membership, "org")
		if orgName == "" {
			return nil, fmt.Errorf("membership without an org for %s", person.Name)
		}
		if c.shouldDropOrganization(orgName) {
			continue
		}

		classification := c.classify(orgName)
		if classification == "legislature" {
			sawLegislature = true
		}
		org, created := c.Orgs.GetOrCreate(orgName, classification, person.Sources)
		if created {
			out = append(out, org)
		}

		extras := map[string]string{}
		if appointedBy := recordText(membership, "appointed_by"); appointedBy != "" {
			extras["appointed_by"] = appointedBy
		}
		out = append(out, &civic.Membership{
			PersonId:       person.Id,
			OrganizationId: org.Id,
			Role:           recordText(membership, "role"),
			StartDate:      recordText(membership, "start_date"),
			EndDate:        recordText(membership, "end_date"),
			Extras:         extras,
		})
	}

	// some sites never list the legislature itself on member pages
	if c.Config.CreateLegislatureMembership && !sawLegislature {
		org, created := c.Orgs.GetOrCreate(c.Config.TopLevelOrg, "legislature", person.Sources)
		if created {
			out = append(out, org)
		}
		out = append(out, &civic.Membership{
			PersonId:       person.Id,
			OrganizationId: org.Id,
			Role:           "Council Member",
			StartDate:      person.StartDate,
			EndDate:        person.EndDate,
		})
	}

	out = append(out, person)
	return out, nil
}
