package convert

import (
	"testing"

	"legiscrape/lib/civic"
	"legiscrape/lib/scrapers/legistar"

	"github.com/stretchr/testify/require"
)

func testConverterConfig(t *testing.T) *legistar.Config {
	t.Helper()
	cfg := &legistar.Config{
		Name:                        "Test Town",
		BaseUrl:                     "https://test.legistar.com",
		Timezone:                    "America/Chicago",
		DatetimeFormat:              "%m/%d/%Y",
		TopLevelOrg:                 "Test Town City Council",
		CreateLegislatureMembership: true,
		DropOrganizations:           []string{"CLERK OF THE CITY"},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestOrgCacheDedupes(t *testing.T) {
	cache := NewOrgCache()

	first, created := cache.GetOrCreate("Committee on Finance", "committee", nil)
	require.True(t, created)

	// exact name, different case and spacing
	second, created := cache.GetOrCreate("committee   on finance", "committee", nil)
	require.False(t, created)
	require.Equal(t, first.Id, second.Id)

	// near-identical name still resolves to the cached org
	third, created := cache.GetOrCreate("Comittee on Finance", "committee", nil)
	require.False(t, created)
	require.Equal(t, first.Id, third.Id)

	other, created := cache.GetOrCreate("Committee on Zoning", "committee", nil)
	require.True(t, created)
	require.NotEqual(t, first.Id, other.Id)
}

func TestPersonAdapterDropsNameless(t *testing.T) {
	adapter := &PersonAdapter{Data: legistar.Record{"district": "Ward 9"}}
	person, err := adapter.Instance()
	require.NoError(t, err)
	require.Nil(t, person)
}

func TestPersonAdapterFields(t *testing.T) {
	adapter := &PersonAdapter{Data: legistar.Record{
		"fullname":  "Anna Marks",
		"firstname": "Anna",
		"lastname":  "Marks",
		"district":  "Ward 3",
		"email":     "anna.marks@testtown.gov",
		"website":   "https://testtown.gov/marks",
		"photo":     "https://test.legistar.com/images/marks.jpg",
		"sources": []legistar.Record{
			{"url": "https://test.legistar.com/People.aspx", "note": "people search"},
		},
	}}

	person, err := adapter.Instance()
	require.NoError(t, err)
	require.NotNil(t, person)
	require.Equal(t, "Anna Marks", person.Name)
	require.Equal(t, "Ward 3", person.District)
	require.Equal(t, []civic.Link{{Note: "website", Url: "https://testtown.gov/marks"}}, person.Links)
	require.Equal(t, []civic.Contact{{Type: "email", Value: "anna.marks@testtown.gov"}}, person.ContactDetails)
	require.Equal(t, "Anna", person.Extras["firstname"])
	require.Len(t, person.Sources, 1)
}

func personRecord() legistar.Record {
	return legistar.Record{
		"fullname": "Anna Marks",
		"memberships": []legistar.Record{
			{
				"org":        "Test Town City Council",
				"role":       "Alderman",
				"start_date": "2019-05-20",
				"end_date":   "2023-05-20",
			},
			{
				"org":          "Committee on Finance",
				"role":         "Chair",
				"start_date":   "2019-06-01",
				"appointed_by": "Mayor",
			},
			{
				"org": "CLERK OF THE CITY",
			},
		},
	}
}

func TestPersonConverter(t *testing.T) {
	converter := NewPersonConverter(testConverterConfig(t))

	out, err := converter.Convert(personRecord())
	require.NoError(t, err)

	// two orgs (the dropped one never materializes), two memberships,
	// the person last
	require.Len(t, out, 5)

	council, ok := out[0].(*civic.Organization)
	require.True(t, ok)
	require.Equal(t, "Test Town City Council", council.Name)
	require.Equal(t, "legislature", council.Classification)

	councilSeat, ok := out[1].(*civic.Membership)
	require.True(t, ok)
	require.Equal(t, council.Id, councilSeat.OrganizationId)
	require.Equal(t, "Alderman", councilSeat.Role)

	finance, ok := out[2].(*civic.Organization)
	require.True(t, ok)
	require.Equal(t, "committee", finance.Classification)

	chair, ok := out[3].(*civic.Membership)
	require.True(t, ok)
	require.Equal(t, finance.Id, chair.OrganizationId)
	require.Equal(t, "Mayor", chair.Extras["appointed_by"])

	person, ok := out[4].(*civic.Person)
	require.True(t, ok)
	require.Equal(t, "Anna Marks", person.Name)
	require.Equal(t, person.Id, councilSeat.PersonId)

	// the top-level membership's term becomes the person's term
	require.Equal(t, "2019-05-20", person.StartDate)
	require.Equal(t, "2023-05-20", person.EndDate)
}

func TestPersonConverterSharesOrgsAcrossPeople(t *testing.T) {
	converter := NewPersonConverter(testConverterConfig(t))

	first, err := converter.Convert(personRecord())
	require.NoError(t, err)

	second, err := converter.Convert(legistar.Record{
		"fullname": "Robert O'Neil",
		"memberships": []legistar.Record{
			{"org": "Committee on Finance", "role": "Member"},
		},
	})
	require.NoError(t, err)

	// finance already exists, so the second person emits only their
	// membership, the synthesized legislature membership, and themselves
	require.Len(t, second, 3)
	membership, ok := second[0].(*civic.Membership)
	require.True(t, ok)

	var financeId string
	for _, obj := range first {
		if org, ok := obj.(*civic.Organization); ok && org.Classification == "committee" {
			financeId = org.Id
		}
	}
	require.Equal(t, financeId, membership.OrganizationId)
}

func TestPersonConverterSynthesizesLegislatureMembership(t *testing.T) {
	cfg := testConverterConfig(t)
	converter := NewPersonConverter(cfg)

	rec := legistar.Record{
		"fullname": "Robert O'Neil",
		"memberships": []legistar.Record{
			{"org": "Committee on Zoning", "role": "Member"},
		},
	}

	out, err := converter.Convert(rec)
	require.NoError(t, err)

	var roles []string
	for _, obj := range out {
		if membership, ok := obj.(*civic.Membership); ok {
			roles = append(roles, membership.Role)
		}
	}
	require.Contains(t, roles, "Council Member")

	// and not when the jurisdiction opts out
	cfg.CreateLegislatureMembership = false
	out, err = NewPersonConverter(cfg).Convert(rec)
	require.NoError(t, err)
	for _, obj := range out {
		if membership, ok := obj.(*civic.Membership); ok {
			require.NotEqual(t, "Council Member", membership.Role)
		}
	}
}

func TestPersonConverterMembershipWithoutOrg(t *testing.T) {
	converter := NewPersonConverter(testConverterConfig(t))
	_, err := converter.Convert(legistar.Record{
		"fullname":    "Anna Marks",
		"memberships": []legistar.Record{{"role": "Chair"}},
	})
	require.Error(t, err)
}
