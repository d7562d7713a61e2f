// Package civic holds the normalized object model scraped records are
// converted into. the shapes follow the open civic data schemas.
package civic

type Link struct {
	Note string
	Url  string
}

type Contact struct {
	Type  string
	Value string
	Note  string
}

type Person struct {
	Id             string
	Name           string
	Image          string
	District       string
	Party          string
	StartDate      string
	EndDate        string
	Links          []Link
	Sources        []Link
	ContactDetails []Contact
	Extras         map[string]string
}

type Organization struct {
	Id             string
	Name           string
	Classification string
	Sources        []Link
}

type Membership struct {
	PersonId       string
	OrganizationId string
	Role           string
	StartDate      string
	EndDate        string
	Extras         map[string]string
}

type Document struct {
	Name  string
	Links []MediaLink
}

type MediaLink struct {
	Url       string
	MediaType string
}

type Vote struct {
	Voter  string
	Option string
}

type Action struct {
	Date         string
	Organization string
	Description  string
	Result       string
	Votes        []Vote
}

type Bill struct {
	Identifier     string
	Title          string
	Classification string
	Status         string
	Sponsors       []string
	Actions        []Action
	Documents      []Document
	Sources        []Link
}
