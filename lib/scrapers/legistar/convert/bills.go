package convert

import (
	"legiscrape/lib/civic"
	"legiscrape/lib/scrapers/legistar"

	"github.com/samber/lo"
)

// BillAdapter converts one extracted bill record into a civic.Bill.
type BillAdapter struct {
	Data legistar.Record
}

func (a *BillAdapter) Instance() (*civic.Bill, error) {
	identifier := recordText(a.Data, "file_number")
	if identifier == "" {
		return nil, nil
	}

	bill := &civic.Bill{
		Identifier:     identifier,
		Title:          recordText(a.Data, "title"),
		Classification: recordText(a.Data, "type"),
		Status:         recordText(a.Data, "status"),
		Sources:        recordSources(a.Data),
	}

	bill.Sponsors = lo.Map(recordList(a.Data, "sponsors"), func(sponsor legistar.Record, _ int) string {
		return recordText(sponsor, "name")
	})

	for _, action := range recordList(a.Data, "actions") {
		actionBy, _ := action["action_by"].(legistar.Record)
		bill.Actions = append(bill.Actions, civic.Action{
			Date:         recordText(action, "date"),
			Organization: recordText(actionBy, "name"),
			Description:  recordText(action, "action"),
			Result:       recordText(action, "result"),
			Votes: lo.Map(recordList(action, "votes"), func(vote legistar.Record, _ int) civic.Vote {
				return civic.Vote{
					Voter:  recordText(vote, "person"),
					Option: recordText(vote, "vote"),
				}
			}),
		})
	}

	for _, document := range recordList(a.Data, "documents") {
		bill.Documents = append(bill.Documents, civic.Document{
			Name: recordText(document, "name"),
			Links: lo.Map(recordList(document, "links"), func(link legistar.Record, _ int) civic.MediaLink {
				return civic.MediaLink{
					Url:       recordText(link, "url"),
					MediaType: recordText(link, "media_type"),
				}
			}),
		})
	}

	return bill, nil
}
