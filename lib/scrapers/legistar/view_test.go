package legistar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const detailFixture = `<html><body>
	<div>
		<span class="label">Law number:</span>
		<span>Local Law 2019-12</span>
	</div>
	<table>
		<tr>
			<td><span class="label">Name:</span></td>
			<td>Sidewalk repair program</td>
		</tr>
	</table>
	<div>
		<span class="label">Version:</span>
		<span></span>
	</div>
</body></html>`

func TestFieldIndex(t *testing.T) {
	page := Page{
		Url: "https://test.legistar.com/LegislationDetail.aspx?ID=1",
		Doc: docFromString(t, detailFixture),
	}
	index := FieldIndex(page, "span.label")

	// trailing colons are stripped from label text
	require.Contains(t, index, "Law number")
	require.Equal(t, "Local Law 2019-12", index["Law number"].Text())

	// label alone in its cell falls back to the row's next cell
	require.Contains(t, index, "Name")
	require.Equal(t, "Sidewalk repair program", index["Name"].Text())

	// blank values still index, the aggregator decides what blank means
	require.Contains(t, index, "Version")
	require.True(t, index["Version"].IsBlank())
}

func TestDetailViewExtractIdempotent(t *testing.T) {
	cfg := testConfig(t, "https://test.legistar.com")
	page := Page{
		Url: "https://test.legistar.com/LegislationDetail.aspx?ID=1",
		Doc: docFromString(t, detailFixture),
	}

	view := &DetailView{
		Config: cfg,
		Detail: cfg.Bills.Detail,
		Registry: func(agg *FieldAggregator, page Page) Registry {
			return TextGenerators(agg, "law_number", "name", "version")
		},
	}

	first, err := view.Extract(context.Background(), page)
	require.NoError(t, err)
	second, err := view.Extract(context.Background(), page)
	require.NoError(t, err)

	require.Empty(t, cmp.Diff(first, second))
	require.Equal(t, "Local Law 2019-12", first["law_number"])
	require.Equal(t, "", first["version"])
}

func TestSearchViewMediaColumn(t *testing.T) {
	var headProbes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead:
			headProbes.Add(1)
			w.Header().Set("Content-Type", "video/mp4")
		case r.Method == http.MethodGet:
			fmt.Fprint(w, searchFormHtml("t0", true, ""))
		default:
			fmt.Fprint(w, `<html><body>
				<form><input type="hidden" name="__VIEWSTATE" value="r1"></form>
				<table id="results">
					<tr><th>File #</th><th>Title</th></tr>
					<tr>
						<td>2019-0001</td>
						<td><a href="/video/meeting.mp4">Meeting video</a></td>
					</tr>
				</table>
			</body></html>`)
		}
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	client, err := NewClient(ClientOptions{BaseUrl: srv.URL})
	require.NoError(t, err)

	view := &SearchView{
		Client: client,
		Config: cfg,
		Search: cfg.Bills.Search,
		Columns: []ColumnSpec{
			{Key: "file_number", Required: true},
			{Key: "title", Kind: CellMedia},
		},
	}

	var records []Record
	err = view.Scrape(context.Background(), func(record Record) error {
		records = append(records, record)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, int32(1), headProbes.Load())
	require.Equal(t, Record{
		"name": "Meeting video",
		"links": []Record{{
			"url":        srv.URL + "/video/meeting.mp4",
			"media_type": "video/mp4",
		}},
	}, records[0]["title"])
}

func TestDetailViewSuppressesEmptyRecord(t *testing.T) {
	cfg := testConfig(t, "https://test.legistar.com")
	page := Page{
		Url: "https://test.legistar.com/LegislationDetail.aspx?ID=9",
		Doc: docFromString(t, `<html><body></body></html>`),
	}

	view := &DetailView{
		Config: cfg,
		Detail: cfg.Bills.Detail,
		Registry: func(agg *FieldAggregator, page Page) Registry {
			return TextGenerators(agg, "law_number", "name")
		},
	}

	_, err := view.Extract(context.Background(), page)
	require.ErrorIs(t, err, ErrSkipItem)

	// the policy is per jurisdiction
	cfg.EmitEmptyRecords = true
	record, err := view.Extract(context.Background(), page)
	require.NoError(t, err)
	require.True(t, record.IsEmpty())
}
