package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchResponseDecodesSource(t *testing.T) {
	body := `{
		"hits": {
			"total": {"value": 2, "relation": "eq"},
			"hits": [
				{"_index": "merch", "_id": "1", "_score": 1.2,
				 "_source": {"id": 1, "name": "Campus Hoodie", "price_cents": 3999, "stock_qty": 50, "is_active": true}},
				{"_index": "merch", "_id": "2", "_score": 0.8,
				 "_source": {"id": 2, "name": "Campus Mug", "price_cents": 899, "stock_qty": 200, "is_active": true}}
			]
		}
	}`

	var r searchResponse
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	require.EqualValues(t, 2, r.Hits.Total.Value)
	require.Len(t, r.Hits.Hits, 2)
	require.Equal(t, "Campus Hoodie", r.Hits.Hits[0].Source.Name)
	require.EqualValues(t, 3999, r.Hits.Hits[0].Source.PriceCents)
	require.EqualValues(t, 2, r.Hits.Hits[1].Source.ID)
}
