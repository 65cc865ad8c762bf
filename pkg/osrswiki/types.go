package osrswiki

// LatestResponse is the envelope returned by /latest.
// The data map is keyed by item ID (as string).
type LatestResponse struct {
	Data map[string]LatestPrice `json:"data"`
}

// LatestPrice is the most recent instant-buy (high) and instant-sell (low) trade of an item.
// Fields are nil when the side has never traded.
type LatestPrice struct {
	High     *int64 `json:"high"`     // instant-buy price
	HighTime *int64 `json:"highTime"` // unix seconds of the last instant-buy
	Low      *int64 `json:"low"`      // instant-sell price
	LowTime  *int64 `json:"lowTime"`  // unix seconds of the last instant-sell
}

// TimeseriesResponse is the envelope returned by /timeseries.
type TimeseriesResponse struct {
	Data   []TimeseriesPoint `json:"data"`
	ItemID int64             `json:"itemId"`
}

// TimeseriesPoint is one aggregated bucket; prices are null when no trade happened on that side.
type TimeseriesPoint struct {
	Timestamp       int64  `json:"timestamp"`
	AvgHighPrice    *int64 `json:"avgHighPrice"`
	HighPriceVolume *int64 `json:"highPriceVolume"`
	AvgLowPrice     *int64 `json:"avgLowPrice"`
	LowPriceVolume  *int64 `json:"lowPriceVolume"`
}

// ItemMapping is the item metadata served by /mapping.
type ItemMapping struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Examine  string `json:"examine"`
	Members  bool   `json:"members"`
	Limit    int64  `json:"limit,omitempty"`
	Value    int64  `json:"value"`
	HighAlch int64  `json:"highalch,omitempty"`
	LowAlch  int64  `json:"lowalch,omitempty"`
	Icon     string `json:"icon"`
}

// BulkPriceDataPoint is a single item's entry of a bulk endpoint (/5m, /1h, /24h).
type BulkPriceDataPoint struct {
	AvgHighPrice    *int64 `json:"avgHighPrice"`
	HighPriceVolume *int64 `json:"highPriceVolume"`
	AvgLowPrice     *int64 `json:"avgLowPrice"`
	LowPriceVolume  *int64 `json:"lowPriceVolume"`
}

// BulkPriceResponse is the envelope of the bulk endpoints, keyed by item ID.
type BulkPriceResponse struct {
	Data      map[string]BulkPriceDataPoint `json:"data"`
	Timestamp int64                         `json:"timestamp"`
}
