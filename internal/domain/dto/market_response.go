package dto

// SeriesPoint is one daily observation in a series response.
type SeriesPoint struct {
	Date      string  `json:"date" example:"20200101"`
	Price     float64 `json:"price" example:"7194.89"`
	Volume    float64 `json:"volume" example:"21487120000"`
	MarketCap float64 `json:"market_cap" example:"130589374613"`
}

// SeriesResponse represents the JSON structure returned by the
// GET /api/v1/series endpoint.
//
// Fields match the API contract and may differ from internal domain models.
type SeriesResponse struct {
	Ticker string        `json:"ticker" example:"BTC"`
	Points []SeriesPoint `json:"points"`
}

// UniverseResponse represents the JSON structure returned by the
// GET /api/v1/universe endpoint: the cross-section of all instruments
// active on one calendar date.
type UniverseResponse struct {
	Date        string               `json:"date" example:"20200101"`
	Instruments []UniverseInstrument `json:"instruments"`
}

// UniverseInstrument is one instrument line of a universe snapshot.
type UniverseInstrument struct {
	Ticker    string  `json:"ticker" example:"BTC"`
	Price     float64 `json:"price" example:"7194.89"`
	Volume    float64 `json:"volume" example:"21487120000"`
	MarketCap float64 `json:"market_cap" example:"130589374613"`
}
