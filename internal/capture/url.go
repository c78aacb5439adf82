package capture

// chartBaseURL is the upstream chart page. Ticker and interval are forwarded
// verbatim; TradingView rejects values it does not recognize by leaving the
// chart blank, which the readiness waits absorb.
const chartBaseURL = "https://www.tradingview.com/chart/"

// ChartURL composes the navigation target for a chart request. A non-empty
// layoutID (a saved chart layout) becomes a path segment before the query
// string.
func ChartURL(layoutID, ticker, interval string) string {
	url := chartBaseURL
	if layoutID != "" {
		url += layoutID + "/"
	}
	return url + "?symbol=" + ticker + "&interval=" + interval
}
