// Package provider builds request URLs and formats responses for the supported
// upstream APIs.
//
// Kind is a closed set (KindWeather, KindStock). New validates an Endpoint
// and returns the matching Provider; every Provider offers the same pair of
// capabilities, URL and Format, so the poll loop never switches on kind.
//
// Format writes one log record per line, for example
//
//	Location: London
//	Temperature: 9.4°C
//	Country: GB
//
// A payload missing a required key is logged together with the raw payload and
// rejected with ErrInvalidPayload. Provider notices (Alpha Vantage "Note",
// "Information" and "Error Message", OpenWeatherMap non-200 "cod") are logged
// once at error level and rejected with ErrProviderNotice.
package provider
