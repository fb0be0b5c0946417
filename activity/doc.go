// Package activity defines the activity record shared by the API client,
// the registry store and the HTTP surface.
//
// Dates travel as strings in the API's own format. The helpers here normalize
// them (NormalizeDate), parse them (ParseDate) and order records by them
// (SortByDate):
//
//	a := activity.Activity{ID: activity.NewID(), Title: "Pub quiz", Date: "2024-05-01T19:30:00.000"}
//	a = a.Normalized() // Date is now "2024-05-01T19:30:00"
//
// Payloads accepted from users should be checked with Validate, which applies
// the embedded JSON schema and reports every violation at once.
package activity
