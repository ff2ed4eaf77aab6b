// Package normalize turns the loosely shaped judge, run and AI-review
// responses of the backend into the stable report types in models.
//
// None of the functions here fail: a malformed or unexpected payload
// degrades to a documented default instead.
package normalize
