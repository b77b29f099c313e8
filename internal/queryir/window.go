package queryir

// Window restricts a query to a page of results.
//
// A nil *Window means "all rows". Limit 0 is a valid window that returns
// nothing, which is what a caller asking for pageSize=0 gets.
type Window struct {
	Limit  int
	Offset int
}

// Page returns the window for zero-based page number page of size pageSize.
func Page(page, pageSize int) *Window {
	return &Window{Limit: pageSize, Offset: page * pageSize}
}
