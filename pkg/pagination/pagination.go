// Package pagination turns page/size request parameters into the
// offset/limit window used by every listing.
package pagination

// DefaultLimit is the page size used when a request asks for none, or for
// fewer rows than this.
const DefaultLimit = 20

// Window is the slice of a listing a request should read. It is derived per
// request and never stored.
type Window struct {
	Start uint `json:"start"`
	End   uint `json:"end"`
	Limit uint `json:"limit"`
	Pages uint `json:"pages"`
}

// Offset returns Start as an int for SQL OFFSET clauses.
func (w Window) Offset() int { return int(w.Start) }

// Size returns Limit as an int for SQL LIMIT clauses.
func (w Window) Size() int { return int(w.Limit) }

// Paginator computes windows against a fixed default page size.
type Paginator struct {
	defaultLimit uint
}

// New builds a Paginator. Non-positive defaults fall back to DefaultLimit.
func New(defaultLimit int) Paginator {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return Paginator{defaultLimit: uint(defaultLimit)}
}

// DefaultLimit exposes the configured floor page size.
func (p Paginator) DefaultLimit() int {
	if p.defaultLimit == 0 {
		return DefaultLimit
	}
	return int(p.defaultLimit)
}

// Paginate maps the requested page and size onto a window over total rows.
//
// A requested size below the default is ignored in favour of the default.
// A missing or out-of-range page yields the first page's window instead of
// an error. On the last page of a ragged listing the start is pulled back so
// Limit stays a full page; storage truncates the overrun.
//
// The last-page start relies on saturating unsigned subtraction: for page 3,
// size 20 and 45 rows, total-n*limit clamps to 0 and the window is
// {25, 45, 20, 3}. Signed arithmetic would give start 40 instead.
func (p Paginator) Paginate(page, size *int, total uint) Window {
	limit := uint(p.DefaultLimit())
	if size != nil && *size >= int(limit) {
		limit = uint(*size)
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}

	if page == nil || *page < 1 || uint(*page) > pages {
		end := total
		if limit < end {
			end = limit
		}
		return Window{Start: 0, End: end, Limit: end, Pages: pages}
	}

	n := uint(*page)
	var end uint
	if n == pages {
		end = total
	} else {
		end = n * limit
	}

	var start uint
	switch {
	case n == 1:
		start = 0
	case n == pages:
		start = sub(sub(total, limit), sub(total, n*limit))
	default:
		start = end - limit
	}

	return Window{Start: start, End: end, Limit: end - start, Pages: pages}
}

// Paginate uses DefaultLimit as the floor page size.
func Paginate(page, size *int, total uint) Window {
	return New(DefaultLimit).Paginate(page, size, total)
}

// sub is saturating unsigned subtraction.
func sub(a, b uint) uint {
	if b > a {
		return 0
	}
	return a - b
}
