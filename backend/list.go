package backend

import "strings"

// Lister assembles a ListResult from keys visited in ascending order.
// It is shared by the clients that have no native delimiter support.
type Lister struct {
	opts   ListOptions
	result *ListResult
	count  int
	last   string
}

func NewLister(opts ListOptions) *Lister {
	return &Lister{
		opts:   opts,
		result: &ListResult{},
	}
}

// Add records info and returns false once the listing is complete.
// Keys must be visited in ascending order.
func (l *Lister) Add(info ObjectInfo) bool {
	if !strings.HasPrefix(info.Key, l.opts.Prefix) {
		return true
	}

	prefix := ""
	if l.opts.Delimiter != "" {
		rest := strings.TrimPrefix(info.Key, l.opts.Prefix)
		if idx := strings.Index(rest, l.opts.Delimiter); idx >= 0 {
			prefix = l.opts.Prefix + rest[:idx+len(l.opts.Delimiter)]
			if prefix == l.last {
				return true
			}
		}
	}

	if l.opts.MaxKeys > 0 && l.count >= l.opts.MaxKeys {
		l.result.Truncated = true
		return false
	}

	l.count++
	if prefix != "" {
		l.last = prefix
		l.result.CommonPrefixes = append(l.result.CommonPrefixes, prefix)
		return true
	}

	l.result.Objects = append(l.result.Objects, info)
	return true
}

// Result returns the assembled listing.
func (l *Lister) Result() *ListResult {
	return l.result
}
