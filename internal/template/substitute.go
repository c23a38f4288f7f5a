package template

import (
	"regexp"
	"strconv"
)

var placeholderRe = regexp.MustCompile(`\$\{([A-Za-z0-9_.]+)\}`)

// Bag is the per-request parameter mapping consulted during substitution.
// Reserved keys (requestId, timestamp, elapsedTime) are always present and
// win any collision with a same-named user-sourced parameter: this pins the
// open question spec §9 leaves undocumented upstream.
type Bag struct {
	reserved map[string]string
	user     map[string]string
}

// NewBag builds a bag from the three reserved values and the per-request
// user-sourced parameter values.
func NewBag(requestID int64, timestampMs, elapsedMs int64, user map[string]string) *Bag {
	return &Bag{
		reserved: map[string]string{
			"requestId":   strconv.FormatInt(requestID, 10),
			"timestamp":   strconv.FormatInt(timestampMs, 10),
			"elapsedTime": strconv.FormatInt(elapsedMs, 10),
		},
		user: user,
	}
}

func (b *Bag) lookup(name string) (string, bool) {
	if v, ok := b.reserved[name]; ok {
		return v, true
	}
	v, ok := b.user[name]
	return v, ok
}

// substitute replaces every ${name} occurrence left-to-right with the
// bag's value for name; a name with no match (reserved or user) is left
// literal in the output, per spec §4.C.
func substitute(s string, bag *Bag) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		if v, ok := bag.lookup(name); ok {
			return v
		}
		return match
	})
}
