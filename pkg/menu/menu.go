// Package menu projects a merged route tree into an ordered navigation menu.
package menu

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vango-dev/filerouter/pkg/router"
)

// DefaultLocale is the collation used to break order ties.
const DefaultLocale = "en-US"

// Item is one navigation menu entry.
type Item struct {
	// To is the route path in router syntax, without leading slash.
	To string `json:"to" yaml:"to"`

	// Title is the menu title, falling back to the page title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`

	// Order is nil for entries without an explicit position.
	Order *float64 `json:"order,omitempty" yaml:"order,omitempty"`
}

// Options configures projection and sorting.
type Options struct {
	// Locale names the collation for tie-breaking on To.
	// Default: DefaultLocale
	Locale string

	// Logger receives a warning when the locale is unusable.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Project flattens every view of root depth-first, drops excluded views and
// returns the items sorted by Sort. The tree is not modified.
func Project(root *router.ViewRoute, opts Options) []Item {
	var items []Item
	root.Walk(func(vr *router.ViewRoute) bool {
		if !vr.IsView() || vr.Menu.Excluded() {
			return true
		}
		item := Item{
			To:    vr.FullPath,
			Title: vr.Menu.Title,
			Icon:  vr.Menu.Icon,
		}
		if item.Title == "" {
			item.Title = vr.Title
		}
		if o := vr.Menu.Order; o != nil && !math.IsNaN(*o) {
			n := *o
			item.Order = &n
		}
		items = append(items, item)
		return true
	})

	Sort(items, opts)
	return items
}

// Sort orders items in place by Order ascending, an absent order counting
// as +Inf, so entries without an order follow every finite one. Equal
// orders, an explicit +Inf against an absent order included, are broken by
// collating To under opts.Locale. The sort is stable. If the locale cannot be used, To is compared by code point
// instead.
func Sort(items []Item, opts Options) {
	compare := comparer(opts)
	sort.SliceStable(items, func(i, j int) bool {
		return Less(items[i], items[j], compare)
	})
}

// Less reports whether a sorts before b, using compare for To.
// A NaN order counts as no order.
func Less(a, b Item, compare func(x, y string) int) bool {
	if ao, bo := order(a), order(b); ao != bo {
		return ao < bo
	}
	return compare(a.To, b.To) < 0
}

func order(it Item) float64 {
	if it.Order == nil || math.IsNaN(*it.Order) {
		return math.Inf(1)
	}
	return *it.Order
}

// comparer returns the To comparison for opts. A Collator is not safe for
// concurrent use, so every Sort gets its own.
func comparer(opts Options) func(a, b string) int {
	locale := opts.Locale
	if locale == "" {
		locale = DefaultLocale
	}

	tag, err := language.Parse(locale)
	if err != nil {
		logger := opts.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("menu collation unavailable, comparing by code point",
			"locale", locale,
			"error", err,
		)
		return strings.Compare
	}

	c := collate.New(tag)
	return c.CompareString
}
