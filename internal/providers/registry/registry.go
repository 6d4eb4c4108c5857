// Package registry maps scraper names to Strategy constructors.
package registry

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/providers/baobao88"
	"github.com/brogergvhs/noveld/internal/providers/generic"
	"github.com/brogergvhs/noveld/internal/providers/quanben"
	"github.com/brogergvhs/noveld/internal/providers/sixnineshu"
	"github.com/brogergvhs/noveld/internal/providers/syosetu"
	"github.com/brogergvhs/noveld/internal/providers/ximalaya"
)

var ErrUnknownScraper = errors.New("unknown scraper")

type factory func(c *fetch.Client) providers.Strategy

var factories = map[string]factory{
	sixnineshu.Name: func(c *fetch.Client) providers.Strategy { return sixnineshu.New(c) },
	syosetu.Name:    func(c *fetch.Client) providers.Strategy { return syosetu.New(c) },
	quanben.Name:    func(c *fetch.Client) providers.Strategy { return quanben.New(c) },
	baobao88.Name:   func(c *fetch.Client) providers.Strategy { return baobao88.New(c) },
	ximalaya.Name:   func(c *fetch.Client) providers.Strategy { return ximalaya.New(c) },
	generic.Name:    func(c *fetch.Client) providers.Strategy { return generic.New(c) },
}

// hosts is consulted by Detect, matched as a suffix of the URL host.
var hosts = map[string]string{
	"69shu.net":         sixnineshu.Name,
	"ncode.syosetu.com": syosetu.Name,
	"quanben.io":        quanben.Name,
	"baobao88.com":      baobao88.Name,
	"ximalaya.com":      ximalaya.Name,
}

// Names returns the registered scraper names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func New(name string, c *fetch.Client) (providers.Strategy, error) {
	f, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScraper, name, strings.Join(Names(), ", "))
	}
	return f(c), nil
}

// Detect picks a scraper name from the novel URL's host, falling back to
// the generic scraper.
func Detect(novelURL string) string {
	u, err := url.Parse(novelURL)
	if err != nil {
		return generic.Name
	}

	host := strings.ToLower(u.Hostname())
	for suffix, name := range hosts {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return name
		}
	}

	return generic.Name
}
