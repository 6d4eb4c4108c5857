package generic

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	chapRe      = regexp.MustCompile(`(?i)(?:vol(?:ume)?[_\-\s]*\d+[_\-\s]*)?(?:chapter|ch)[_\-\s.]*0*([0-9]+)(?:[_\-\s]*[.\-][_\-\s]*([0-9]+))?`)
	chapterDash = regexp.MustCompile(`chapter[_\-]?0*([0-9]+)(?:[_\-]([0-9]+))?`)
	volChapter  = regexp.MustCompile(`vol[_\-]?(\d+)[/_\-]ch[_\-]?(\d+)`)
	simpleCh    = regexp.MustCompile(`(?:^|[/\-_])ch[_\-]?(\d+)(?:\.(\d+))?`)
	cjkChapter  = regexp.MustCompile(`第\s*([0-9]+)\s*[章话話回节節]`)
	titlePrefix = regexp.MustCompile(`^\s*(\d+)(?:\.(\d+))?\s*[.\- ]`)

	reLikelyChapter = regexp.MustCompile(`(?i)(?:^|[-_/])(?:ch|chapter)[-_]?\d+`)
)

// label is the sort key parsed from a chapter link.
type label struct {
	Main int
	Sub  int
}

func (l label) less(o label) bool {
	if l.Main != o.Main {
		return l.Main < o.Main
	}
	return l.Sub < o.Sub
}

type matcher func(href, title string) (label, bool)

var matchers = []matcher{
	matchChapterDash,
	matchVolChapter,
	matchSimpleCh,
	matchCJK,
	matchTitlePrefix,
	matchChapRe,
}

func parseChapterLabel(href, title string) (label, bool) {
	h := strings.ToLower(href)

	if isExcluded(h) {
		return label{}, false
	}

	for _, m := range matchers {
		if l, ok := m(h, title); ok {
			return l, true
		}
	}

	return label{}, false
}

func isExcluded(h string) bool {
	return strings.Contains(h, "/u/") ||
		strings.Contains(h, "/user/") ||
		strings.Contains(h, "/comment")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func matchChapterDash(h, _ string) (label, bool) {
	if m := chapterDash.FindStringSubmatch(h); m != nil {
		return label{Main: atoi(m[1]), Sub: atoi(m[2])}, true
	}
	return label{}, false
}

func matchVolChapter(h, _ string) (label, bool) {
	if m := volChapter.FindStringSubmatch(h); m != nil {
		return label{Main: atoi(m[2]), Sub: atoi(m[1])}, true
	}
	return label{}, false
}

func matchSimpleCh(h, _ string) (label, bool) {
	if m := simpleCh.FindStringSubmatch(h); m != nil {
		return label{Main: atoi(m[1]), Sub: atoi(m[2])}, true
	}
	return label{}, false
}

func matchCJK(_, title string) (label, bool) {
	if m := cjkChapter.FindStringSubmatch(title); m != nil {
		return label{Main: atoi(m[1])}, true
	}
	return label{}, false
}

func matchTitlePrefix(_, title string) (label, bool) {
	if m := titlePrefix.FindStringSubmatch(title); m != nil {
		return label{Main: atoi(m[1]), Sub: atoi(m[2])}, true
	}
	return label{}, false
}

func matchChapRe(_, title string) (label, bool) {
	if m := chapRe.FindStringSubmatch(title); m != nil {
		return label{Main: atoi(m[1]), Sub: atoi(m[2])}, true
	}
	return label{}, false
}

func looksLikeChapterLink(href, title string) bool {
	h := strings.ToLower(href)
	if reLikelyChapter.MatchString(h) || volChapter.MatchString(h) || simpleCh.MatchString(h) {
		return true
	}

	t := strings.ToLower(strings.TrimSpace(title))

	return strings.HasPrefix(t, "ch ") ||
		strings.HasPrefix(t, "ch.") ||
		strings.HasPrefix(t, "chapter ") ||
		cjkChapter.MatchString(t)
}

func resolveURL(baseURL, href string) string {
	if href == "" {
		return baseURL
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}
