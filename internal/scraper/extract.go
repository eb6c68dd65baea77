package scraper

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/xi-fantasy/internal/provider"
)

// Extraction is the outcome of one strategy: either a value was found or
// nothing was.
type Extraction struct {
	Value string
	Found bool
}

// Found wraps a located value.
func Found(v string) Extraction { return Extraction{Value: v, Found: true} }

// NotFound is the empty outcome.
func NotFound() Extraction { return Extraction{} }

// Strategy extracts one field from a candidate player node.
type Strategy struct {
	Name  string
	Apply func(node *goquery.Selection) Extraction
}

// Chain is an ordered list of strategies, most specific first.
type Chain []Strategy

// Run returns the first strategy hit and the name of the strategy that
// produced it.
func (c Chain) Run(node *goquery.Selection) (Extraction, string) {
	for _, s := range c {
		if e := s.Apply(node); e.Found {
			return e, s.Name
		}
	}
	return NotFound(), ""
}

// NodeLocators are the structural selectors tried, in order, to find one
// element per player. The first locator whose nodes yield at least one
// record wins; if none do, innermost generic containers holding a percent
// sign are tried last.
var NodeLocators = []string{
	".jugador",
	".player",
	".player-card",
	".lista-jugadores .row",
	".media",
}

const (
	genericLocator = "li, tr, article, div"
	// maxFallbackWords bounds the plain-text name fallback; longer text is
	// a container, not a name.
	maxFallbackWords = 6
)

// NameChain locates the player's display name. Each selector skips matches
// without a letter, such as shirt numbers that share the name class, and
// keeps looking through later matches.
var NameChain = Chain{
	textMatching(".nombre", hasLetter),
	textMatching(".name", hasLetter),
	textMatching(".player-name", hasLetter),
	textMatching(".media-body strong", hasLetter),
	textMatching("strong", hasLetter),
	{Name: "short-text", Apply: shortTextName},
}

// ProbabilityChain locates the text carrying the start percentage.
var ProbabilityChain = Chain{
	textMatching(".probabilidad", hasPercent),
	textMatching(".prob", hasPercent),
	textMatching(".badge", hasPercent),
	textMatching(".player-prob", hasPercent),
	textMatching(".label", hasPercent),
	{Name: "percent-in-text", Apply: percentInText},
}

// ImageChain locates the player photo. Lazy-loaded images carry the real
// URL in data-src.
var ImageChain = Chain{
	attrOf("img[data-src]", "data-src"),
	attrOf("img[src]", "src"),
}

// ProfileChain locates the link to the player's profile page.
var ProfileChain = Chain{
	attrOf("a[href*='/jugadores/']", "href"),
}

var (
	shortPercentRe  = regexp.MustCompile(`(\d{1,3}\s?%)`)
	anyPercentRe    = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*%`)
	artifactMarkers = []string{"JugadorJugadorJugador", "Prob.Prob"}
)

// ExtractStats counts what happened to candidate nodes on one page.
type ExtractStats struct {
	Locator    string `json:"locator"`
	Candidates int    `json:"candidates"`
	Kept       int    `json:"kept"`
	Artifacts  int    `json:"artifacts"`
	Incomplete int    `json:"incomplete"`
}

func (s *ExtractStats) add(o ExtractStats) {
	s.Candidates += o.Candidates
	s.Kept += o.Kept
	s.Artifacts += o.Artifacts
	s.Incomplete += o.Incomplete
}

// ExtractPlayers parses one team page into records. It never touches the
// network. A page with no recognizable player nodes returns no records and
// no error.
func ExtractPlayers(team, pageURL string, body []byte) ([]provider.PlayerRecord, ExtractStats, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, ExtractStats{}, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	var tried ExtractStats
	for _, loc := range NodeLocators {
		records, stats := extractNodes(team, base, doc.Find(loc))
		if len(records) > 0 {
			stats.Locator = loc
			return records, stats, nil
		}
		tried.add(stats)
	}

	records, stats := extractNodes(team, base, innermostWithPercent(doc.Selection))
	if len(records) > 0 {
		stats.Locator = "generic"
		return records, stats, nil
	}
	tried.add(stats)
	return nil, tried, nil
}

func extractNodes(team string, base *url.URL, nodes *goquery.Selection) ([]provider.PlayerRecord, ExtractStats) {
	var stats ExtractStats
	var records []provider.PlayerRecord

	nodes.Each(func(_ int, node *goquery.Selection) {
		stats.Candidates++

		name, _ := NameChain.Run(node)
		prob, _ := ProbabilityChain.Run(node)
		if !name.Found || !prob.Found {
			stats.Incomplete++
			return
		}
		if isArtifact(name.Value) || isArtifact(prob.Value) {
			stats.Artifacts++
			return
		}
		pct, ok := provider.ParsePercent(prob.Value)
		if !ok {
			stats.Incomplete++
			return
		}

		rec := provider.PlayerRecord{
			Team:             team,
			Name:             name.Value,
			StartProbability: pct,
		}
		if img, _ := ImageChain.Run(node); img.Found {
			rec.ImageURL = resolve(base, img.Value)
		}
		if link, _ := ProfileChain.Run(node); link.Found {
			rec.ProfileURL = resolve(base, link.Value)
		}
		records = append(records, rec)
		stats.Kept++
	})
	return records, stats
}

// textMatching returns the first element under the node matching sel whose
// normalized text satisfies accept.
func textMatching(sel string, accept func(string) bool) Strategy {
	return Strategy{
		Name: sel,
		Apply: func(node *goquery.Selection) Extraction {
			var out Extraction
			node.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				if t := spacedText(s); t != "" && accept(t) {
					out = Found(t)
					return false
				}
				return true
			})
			return out
		},
	}
}

func attrOf(sel, attr string) Strategy {
	return Strategy{
		Name: sel,
		Apply: func(node *goquery.Selection) Extraction {
			v, ok := node.Find(sel).First().Attr(attr)
			v = strings.TrimSpace(v)
			if !ok || v == "" || strings.HasPrefix(v, "data:") {
				return NotFound()
			}
			return Found(v)
		},
	}
}

// shortTextName treats the whole node text as the name when it is short,
// dropping any trailing "Prob..." label and percentage.
func shortTextName(node *goquery.Selection) Extraction {
	t := spacedText(node)
	if t == "" || len(strings.Fields(t)) > maxFallbackWords {
		return NotFound()
	}
	if i := strings.Index(t, " Prob"); i >= 0 {
		t = t[:i]
	}
	t = strings.Join(strings.Fields(anyPercentRe.ReplaceAllString(t, " ")), " ")
	if !hasLetter(t) {
		return NotFound()
	}
	return Found(t)
}

func percentInText(node *goquery.Selection) Extraction {
	if m := shortPercentRe.FindString(spacedText(node)); m != "" {
		return Found(m)
	}
	return NotFound()
}

// innermostWithPercent returns generic containers mentioning a percentage
// that have no such container below them.
func innermostWithPercent(root *goquery.Selection) *goquery.Selection {
	withPercent := func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "%")
	}
	return root.Find(genericLocator).FilterFunction(func(i int, s *goquery.Selection) bool {
		if !withPercent(i, s) {
			return false
		}
		return s.Find(genericLocator).FilterFunction(withPercent).Length() == 0
	})
}

// spacedText joins the text nodes under s with single spaces, so adjacent
// elements do not run together ("Pedri" + "85%" stays "Pedri 85%").
func spacedText(s *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				parts = append(parts, c.Text())
				return
			}
			walk(c)
		})
	}
	walk(s)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// isArtifact flags the rendering glitches some pages emit, where a label is
// concatenated with itself ("JugadorJugadorJugador", "Prob.Prob.").
func isArtifact(s string) bool {
	for _, m := range artifactMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return hasTripledRun(s)
}

// maxArtifactRunes bounds the prefix hasTripledRun inspects. Names and
// labels are far shorter; longer text is a whole-row dump.
const maxArtifactRunes = 64

// hasTripledRun reports whether some substring of at least three runes
// appears three times back to back within the first maxArtifactRunes runes.
func hasTripledRun(s string) bool {
	r := []rune(s)
	if len(r) > maxArtifactRunes {
		r = r[:maxArtifactRunes]
	}
	for l := 3; 3*l <= len(r); l++ {
		for i := 0; i+3*l <= len(r); i++ {
			a := r[i : i+l]
			if slices.Equal(a, r[i+l:i+2*l]) && slices.Equal(a, r[i+2*l:i+3*l]) {
				return true
			}
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasPercent(s string) bool { return strings.Contains(s, "%") }

func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}
