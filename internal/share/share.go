// Package share builds the platform-neutral metadata bundle used when a
// trophy is shared or rendered for crawlers. It performs no authorization:
// callers pass only trophies the audience may read.
package share

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trophyangler/internal/domain"
)

// Tag is one <meta> entry. Order is significant and stable.
type Tag struct {
	Property string `json:"property"`
	Content  string `json:"content"`
}

type Person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// StructuredData is the schema.org Article payload.
type StructuredData struct {
	Context       string `json:"@context"`
	Type          string `json:"@type"`
	Headline      string `json:"headline"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	URL           string `json:"url"`
	DatePublished string `json:"datePublished"`
	Author        Person `json:"author"`
	ArticleBody   string `json:"articleBody"`
}

type Metadata struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	URL            string         `json:"url"`
	ImageURL       string         `json:"image_url"`
	ShareMessage   string         `json:"share_message"`
	Tags           []Tag          `json:"tags"`
	StructuredData StructuredData `json:"structured_data"`
}

type Generator struct {
	baseURL  string
	siteName string
}

func NewGenerator(baseURL, siteName string) *Generator {
	if siteName == "" {
		siteName = "Trophy Angler"
	}
	return &Generator{baseURL: strings.TrimRight(baseURL, "/"), siteName: siteName}
}

// CanonicalURL is the public page of a trophy.
func (g *Generator) CanonicalURL(id string) string {
	return g.baseURL + "/trophy/" + id
}

// Generate maps t to its metadata. The same trophy always yields the same bundle.
func (g *Generator) Generate(t *domain.Trophy) Metadata {
	species := strings.TrimSpace(t.Species)
	// a Caser keeps state, so one per call
	display := cases.Title(language.English).String(species)
	url := g.CanonicalURL(t.ID)
	size := fmt.Sprintf("%scm × %scm", num(t.Length), num(t.Width))
	location := strings.TrimSpace(t.LocationName)

	bait := "unknown bait"
	if t.Bait != nil && strings.TrimSpace(*t.Bait) != "" {
		bait = strings.TrimSpace(*t.Bait)
	}

	where := ""
	if location != "" {
		where = " at " + location
	}

	description := fmt.Sprintf("A %s %s caught%s.", size, species, where)
	if notes := strings.TrimSpace(t.Notes); notes != "" {
		description += " " + notes
	}

	ogDescription := fmt.Sprintf("Landed%s using %s. %s", where, bait, size)
	twitterDescription := "Caught on " + g.siteName
	if location != "" {
		twitterDescription = "Caught at " + location
	}

	ldDescription := strings.TrimSpace(t.Notes)
	if ldDescription == "" {
		ldDescription = description
	}

	return Metadata{
		Title:        fmt.Sprintf("%s Caught on %s", display, g.siteName),
		Description:  description,
		URL:          url,
		ImageURL:     t.PhotoURL,
		ShareMessage: fmt.Sprintf("🎣 Check out this %s I just landed on %s! 🏆", species, g.siteName),
		Tags: []Tag{
			{"og:title", fmt.Sprintf("Big %s Caught on %s!", species, g.siteName)},
			{"og:description", ogDescription},
			{"og:image", t.PhotoURL},
			{"og:url", url},
			{"og:type", "article"},
			{"og:site_name", g.siteName},
			{"twitter:card", "summary_large_image"},
			{"twitter:title", fmt.Sprintf("Big %s - %s", species, g.siteName)},
			{"twitter:description", twitterDescription},
			{"twitter:image", t.PhotoURL},
		},
		StructuredData: StructuredData{
			Context:       "https://schema.org",
			Type:          "Article",
			Headline:      display + " Catch Log",
			Description:   ldDescription,
			Image:         t.PhotoURL,
			URL:           url,
			DatePublished: t.CaughtAt.UTC().Format(time.RFC3339),
			Author:        Person{Type: "Person", Name: g.siteName + " User"},
			ArticleBody:   fmt.Sprintf("Caught a %s %s%s.", size, species, where),
		},
	}
}

// JSON encodes the bundle. Field and tag order are fixed, so equal input
// gives byte-identical output.
func (m Metadata) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var headTemplate = template.Must(template.New("head").Parse(`<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}">
<link rel="canonical" href="{{.URL}}">
{{range .Tags}}<meta property="{{.Property}}" content="{{.Content}}">
{{end}}<script type="application/ld+json">{{.LD}}</script>
`))

// HTMLHead renders the tags as an HTML head fragment for crawlers.
func (m Metadata) HTMLHead() ([]byte, error) {
	ld, err := json.Marshal(m.StructuredData)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = headTemplate.Execute(&buf, struct {
		Metadata
		LD template.JS
	}{Metadata: m, LD: template.JS(ld)})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
