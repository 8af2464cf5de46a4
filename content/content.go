package content

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

//go:embed articles/*.md pages.yaml
var embedded embed.FS

// Raw HTML in article sources is escaped. Front matter is parsed by the meta
// extension and left out of the rendered body.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(meta.Meta),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type Article struct {
	Slug           string    `json:"slug" yaml:"slug"`
	Title          string    `json:"title" yaml:"title"`
	Summary        string    `json:"summary" yaml:"summary"`
	Date           time.Time `json:"date" yaml:"date"`
	Tags           []string  `json:"tags" yaml:"tags"`
	ReadingMinutes int       `json:"readingMinutes" yaml:"readingMinutes"`
	HTML           string    `json:"html,omitempty" yaml:"-"`
}

// Page is free-form marketing copy keyed by section.
type Page map[string]any

// Library holds every article and page, parsed once.
type Library struct {
	articles []Article
	bySlug   map[string]Article
	pages    map[string]Page
}

// Default loads the content compiled into the binary.
func Default() (*Library, error) {
	return Load(embedded)
}

// Load reads articles/*.md and pages.yaml from fsys. Articles are sorted
// newest first.
func Load(fsys fs.FS) (*Library, error) {
	lib := &Library{bySlug: map[string]Article{}, pages: map[string]Page{}}

	files, err := fs.Glob(fsys, "articles/*.md")
	if err != nil {
		return nil, err
	}
	for _, name := range files {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		article, err := parseArticle(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if article.Slug == "" {
			article.Slug = strings.TrimSuffix(path.Base(name), ".md")
		}
		if _, dup := lib.bySlug[article.Slug]; dup {
			return nil, fmt.Errorf("%s: duplicate article slug %q", name, article.Slug)
		}
		lib.bySlug[article.Slug] = article
		lib.articles = append(lib.articles, article)
	}
	sort.SliceStable(lib.articles, func(i, j int) bool {
		return lib.articles[i].Date.After(lib.articles[j].Date)
	})

	raw, err := fs.ReadFile(fsys, "pages.yaml")
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &lib.pages); err != nil {
		return nil, fmt.Errorf("pages.yaml: %w", err)
	}
	return lib, nil
}

func parseArticle(raw []byte) (Article, error) {
	var article Article

	src := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(src, []byte("---\n")) {
		return article, fmt.Errorf("missing front matter")
	}

	var buf bytes.Buffer
	ctx := parser.NewContext()
	if err := mdRenderer.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return article, err
	}
	fields, err := meta.TryGet(ctx)
	if err != nil {
		return article, fmt.Errorf("front matter: %w", err)
	}
	if err := decodeFrontMatter(fields, &article); err != nil {
		return article, fmt.Errorf("front matter: %w", err)
	}
	if article.Title == "" {
		return article, fmt.Errorf("title is required")
	}

	article.HTML = buf.String()
	return article, nil
}

// decodeFrontMatter copies the parsed YAML map onto a. Dates may arrive as
// time.Time or as their YAML string form.
func decodeFrontMatter(fields map[string]interface{}, a *Article) error {
	for key, v := range fields {
		var err error
		switch key {
		case "slug":
			a.Slug, err = metaString(key, v)
		case "title":
			a.Title, err = metaString(key, v)
		case "summary":
			a.Summary, err = metaString(key, v)
		case "date":
			a.Date, err = metaTime(key, v)
		case "tags":
			a.Tags, err = metaStrings(key, v)
		case "readingMinutes":
			n, ok := v.(int)
			if !ok {
				err = fmt.Errorf("%s: want an integer, got %T", key, v)
			}
			a.ReadingMinutes = n
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func metaString(key string, v interface{}) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(s), nil
	}
}

func metaStrings(key string, v interface{}) ([]string, error) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: want a list, got %T", key, v)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, _ := metaString(key, item)
		out = append(out, s)
	}
	return out, nil
}

func metaTime(key string, v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("%s: cannot parse %q", key, t)
	default:
		return time.Time{}, fmt.Errorf("%s: want a date, got %T", key, v)
	}
}

// Articles lists every article without its body.
func (l *Library) Articles() []Article {
	out := make([]Article, len(l.articles))
	for i, a := range l.articles {
		a.HTML = ""
		out[i] = a
	}
	return out
}

func (l *Library) Article(slug string) (Article, bool) {
	a, ok := l.bySlug[slug]
	return a, ok
}

func (l *Library) Page(name string) (Page, bool) {
	p, ok := l.pages[name]
	return p, ok
}

// PageNames returns the page keys in sorted order.
func (l *Library) PageNames() []string {
	names := make([]string, 0, len(l.pages))
	for name := range l.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
