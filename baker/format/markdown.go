// Configures the goldmark pipeline and link observation logic
package format

import (
	"bytes"
	"strings"

	chroma_html "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/gohugoio/hugo-goldmark-extensions/passthrough"
	admonitions "github.com/stefanfritsch/goldmark-admonitions"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var observeKey = parser.NewContextKey()

func codeBlockWrapper(w util.BufWriter, c highlighting.CodeBlockContext, entering bool) {
	if entering {
		langBytes, _ := c.Language()
		lang := string(langBytes)
		if lang == "" {
			lang = "text"
		}
		_, _ = w.WriteString(`<div class="code-wrapper" data-lang="` + lang + `">`)
	} else {
		_, _ = w.WriteString(`</div>`)
	}
}

// linkObserver reports every link destination to the per-conversion observer.
type linkObserver struct{}

func (t *linkObserver) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	v := pc.Get(observeKey)
	if v == nil {
		return
	}
	observe := v.(func(string))

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			dest := string(link.Destination)
			if !strings.HasPrefix(dest, "http") {
				observe(dest)
			}
		}
		return ast.WalkContinue, nil
	})
}

// Markdown is the goldmark-backed formatter for .md sources.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown builds the markdown formatter with the standard extension set.
func NewMarkdown() *Markdown {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			meta.Meta,
			highlighting.NewHighlighting(
				highlighting.WithStyle("nord"),
				highlighting.WithFormatOptions(
					chroma_html.WithClasses(true),
				),
				highlighting.WithWrapperRenderer(codeBlockWrapper),
			),
			&admonitions.Extender{},
			passthrough.New(passthrough.Config{
				InlineDelimiters: []passthrough.Delimiters{{Open: "$", Close: "$"}, {Open: "\\(", Close: "\\)"}},
				BlockDelimiters:  []passthrough.Delimiters{{Open: "$$", Close: "$$"}, {Open: "\\[", Close: "\\]"}},
			}),
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(&linkObserver{}, 100),
			),
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Markdown{md: md}
}

func (m *Markdown) Name() string         { return "markdown" }
func (m *Markdown) Extensions() []string { return []string{"md", "markdown"} }
func (m *Markdown) Exclusive() bool      { return true }

func (m *Markdown) Convert(source []byte, opts ConvertOptions) (Result, error) {
	ctx := parser.NewContext()
	if opts.ObserveLink != nil {
		ctx.Set(observeKey, opts.ObserveLink)
	}

	var buf bytes.Buffer
	if err := m.md.Convert(source, &buf, parser.WithContext(ctx)); err != nil {
		return Result{}, err
	}

	return Result{
		HTML: buf.Bytes(),
		Meta: meta.Get(ctx),
	}, nil
}

// ExtractPlainText walks the AST and returns a clean string of all text
// content, used for description fallbacks.
func (m *Markdown) ExtractPlainText(source []byte) string {
	ctx := parser.NewContext()
	node := m.md.Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	var out strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindText:
			t := n.(*ast.Text)
			out.Write(t.Segment.Value(source))
			out.WriteString(" ")
		case ast.KindHeading:
			out.WriteString("\n")
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(out.String())
}
