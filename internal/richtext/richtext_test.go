package richtext

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `[
  {"_type":"block","_key":"h","style":"h2","children":[{"_key":"s0","text":"Why switch"}]},
  {"_type":"block","_key":"p","style":"normal","markDefs":[{"_key":"l1","_type":"link","href":"https://example.eu"}],
   "children":[{"_key":"s1","text":"Hosted in "},{"_key":"s2","text":"Frankfurt","marks":["strong","l1"]}]},
  {"_type":"block","_key":"li1","listItem":"bullet","children":[{"_key":"s3","text":"GDPR"}]},
  {"_type":"block","_key":"li2","listItem":"bullet","children":[{"_key":"s4","text":"SSO"}]},
  {"_type":"image","_key":"img","asset":{"_ref":"image-abc-10x10-png"},"alt":"Dashboard"},
  {"_type":"code","_key":"c","language":"go","code":"a < b"},
  {"_type":"callout","_key":"co","tone":"warning","text":"Beta"},
  {"_type":"markdown","_key":"md","markdown":"**bold** <script>alert(1)</script>"},
  {"_type":"youtube","_key":"yt","url":"https://youtube.com/x"}
]`

func TestDecodeDispatchesOnType(t *testing.T) {
	body, err := Decode([]byte(sampleBody))
	require.NoError(t, err)
	require.Len(t, body, 9)

	assert.IsType(t, &TextBlock{}, body[0])
	assert.IsType(t, &ImageBlock{}, body[4])
	assert.IsType(t, &CodeBlock{}, body[5])
	assert.IsType(t, &CalloutBlock{}, body[6])
	assert.IsType(t, &MarkdownBlock{}, body[7])

	unknown, ok := body[8].(*UnknownBlock)
	require.True(t, ok)
	assert.Equal(t, Kind("youtube"), unknown.Kind())
	assert.Equal(t, "yt", unknown.BlockKey())

	img := body[4].(*ImageBlock)
	assert.Equal(t, "image-abc-10x10-png", img.Ref)
	assert.Equal(t, "Dashboard", img.Alt)
}

func TestDecodeNullIsEmpty(t *testing.T) {
	body, err := Decode([]byte("null"))
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestDecodeRejectsNonArray(t *testing.T) {
	_, err := Decode([]byte(`{"_type":"block"}`))
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	body, err := Decode([]byte(sampleBody))
	require.NoError(t, err)

	r := NewRenderer(WithImageURL(func(ref, _ string) string {
		return "https://cdn.example/" + ref
	}))
	out, err := r.Render(body)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<h2>Why switch</h2>")
	assert.Contains(t, html, `<p>Hosted in <strong><a href="https://example.eu">Frankfurt</a></strong></p>`)
	assert.Contains(t, html, "<ul><li>GDPR</li><li>SSO</li></ul>")
	assert.Contains(t, html, `src="https://cdn.example/image-abc-10x10-png"`)
	assert.Contains(t, html, `<code class="language-go">a &lt; b</code>`)
	assert.Contains(t, html, "bg-amber-50")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "youtube")
}

func TestRenderDropsUnsafeLinks(t *testing.T) {
	body := Body{&TextBlock{
		Key:      "p",
		Style:    "normal",
		MarkDefs: []MarkDef{{Key: "l", Type: "link", Href: "javascript:alert(1)"}},
		Children: []Span{{Key: "s", Text: "click", Marks: []string{"l"}}},
	}}

	out, err := NewRenderer().Render(body)
	require.NoError(t, err)
	assert.Equal(t, "<p>click</p>", string(out))
}

func TestRenderSwitchesListTypes(t *testing.T) {
	body := Body{
		&TextBlock{Key: "a", ListItem: "number", Children: []Span{{Text: "one"}}},
		&TextBlock{Key: "b", ListItem: "bullet", Children: []Span{{Text: "dot"}}},
		&TextBlock{Key: "c", Style: "normal", Children: []Span{{Text: "after"}}},
	}

	out, err := NewRenderer().Render(body)
	require.NoError(t, err)
	assert.Equal(t, "<ol><li>one</li></ol><ul><li>dot</li></ul><p>after</p>", string(out))
}

func TestRenderNestsListsByLevel(t *testing.T) {
	body := Body{
		&TextBlock{Key: "a", ListItem: "bullet", Level: 1, Children: []Span{{Text: "one"}}},
		&TextBlock{Key: "b", ListItem: "bullet", Level: 2, Children: []Span{{Text: "sub"}}},
		&TextBlock{Key: "c", ListItem: "number", Level: 3, Children: []Span{{Text: "step"}}},
		&TextBlock{Key: "d", ListItem: "bullet", Level: 1, Children: []Span{{Text: "two"}}},
		&TextBlock{Key: "e", ListItem: "bullet", Level: 2, Children: []Span{{Text: "last"}}},
	}

	out, err := NewRenderer().Render(body)
	require.NoError(t, err)
	assert.Equal(t,
		"<ul><li>one<ul><li>sub<ol><li>step</li></ol></li></ul></li>"+
			"<li>two<ul><li>last</li></ul></li></ul>",
		string(out))
}

func TestRenderNestedListTypeChange(t *testing.T) {
	body := Body{
		&TextBlock{Key: "a", ListItem: "bullet", Level: 1, Children: []Span{{Text: "one"}}},
		&TextBlock{Key: "b", ListItem: "bullet", Level: 2, Children: []Span{{Text: "x"}}},
		&TextBlock{Key: "c", ListItem: "number", Level: 2, Children: []Span{{Text: "y"}}},
		&TextBlock{Key: "d", Style: "normal", Children: []Span{{Text: "after"}}},
	}

	out, err := NewRenderer().Render(body)
	require.NoError(t, err)
	assert.Equal(t,
		"<ul><li>one<ul><li>x</li></ul><ol><li>y</li></ol></li></ul><p>after</p>",
		string(out))
}

func TestRenderImageWithoutSourceIsSkipped(t *testing.T) {
	out, err := NewRenderer().Render(Body{&ImageBlock{Key: "i", Alt: "nothing"}})
	require.NoError(t, err)
	assert.Empty(t, string(out))
}

func TestCustomBlockRenderer(t *testing.T) {
	yt := BlockRendererFunc(func(w io.Writer, b Block) error {
		_, err := io.WriteString(w, "<div>video "+b.BlockKey()+"</div>")
		return err
	})
	r := NewRenderer(WithBlockRenderer("youtube", yt))

	out, err := r.Render(Body{&UnknownBlock{Key: "v1", Type: "youtube"}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "<div>video v1"))
}
