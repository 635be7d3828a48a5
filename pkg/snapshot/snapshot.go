// Package snapshot renders components to static HTML and publishes the
// result to S3.
//
//	awsCfg, _ := config.LoadDefaultConfig(ctx)
//	pub := snapshot.NewPublisher(s3.NewFromConfig(awsCfg), "my-site", snapshot.WithPrefix("pages/"))
//	res, err := pub.Publish(ctx, "index.html", demo.TodoApp, nil)
package snapshot

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/reactor/pkg/host/memdom"
	"github.com/vango-dev/reactor/pkg/reactivity"
	"github.com/vango-dev/reactor/pkg/renderer"
	"github.com/vango-dev/reactor/pkg/scheduler"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Render mounts root with props on an in-memory document, lets pending
// updates settle and returns the rendered HTML. The app is unmounted
// before Render returns.
func Render(root *vdom.Component, props vdom.Props) (string, error) {
	doc := memdom.New()
	sched := scheduler.New()
	r := renderer.New(doc, renderer.WithScheduler(sched))
	container := doc.CreateContainer("div")

	app := r.CreateApp(root, props)
	var err error
	sched.RunTask(func() {
		err = app.Mount(container)
	})
	if err != nil {
		return "", err
	}
	html := container.InnerHTML()
	sched.RunTask(app.Unmount)
	return html, nil
}

// TemplateComponent returns a component rendering the template src with
// state as its setup state. Mounting it requires a registered template compiler.
func TemplateComponent(name, src string, state map[string]any) *vdom.Component {
	return &vdom.Component{
		Name:     name,
		Template: src,
		Setup: func(*reactivity.Object, *vdom.SetupContext) any {
			// Each instance gets its own copy of the top-level state.
			s := make(map[string]any, len(state))
			for k, v := range state {
				s[k] = v
			}
			return s
		},
	}
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div id="reactor-root">{{.Body}}</div>
</body>
</html>
`))

// Document wraps rendered body HTML in a complete page.
func Document(title, body string) string {
	var buf bytes.Buffer
	// The template is static and both fields are plain strings.
	_ = documentTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body)})
	return buf.String()
}

// PutObjectAPI is the subset of the S3 client used by Publisher.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPrefix prefixes every object key.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithTitle wraps published HTML in a full document with this title.
// Without it the component HTML is uploaded as-is.
func WithTitle(title string) Option {
	return func(p *Publisher) {
		p.title = title
	}
}

// WithCacheControl sets the Cache-Control header of published objects.
func WithCacheControl(v string) Option {
	return func(p *Publisher) {
		p.cacheControl = v
	}
}

// WithLogger sets the publisher's logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// Publisher renders components and uploads the HTML to an S3 bucket.
type Publisher struct {
	client       PutObjectAPI
	bucket       string
	prefix       string
	title        string
	cacheControl string
	logger       *slog.Logger
	now          func() time.Time
}

// NewPublisher creates a publisher writing to bucket through client.
func NewPublisher(client PutObjectAPI, bucket string, opts ...Option) *Publisher {
	p := &Publisher{
		client:       client,
		bucket:       bucket,
		cacheControl: "no-cache",
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result describes a published snapshot.
type Result struct {
	Bucket string
	Key    string
	ETag   string
	Size   int
	SHA256 string
}

// Key returns the object key for name under the publisher's prefix.
func (p *Publisher) Key(name string) string {
	name = strings.TrimPrefix(name, "/")
	if p.prefix == "" {
		return name
	}
	return strings.TrimSuffix(p.prefix, "/") + "/" + name
}

// Publish renders root with props and uploads the HTML under name.
func (p *Publisher) Publish(ctx context.Context, name string, root *vdom.Component, props vdom.Props) (*Result, error) {
	html, err := Render(root, props)
	if err != nil {
		return nil, fmt.Errorf("snapshot: render %s: %w", name, err)
	}
	if p.title != "" {
		html = Document(p.title, html)
	}
	return p.PublishHTML(ctx, name, html)
}

// PublishHTML uploads already rendered HTML under name.
func (p *Publisher) PublishHTML(ctx context.Context, name, html string) (*Result, error) {
	key := p.Key(name)
	sum := sha256.Sum256([]byte(html))
	digest := hex.EncodeToString(sum[:])

	out, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         strings.NewReader(html),
		ContentType:  aws.String("text/html; charset=utf-8"),
		CacheControl: aws.String(p.cacheControl),
		Metadata: map[string]string{
			"sha256":       digest,
			"rendered-at":  p.now().UTC().Format(time.RFC3339),
			"generated-by": "reactor",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: s3 upload %s: %w", key, err)
	}

	res := &Result{
		Bucket: p.bucket,
		Key:    key,
		ETag:   aws.ToString(out.ETag),
		Size:   len(html),
		SHA256: digest,
	}
	p.logger.Info("snapshot published", "bucket", res.Bucket, "key", res.Key, "bytes", res.Size)
	return res, nil
}
