// Package report renders the self-contained HTML viewer that carries an
// encrypted report. The viewer decrypts in the browser with WebCrypto and
// needs nothing from this service once downloaded.
package report

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"time"

	"github.com/careerdesk/careerdesk/api/internal/infrastructure/crypto"
)

// DefaultStyleCDN is the only external reference in the viewer. It is cosmetic.
const DefaultStyleCDN = "https://cdn.tailwindcss.com"

//go:embed viewer.html.tmpl
var viewerSource string

var viewerTemplate = template.Must(template.New("viewer").Parse(viewerSource))

var containerLiteral = regexp.MustCompile(`const encryptedData\s*=\s*"([0-9a-f]+:[0-9a-f]+:[0-9a-f]+)"\s*;`)

// ErrNoContainer is returned when an HTML document carries no embedded report token.
var ErrNoContainer = errors.New("report: no encrypted container found")

type Builder struct {
	lang     string
	labels   Labels
	styleCDN string
	now      func() time.Time
}

type Option func(*Builder)

func WithLocale(lang string) Option {
	return func(b *Builder) { b.lang = lang }
}

func WithStyleCDN(url string) Option {
	return func(b *Builder) { b.styleCDN = url }
}

func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{lang: "ja", styleCDN: DefaultStyleCDN, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	labels, ok := locales[b.lang]
	if !ok {
		return nil, fmt.Errorf("report: unsupported locale %q", b.lang)
	}
	b.labels = labels
	return b, nil
}

type viewerData struct {
	Lang        string
	Labels      Labels
	StyleCDN    string
	GeneratedAt string
	Container   string
	Iterations  int
	Hash        string
	Delimiter   string
}

// Build embeds an encoded container in the viewer. The KDF parameters handed to
// the inline script come from the same constants the sealing side uses.
func (b *Builder) Build(container string) ([]byte, error) {
	if _, err := crypto.ParseContainer(container); err != nil {
		return nil, fmt.Errorf("report: refusing to embed container: %w", err)
	}

	var buf bytes.Buffer
	err := viewerTemplate.Execute(&buf, viewerData{
		Lang:        b.lang,
		Labels:      b.labels,
		StyleCDN:    b.styleCDN,
		GeneratedAt: b.now().UTC().Format(time.RFC3339),
		Container:   container,
		Iterations:  crypto.PBKDF2Iterations,
		Hash:        crypto.PBKDF2Hash,
		Delimiter:   crypto.ContainerDelimiter,
	})
	if err != nil {
		return nil, fmt.Errorf("report: render viewer: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractContainer recovers the token embedded by Build.
func ExtractContainer(html []byte) (string, error) {
	m := containerLiteral.FindSubmatch(html)
	if m == nil {
		return "", ErrNoContainer
	}
	return string(m[1]), nil
}
