package sitectl

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/example/sitectl/internal/remote"
)

const (
	nginxTemplate = "nginx.template.conf"
	unitTemplate  = "gunicorn-systemd.template.service"

	// checkoutTemplatesDir holds the templates inside the deployed repository.
	checkoutTemplatesDir = "deploy_tools"
)

// Substitutions are the values for the DOMAIN and USER template tokens.
type Substitutions struct {
	Domain string
	User   string
}

// Render replaces every literal DOMAIN and USER token in tmpl.
func Render(tmpl string, subs Substitutions) string {
	return strings.NewReplacer("DOMAIN", subs.Domain, "USER", subs.User).Replace(tmpl)
}

// TemplateSource loads a template by file name.
type TemplateSource interface {
	Load(ctx context.Context, name string) (string, error)
}

// DirSource reads templates from a local directory.
type DirSource struct {
	Dir string
}

func (s DirSource) Load(_ context.Context, name string) (string, error) {
	b, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckoutSource reads templates from the target's remote working copy.
type CheckoutSource struct {
	Host   *remote.Host
	Layout Layout
	Target Target
}

func (s CheckoutSource) Load(ctx context.Context, name string) (string, error) {
	p := path.Join(s.Layout.SiteDir(s.Target), checkoutTemplatesDir, name)
	return s.Host.ReadFile(ctx, p)
}

func renderTemplate(ctx context.Context, src TemplateSource, name string, subs Substitutions) (string, error) {
	tmpl, err := src.Load(ctx, name)
	if err != nil {
		return "", fmt.Errorf("load template %s: %w", name, err)
	}
	return Render(tmpl, subs), nil
}

// FindTemplatesDir locates a local directory holding both templates, or
// returns "" when none exists and templates must come from the checkout.
func FindTemplatesDir() string {
	var candidates []string
	if exe, err := os.Executable(); err == nil {
		binDir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(binDir, "..", "templates"),
			filepath.Join(binDir, "templates"),
		)
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, "templates"))
	}
	candidates = append(candidates, "/usr/local/share/sitectl/templates")
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".sitectl", "templates"))
	}

	for _, c := range candidates {
		if hasTemplates(c) {
			return c
		}
	}
	return ""
}

// hasTemplates reports whether dir holds every template provision renders.
// A project's own templates/ directory usually holds neither.
func hasTemplates(dir string) bool {
	for _, name := range []string{nginxTemplate, unitTemplate} {
		if !fileExists(filepath.Join(dir, name)) {
			return false
		}
	}
	return true
}
