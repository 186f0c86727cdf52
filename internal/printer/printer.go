// Package printer writes styled status lines for CLI commands.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/colonyops/tally/internal/core/styles"
)

type ctxKey struct{}

// Printer writes leveled, icon-prefixed lines. Errors and warnings go to
// the error writer.
type Printer struct {
	out io.Writer
	err io.Writer
}

func New(out, err io.Writer) *Printer {
	return &Printer{out: out, err: err}
}

// NewContext returns a context carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer stored in ctx, or one writing to stdout and
// stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout, os.Stderr)
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(p.out, styles.TextSuccessStyle.Render(styles.IconCheck), format, args...)
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(p.out, styles.TextPrimaryStyle.Render(styles.IconNotifyInfo), format, args...)
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.err, styles.TextWarningStyle.Render(styles.IconNotifyWarning), format, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.err, styles.TextErrorStyle.Render(styles.IconNotifyError), format, args...)
}

// Section prints a bold heading.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintln(p.out, styles.TextForegroundBoldStyle.Render(title))
}

// CheckItem, WarnItem and FailItem print indented check results.
func (p *Printer) CheckItem(label, detail string) {
	p.item(styles.TextSuccessStyle.Render("✔"), label, detail)
}

func (p *Printer) WarnItem(label, detail string) {
	p.item(styles.TextWarningStyle.Render("●"), label, detail)
}

func (p *Printer) FailItem(label, detail string) {
	p.item(styles.TextErrorStyle.Render("✘"), label, detail)
}

func (p *Printer) line(w io.Writer, icon, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", icon, fmt.Sprintf(format, args...))
}

func (p *Printer) item(mark, label, detail string) {
	if detail == "" {
		_, _ = fmt.Fprintf(p.out, "  %s %s\n", mark, label)
		return
	}
	_, _ = fmt.Fprintf(p.out, "  %s %s %s\n", mark, label, styles.TextMutedStyle.Render(detail))
}
