// internal/api/handler/web/handler.go
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/newthinker/pickboard/internal/dashboard"
	"go.uber.org/zap"
)

//go:embed templates/*
var templateFS embed.FS

// Board is what the web UI reads from and triggers.
type Board interface {
	Snapshot() dashboard.State
	Refresh(ctx context.Context) error
}

// Handler provides web UI handlers with template rendering
type Handler struct {
	// pageTemplates holds one instance per page: layout.html, the page and
	// the board fragment it embeds.
	pageTemplates map[string]*template.Template
	fragment      *template.Template
	board         Board
	logger        *zap.Logger
}

var pages = []string{"dashboard.html"}

var funcs = template.FuncMap{
	"loadingText": func() string { return dashboard.LoadingText },
	"emptyText":   func() string { return dashboard.EmptyText },
	"reasonLabel": func() string { return dashboard.ReasonLabel },
}

// NewHandler loads templates from templatesDir, falling back to the
// embedded set when it is empty.
func NewHandler(templatesDir string, board Board, logger *zap.Logger) (*Handler, error) {
	if templatesDir != "" {
		return NewHandlerWithFS(os.DirFS(templatesDir), board, logger)
	}
	return NewHandlerWithFS(TemplateFS(), board, logger)
}

// NewHandlerWithFS creates a web handler using a custom filesystem.
func NewHandlerWithFS(fsys fs.FS, board Board, logger *zap.Logger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pageTemplates := make(map[string]*template.Template)
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(fsys, "layout.html", page, "board.html")
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		pageTemplates[page] = tmpl
	}

	fragment, err := template.New("board.html").Funcs(funcs).ParseFS(fsys, "board.html")
	if err != nil {
		return nil, fmt.Errorf("parsing board fragment: %w", err)
	}

	return &Handler{
		pageTemplates: pageTemplates,
		fragment:      fragment,
		board:         board,
		logger:        logger,
	}, nil
}

// render executes the specified page template with the given data
func (h *Handler) render(w http.ResponseWriter, page string, data any) {
	tmpl, ok := h.pageTemplates[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		h.logger.Error("rendering page", zap.String("page", page), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// RenderBoard writes the board fragment for s.
func (h *Handler) RenderBoard(w io.Writer, s dashboard.State) error {
	return h.fragment.ExecuteTemplate(w, "board", dashboard.BuildView(s))
}

// TemplateFS returns the embedded template filesystem for external use.
func TemplateFS() fs.FS {
	subFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// This should never happen with valid embed directive
		return templateFS
	}
	return subFS
}
