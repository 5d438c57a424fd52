package projection

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// Template отображает проекцию предложения.
type Template interface {
	Name() string
	ContentType() string
	Render(w io.Writer, p Projection) error
}

// Registry выбирает шаблон по имени. Пустое имя означает шаблон по умолчанию.
type Registry struct {
	templates   map[string]Template
	defaultName string
}

func NewRegistry(defaultName string, templates ...Template) (*Registry, error) {
	r := &Registry{templates: make(map[string]Template, len(templates))}
	for _, t := range templates {
		r.templates[t.Name()] = t
	}
	if _, ok := r.templates[defaultName]; !ok {
		return nil, fmt.Errorf("projection: шаблон по умолчанию %q не зарегистрирован", defaultName)
	}
	r.defaultName = defaultName
	return r, nil
}

// DefaultRegistry регистрирует все встроенные шаблоны.
func DefaultRegistry(defaultName string) (*Registry, error) {
	if defaultName == "" {
		defaultName = TemplateClassic
	}
	return NewRegistry(defaultName, NewJSONTemplate(), NewMarkdownTemplate(), NewClassicTemplate())
}

func (r *Registry) Get(name string) (Template, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = r.defaultName
	}
	t, ok := r.templates[name]
	if !ok {
		return nil, apperror.New(apperror.ErrCodeBadRequest,
			fmt.Sprintf("неизвестный шаблон %q, доступны: %s", name, strings.Join(r.Names(), ", ")))
	}
	return t, nil
}

func (r *Registry) Default() string {
	return r.defaultName
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
