package form

import "authform/internal/domain"

// Field is the rendering unit for one input. Its owner only ever sees it as a
// domain.Focuser.
type Field struct {
	name     domain.FieldName
	state    domain.FieldState
	dirty    bool
	validate func(string) domain.Validity
	renderer domain.FormRenderer
}

func newField(name domain.FieldName, renderer domain.FormRenderer) *Field {
	return &Field{
		name:     name,
		validate: validatorFor(name),
		renderer: renderer,
	}
}

func (f *Field) Focus() {
	f.renderer.Focus(f.name)
}

func (f *Field) change(value string) {
	f.state.Value = value
	f.dirty = true
}

func (f *Field) resolve() {
	f.state.Validity = f.validate(f.state.Value)
	f.dirty = false
}
