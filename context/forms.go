package context

import (
	"context"

	"github.com/rahul4469/medi-buddy/internal/models"
)

type contextkey string

const (
	formKey contextkey = "form"
)

// ContextSetForm binds the resolved prediction form to ctx.
func ContextSetForm(ctx context.Context, form *models.FormSpec) context.Context {
	return context.WithValue(ctx, formKey, form)
}

// ContextGetForm retrieves the prediction form from request context.
// Returns nil if no form was resolved for the request.
func ContextGetForm(ctx context.Context) *models.FormSpec {
	val := ctx.Value(formKey)
	form, ok := val.(*models.FormSpec)
	if !ok {
		return nil
	}
	return form
}
