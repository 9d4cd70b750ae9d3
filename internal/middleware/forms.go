package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/rahul4469/medi-buddy/context"
	"github.com/rahul4469/medi-buddy/internal/models"
)

// FormParam is the chi URL parameter holding the form id.
const FormParam = "form"

type FormMiddleware struct {
	forms *models.FormRegistry
}

func NewFormMiddleware(forms *models.FormRegistry) *FormMiddleware {
	return &FormMiddleware{
		forms: forms,
	}
}

// SetForm resolves the {form} URL parameter and stores the form in the
// request context. Unknown ids get a 404: a page without a form has no
// submission handler.
func (m *FormMiddleware) SetForm(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		form, err := m.forms.ByID(chi.URLParam(r, FormParam))
		if err != nil {
			http.NotFound(w, r)
			return
		}

		ctx := context.ContextSetForm(r.Context(), form)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}

// LegacyPages redirects the old /static/html/{name}.html page paths to the
// current ones. index.html goes to the home page.
func (m *FormMiddleware) LegacyPages(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	if page == "index" {
		http.Redirect(w, r, "/", http.StatusMovedPermanently)
		return
	}

	form, err := m.forms.ByID(page)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, form.Path, http.StatusMovedPermanently)
}

// Plaintext marks requests as plain HTTP for gorilla/csrf, which otherwise
// assumes TLS and enforces a same-origin Referer. Only mount it when the
// server is not behind HTTPS.
func Plaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// HELPER FUNCS --------------------------------------------

// MustCurrentForm returns the form resolved by SetForm. It panics if no form is found.
// Only use this in handlers mounted behind SetForm.
func MustCurrentForm(r *http.Request) *models.FormSpec {
	form := context.ContextGetForm(r.Context())
	if form == nil {
		panic("MustCurrentForm called without SetForm middleware")
	}
	return form
}
