package models

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// csrfFieldName is the hidden field gorilla/csrf reads; it is never
// forwarded to the prediction service.
const csrfFieldName = "gorilla.csrf.Token"

// Field is one input on a prediction form.
type Field struct {
	Name  string
	Label string
}

// FormSpec configures one prediction page.
type FormSpec struct {
	ID    string
	Title string

	// Path is where the page is served, e.g. "/diabetes".
	Path string

	// EndpointPath is appended to the prediction service base URL.
	EndpointPath string

	// NegativeIndicator is the phrase whose presence in a result means
	// the disease was not predicted.
	NegativeIndicator string

	Fields []Field
}

// Payload encodes the submitted values form-urlencoded. Declared fields come
// first in declaration order, then any extra fields sorted by name. Values are
// forwarded as entered.
func (f *FormSpec) Payload(values url.Values) string {
	var buf strings.Builder
	seen := make(map[string]bool, len(f.Fields))

	write := func(key string, vals []string) {
		for _, v := range vals {
			if buf.Len() > 0 {
				buf.WriteByte('&')
			}
			buf.WriteString(url.QueryEscape(key))
			buf.WriteByte('=')
			buf.WriteString(url.QueryEscape(v))
		}
	}

	for _, field := range f.Fields {
		seen[field.Name] = true
		if vals, ok := values[field.Name]; ok {
			write(field.Name, vals)
		}
	}

	extra := make([]string, 0, len(values))
	for key := range values {
		if !seen[key] && key != csrfFieldName {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		write(key, values[key])
	}

	return buf.String()
}

func (f *FormSpec) validate() error {
	switch {
	case f.ID == "":
		return FormError{Issue: "missing id"}
	case !strings.HasPrefix(f.Path, "/"):
		return FormError{Issue: fmt.Sprintf("%s: path must start with /", f.ID)}
	case !strings.HasPrefix(f.EndpointPath, "/"):
		return FormError{Issue: fmt.Sprintf("%s: endpoint path must start with /", f.ID)}
	case f.NegativeIndicator == "":
		return FormError{Issue: fmt.Sprintf("%s: negative indicator is required", f.ID)}
	}
	return nil
}

// FormRegistry holds the configured forms in page order.
type FormRegistry struct {
	forms []*FormSpec
	byID  map[string]*FormSpec
}

// NewFormRegistry validates and indexes the given forms.
func NewFormRegistry(forms ...*FormSpec) (*FormRegistry, error) {
	reg := &FormRegistry{
		forms: make([]*FormSpec, 0, len(forms)),
		byID:  make(map[string]*FormSpec, len(forms)),
	}
	for _, f := range forms {
		if err := f.validate(); err != nil {
			return nil, err
		}
		if _, exists := reg.byID[f.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateForm, f.ID)
		}
		reg.forms = append(reg.forms, f)
		reg.byID[f.ID] = f
	}
	return reg, nil
}

// ByID returns the form with the given id.
func (r *FormRegistry) ByID(id string) (*FormSpec, error) {
	f, ok := r.byID[id]
	if !ok {
		return nil, ErrFormNotFound
	}
	return f, nil
}

// All returns the forms in registration order.
func (r *FormRegistry) All() []*FormSpec {
	out := make([]*FormSpec, len(r.forms))
	copy(out, r.forms)
	return out
}

// DefaultForms returns the four prediction pages the service supports.
func DefaultForms() []*FormSpec {
	return []*FormSpec{
		{
			ID:                "diabetes",
			Title:             "Diabetes Prediction",
			Path:              "/diabetes",
			EndpointPath:      "/predict/diabetes",
			NegativeIndicator: "not diabetic",
			Fields: []Field{
				{Name: "pregnancies", Label: "Number of Pregnancies"},
				{Name: "glucose", Label: "Glucose Level"},
				{Name: "bloodpressure", Label: "Blood Pressure"},
				{Name: "skinthickness", Label: "Skin Thickness"},
				{Name: "insulin", Label: "Insulin Level"},
				{Name: "bmi", Label: "BMI"},
				{Name: "diabetespedigree", Label: "Diabetes Pedigree Function"},
				{Name: "age", Label: "Age"},
			},
		},
		{
			ID:                "heart",
			Title:             "Heart Disease Prediction",
			Path:              "/heart",
			EndpointPath:      "/predict/heart",
			NegativeIndicator: "does not have",
			Fields: []Field{
				{Name: "age", Label: "Age"},
				{Name: "sex", Label: "Sex (1 = male, 0 = female)"},
				{Name: "cp", Label: "Chest Pain Type"},
				{Name: "trestbps", Label: "Resting Blood Pressure"},
				{Name: "chol", Label: "Serum Cholesterol"},
				{Name: "fbs", Label: "Fasting Blood Sugar > 120 mg/dl"},
				{Name: "restecg", Label: "Resting ECG Results"},
				{Name: "thalach", Label: "Maximum Heart Rate"},
				{Name: "exang", Label: "Exercise Induced Angina"},
				{Name: "oldpeak", Label: "ST Depression"},
				{Name: "slope", Label: "Slope of Peak Exercise ST"},
				{Name: "ca", Label: "Major Vessels Colored"},
				{Name: "thal", Label: "Thal"},
			},
		},
		{
			ID:                "parkinsons",
			Title:             "Parkinson's Disease Prediction",
			Path:              "/parkinsons",
			EndpointPath:      "/predict/parkinsons",
			NegativeIndicator: "does not have",
			Fields: []Field{
				{Name: "fo", Label: "MDVP:Fo (Hz)"},
				{Name: "fhi", Label: "MDVP:Fhi (Hz)"},
				{Name: "flo", Label: "MDVP:Flo (Hz)"},
				{Name: "jitter_percent", Label: "MDVP:Jitter (%)"},
				{Name: "jitter_abs", Label: "MDVP:Jitter (Abs)"},
				{Name: "rap", Label: "MDVP:RAP"},
				{Name: "ppq", Label: "MDVP:PPQ"},
				{Name: "ddp", Label: "Jitter:DDP"},
				{Name: "shimmer", Label: "MDVP:Shimmer"},
				{Name: "shimmer_db", Label: "MDVP:Shimmer (dB)"},
				{Name: "apq3", Label: "Shimmer:APQ3"},
				{Name: "apq5", Label: "Shimmer:APQ5"},
				{Name: "apq", Label: "MDVP:APQ"},
				{Name: "dda", Label: "Shimmer:DDA"},
				{Name: "nhr", Label: "NHR"},
				{Name: "hnr", Label: "HNR"},
				{Name: "rpde", Label: "RPDE"},
				{Name: "dfa", Label: "DFA"},
				{Name: "spread1", Label: "Spread1"},
				{Name: "spread2", Label: "Spread2"},
				{Name: "d2", Label: "D2"},
				{Name: "ppe", Label: "PPE"},
			},
		},
		{
			ID:                "breast-cancer",
			Title:             "Breast Cancer Prediction",
			Path:              "/breast-cancer",
			EndpointPath:      "/predict/breast-cancer",
			NegativeIndicator: "Benign",
			Fields:            breastCancerFields(),
		},
	}
}

// breastCancerFields expands the ten cell measurements into their mean,
// error and worst variants.
func breastCancerFields() []Field {
	measures := []struct{ key, label string }{
		{"radius", "Radius"},
		{"texture", "Texture"},
		{"perimeter", "Perimeter"},
		{"area", "Area"},
		{"smoothness", "Smoothness"},
		{"compactness", "Compactness"},
		{"concavity", "Concavity"},
		{"concave_points", "Concave Points"},
		{"symmetry", "Symmetry"},
		{"fractal_dimension", "Fractal Dimension"},
	}

	fields := make([]Field, 0, len(measures)*3)
	for _, m := range measures {
		fields = append(fields, Field{Name: "mean_" + m.key, Label: "Mean " + m.label})
	}
	for _, m := range measures {
		fields = append(fields, Field{Name: m.key + "_error", Label: m.label + " Error"})
	}
	for _, m := range measures {
		fields = append(fields, Field{Name: "worst_" + m.key, Label: "Worst " + m.label})
	}
	return fields
}
