package models

import (
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadKeepsDeclaredOrder(t *testing.T) {
	form := &FormSpec{
		ID:     "heart",
		Fields: []Field{{Name: "age"}, {Name: "sex"}, {Name: "cp"}},
	}
	values := url.Values{
		"cp":                 {"2"},
		"age":                {"63"},
		"sex":                {"1"},
		"zeta":               {"x y"},
		"alpha":              {"a&b"},
		"gorilla.csrf.Token": {"secret"},
	}

	assert.Equal(t, "age=63&sex=1&cp=2&alpha=a%26b&zeta=x+y", form.Payload(values))
}

func TestPayloadForwardsValuesAsEntered(t *testing.T) {
	form := &FormSpec{ID: "diabetes", Fields: []Field{{Name: "glucose"}, {Name: "age"}}}
	values := url.Values{"glucose": {"not-a-number"}, "age": {""}}

	assert.Equal(t, "glucose=not-a-number&age=", form.Payload(values))
}

func TestPayloadSkipsMissingFields(t *testing.T) {
	form := &FormSpec{ID: "diabetes", Fields: []Field{{Name: "glucose"}, {Name: "age"}}}

	assert.Equal(t, "age=40", form.Payload(url.Values{"age": {"40"}}))
	assert.Equal(t, "", form.Payload(nil))
}

func TestDefaultFormsRegister(t *testing.T) {
	reg, err := NewFormRegistry(DefaultForms()...)
	require.NoError(t, err)

	all := reg.All()
	require.Len(t, all, 4)
	assert.Equal(t, "diabetes", all[0].ID)

	diabetes, err := reg.ByID("diabetes")
	require.NoError(t, err)
	assert.Equal(t, "/predict/diabetes", diabetes.EndpointPath)
	assert.Equal(t, "not diabetic", diabetes.NegativeIndicator)
	assert.Len(t, diabetes.Fields, 8)

	heart, err := reg.ByID("heart")
	require.NoError(t, err)
	assert.Equal(t, "/predict/heart", heart.EndpointPath)
	assert.Equal(t, "does not have", heart.NegativeIndicator)
	assert.Len(t, heart.Fields, 13)

	parkinsons, err := reg.ByID("parkinsons")
	require.NoError(t, err)
	assert.Len(t, parkinsons.Fields, 22)

	cancer, err := reg.ByID("breast-cancer")
	require.NoError(t, err)
	assert.Len(t, cancer.Fields, 30)
	assert.Equal(t, "mean_radius", cancer.Fields[0].Name)
	assert.Equal(t, "radius_error", cancer.Fields[10].Name)
	assert.Equal(t, "worst_fractal_dimension", cancer.Fields[29].Name)
}

func TestFormRegistryErrors(t *testing.T) {
	_, err := NewFormRegistry(
		&FormSpec{ID: "a", Path: "/a", EndpointPath: "/predict/a", NegativeIndicator: "no"},
		&FormSpec{ID: "a", Path: "/b", EndpointPath: "/predict/b", NegativeIndicator: "no"},
	)
	assert.ErrorIs(t, err, ErrDuplicateForm)

	_, err = NewFormRegistry(&FormSpec{ID: "a", Path: "/a", EndpointPath: "/predict/a"})
	var formErr FormError
	assert.ErrorAs(t, err, &formErr)

	_, err = NewFormRegistry(&FormSpec{ID: "a", Path: "a", EndpointPath: "/predict/a", NegativeIndicator: "no"})
	assert.ErrorAs(t, err, &formErr)

	reg, err := NewFormRegistry()
	require.NoError(t, err)
	_, err = reg.ByID("diabetes")
	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestNewPredictionEvent(t *testing.T) {
	banner := RenderOutcome(NewBanner(), DomainError{Message: "bad"}, "no")
	event := NewPredictionEvent("heart", DomainError{Message: "bad"}, banner, 0)

	assert.Equal(t, "heart", event.FormID)
	assert.Equal(t, KindDomainError, event.Kind)
	assert.Equal(t, ToneWarning, event.Tone)
	assert.NotEqual(t, uuid.Nil, event.ID)
}
