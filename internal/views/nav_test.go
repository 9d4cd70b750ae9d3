package views

import (
	"testing"

	"github.com/rahul4469/medi-buddy/internal/models"
	"github.com/stretchr/testify/assert"
)

func testLinks() []NavLink {
	return []NavLink{
		{Label: "Home", Href: "/"},
		{Label: "Diabetes", Href: "/diabetes", Active: true},
		{Label: "Heart", Href: "/heart"},
	}
}

func TestHighlightNav(t *testing.T) {
	tests := []struct {
		path string
		want []bool
	}{
		{path: "/", want: []bool{true, false, false}},
		{path: "/heart", want: []bool{false, false, true}},
		{path: "/diabetes", want: []bool{false, true, false}},
		{path: "/unknown", want: []bool{false, false, false}},
		{path: "/heart/", want: []bool{false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := HighlightNav(testLinks(), tt.path)
			active := make([]bool, len(got))
			for i, l := range got {
				active[i] = l.Active
			}
			assert.Equal(t, tt.want, active)
		})
	}
}

func TestHighlightNavDoesNotMutateInput(t *testing.T) {
	links := testLinks()
	_ = HighlightNav(links, "/heart")

	assert.True(t, links[1].Active)
	assert.False(t, links[2].Active)
}

func TestNavigation(t *testing.T) {
	links := Navigation(models.DefaultForms())

	assert.Equal(t, NavLink{Label: "Home", Href: "/"}, links[0])
	assert.Len(t, links, 5)
	assert.Equal(t, "/diabetes", links[1].Href)
	assert.Equal(t, "/breast-cancer", links[4].Href)
}
