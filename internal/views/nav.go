package views

import "github.com/rahul4469/medi-buddy/internal/models"

// NavLink is one entry of the sidebar navigation.
type NavLink struct {
	Label  string
	Href   string
	Active bool
}

// Navigation builds the fixed link list: home, then one link per form.
func Navigation(forms []*models.FormSpec) []NavLink {
	links := make([]NavLink, 0, len(forms)+1)
	links = append(links, NavLink{Label: "Home", Href: "/"})
	for _, f := range forms {
		links = append(links, NavLink{Label: f.Title, Href: f.Path})
	}
	return links
}

// HighlightNav returns a copy of links with Active set on the links whose
// target equals currentPath. Every other link is explicitly inactive.
func HighlightNav(links []NavLink, currentPath string) []NavLink {
	out := make([]NavLink, len(links))
	for i, link := range links {
		link.Active = link.Href == currentPath || (currentPath == "/" && link.Href == "/")
		out[i] = link
	}
	return out
}
