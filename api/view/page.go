package view

import (
	"html/template"
	"io"

	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
)

type NavItem struct {
	Name   string
	Title  string
	Active bool
}

type RoleOption struct {
	Key      role.Role
	Label    string
	Selected bool
}

// Slot is one pane container in the page. HTML is set for panes rendered
// with the page; the others load from Src when shown.
type Slot struct {
	ID     string
	Title  string
	Src    string
	Active bool
	HTML   template.HTML
}

type PageData struct {
	Role      role.Role
	RoleLabel string
	Roles     []RoleOption
	Nav       []NavItem
	Page      pane.Page
	Tabbed    bool
	Slots     []Slot
	CanReset  bool
}

// NewPageData builds the shell around page for r. Only panes visible to r
// get a slot.
func NewPageData(r role.Role, page pane.Page, active string) PageData {
	d := PageData{
		Role:      r,
		RoleLabel: r.Label(),
		Page:      page,
		Tabbed:    page.Tabbed,
		CanReset:  page.Name == pane.Financial.Name && r.IsCorporate(),
	}
	for _, opt := range role.All() {
		d.Roles = append(d.Roles, RoleOption{Key: opt, Label: opt.Label(), Selected: opt == r})
	}
	for _, p := range pane.Pages() {
		if len(p.Visible(r)) == 0 {
			continue
		}
		d.Nav = append(d.Nav, NavItem{Name: p.Name, Title: p.Title, Active: p.Name == page.Name})
	}
	for _, p := range page.Visible(r) {
		d.Slots = append(d.Slots, Slot{
			ID:     p.ID,
			Title:  p.Title,
			Src:    "/fragment/" + page.Name + "/" + p.ID,
			Active: !page.Tabbed || p.ID == active,
		})
	}
	return d
}

// Fill places a rendered fragment into its slot.
func (d *PageData) Fill(f Fragment) {
	for i := range d.Slots {
		if Target(d.Slots[i].ID) == f.Target {
			d.Slots[i].HTML = f.HTML
			return
		}
	}
}

func RenderPage(w io.Writer, d PageData) error {
	return templates.ExecuteTemplate(w, "layout", d)
}
