package models

// Category is a sidebar filter entry. Built-in categories cannot be removed.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
	IsCustom bool   `json:"isCustom,omitempty"`
}
