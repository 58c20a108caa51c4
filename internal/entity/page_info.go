package entity

// PageInfo is the pagination envelope returned with every character listing.
type PageInfo struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// HasNext reports whether the catalog has a page after this one.
func (p PageInfo) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// CharacterPage is one page of a character listing or search.
type CharacterPage struct {
	Info    PageInfo    `json:"info"`
	Results []Character `json:"results"`
}
