package domain

// JSON 导出视图，字段名与既有客户端保持一致

type ItemView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	CatID       uint   `json:"cat_id"`
	Description string `json:"description"`
}

type CategoryView struct {
	ID    uint       `json:"id"`
	Name  string     `json:"name"`
	Items []ItemView `json:"Item,omitempty"`
}

func (i Item) View() ItemView {
	return ItemView{ID: i.ID, Name: i.Name, CatID: i.CategoryID, Description: i.Description}
}

func (c Category) View() CategoryView { return CategoryView{ID: c.ID, Name: c.Name} }

func ItemViews(items []Item) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, it.View())
	}
	return out
}

type CatalogExport struct {
	Category []CategoryView `json:"Category"`
}

type ItemsExport struct {
	Items []ItemView `json:"items"`
}

type ItemExport struct {
	Item []ItemView `json:"item"`
}
