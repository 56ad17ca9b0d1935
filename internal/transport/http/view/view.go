// Package view 内嵌 HTML 模板；每个页面模板以文件名命名，公用 header/footer。
package view

import (
	"embed"
	"html/template"
	"net/url"
)

//go:embed templates/*.html
var files embed.FS

// 页面模板名
const (
	Catalog        = "catalog.html"
	Category       = "category.html"
	Item           = "item.html"
	CategoryForm   = "category_form.html"
	CategoryDelete = "category_delete.html"
	ItemForm       = "item_form.html"
	ItemDelete     = "item_delete.html"
	Login          = "login.html"
	Welcome        = "welcome.html"
	Error          = "error.html"
)

var funcs = template.FuncMap{
	// 名称里可能有空格
	"esc": url.PathEscape,
}

// Templates 模板内嵌于二进制，解析失败直接 panic
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/*.html"))
}
