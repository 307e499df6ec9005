// Package web 内嵌的 HTML 模板
package web

import (
	"embed"
	"html/template"
)

const (
	LoginTemplate = "reg/login.html"
	IndexTemplate = "reg/index.html"
)

//go:embed templates/reg/*.html
var templatesFS embed.FS

// Templates 解析全部模板；模板以 {{define "reg/xxx.html"}} 命名
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/reg/*.html")
}
