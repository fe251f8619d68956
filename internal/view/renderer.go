// Package view はHTMLテンプレートの描画を提供する。
// テンプレートはバイナリに埋め込まれ、起動時にパースされる。
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages はレイアウトと組み合わせてパースするページテンプレート。
var pages = []string{
	"home.html",
	"category.html",
	"item.html",
	"item_add.html",
	"item_edit.html",
	"item_delete.html",
	"login.html",
}

// standalones はレイアウトを使わない単独テンプレート。
var standalones = []string{
	"welcome.html",
}

// Renderer はページテンプレートの描画を行う。
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer は埋め込みテンプレートをパースしてRendererを生成する。
func NewRenderer() (*Renderer, error) {
	templates := make(map[string]*template.Template)

	for _, page := range pages {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = t
	}

	for _, page := range standalones {
		t, err := template.ParseFS(templateFS, "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = t
	}

	return &Renderer{templates: templates}, nil
}

// PageData は全ページ共通のテンプレートデータ。
type PageData struct {
	Title     string
	Username  string
	Picture   string
	Flashes   []string
	CSRFToken string
	Data      any
}

// Render は指定ページをレイアウト込みで描画する。
func (r *Renderer) Render(w io.Writer, page string, data PageData) error {
	t, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown template: %s", page)
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	return nil
}

// RenderStandalone はレイアウトを使わない単独テンプレートを描画する。
func (r *Renderer) RenderStandalone(w io.Writer, page string, data any) error {
	t, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown template: %s", page)
	}
	if err := t.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	return nil
}

// CategoryView はテンプレート用のカテゴリ表現。
type CategoryView struct {
	ID   string
	Name string
}

// ItemView はテンプレート用のアイテム表現。
type ItemView struct {
	ID           string
	Name         string
	Description  string
	CategoryID   string
	CategoryName string
}

// HomeData はホームページのデータ。
type HomeData struct {
	Categories  []CategoryView
	LatestItems []ItemView
}

// CategoryData はカテゴリページのデータ。
type CategoryData struct {
	Category CategoryView
	Items    []ItemView
}

// ItemData はアイテム詳細ページのデータ。
type ItemData struct {
	Item    ItemView
	IsOwner bool
}

// ItemFormData はアイテム作成・編集フォームのデータ。
type ItemFormData struct {
	Item       ItemView
	Categories []CategoryView
}

// LoginData はログインページのデータ。
type LoginData struct {
	State    string
	ClientID string
}

// WelcomeData はログイン完了レスポンスのデータ。
type WelcomeData struct {
	Username string
	Picture  string
}
