package model

import (
	"path"
	"strings"
	"time"
)

// TitleMaxLen 标题最大长度
const TitleMaxLen = 150

// ImageUploadDir Table2 图片上传目录（相对 media 根目录）
const ImageUploadDir = "reg/image"

// Table1 文本记录
type Table1 struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title" gorm:"type:varchar(150);not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Table1) TableName() string { return "table1" }

func (t Table1) String() string { return t.Title }

// Table2 带图片的文本记录
type Table2 struct {
	ID    uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Title string `json:"title" gorm:"type:varchar(150);not null"`
	Body  string `json:"body" gorm:"type:text;not null"`
	// Image 相对 media 根目录的路径，如 reg/image/xxx.png
	Image     string    `json:"image" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Table2) TableName() string { return "table2" }

func (t Table2) String() string { return t.Title }

// ImageURL 拼接 media URL 前缀与图片相对路径
func (t Table2) ImageURL(prefix string) string {
	if t.Image == "" {
		return ""
	}
	return path.Join("/", strings.Trim(prefix, "/"), t.Image)
}

// Meta 记录类型的展示名称
type Meta struct {
	VerboseName       string
	VerboseNamePlural string
	TitleLabel        string
	BodyLabel         string
	ImageLabel        string
}

var (
	Table1Meta = Meta{VerboseName: "title", VerboseNamePlural: "titles", TitleLabel: "Назва", BodyLabel: "text"}
	Table2Meta = Meta{VerboseName: "title2", VerboseNamePlural: "titles2", TitleLabel: "Назва2", BodyLabel: "text", ImageLabel: "foto"}
)
