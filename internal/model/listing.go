package model

// 模板上下文中两类记录的键名
const (
	ContextKeyTable2 = "tab_list"
	ContextKeyTable1 = "tab_L"
)

// Listing 列表页数据：两类记录的全量快照
type Listing struct {
	Table2 []Table2 `json:"tab_list"`
	Table1 []Table1 `json:"tab_L"`
}

// Context 生成模板上下文，集合为空时也返回非 nil 切片
func (l *Listing) Context() map[string]any {
	t1, t2 := l.Table1, l.Table2
	if t1 == nil {
		t1 = []Table1{}
	}
	if t2 == nil {
		t2 = []Table2{}
	}
	return map[string]any{
		ContextKeyTable2: t2,
		ContextKeyTable1: t1,
	}
}
