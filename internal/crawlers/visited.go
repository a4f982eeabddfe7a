package crawlers

import "sort"

// VisitedSet 已访问URL集合
// 只由遍历控制路径读写(单写者),因此不加锁;集合只增不减
type VisitedSet struct {
	urls map[string]struct{}
}

// NewVisitedSet 创建空集合
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}

// Add 插入URL,已存在时返回false
func (v *VisitedSet) Add(u string) bool {
	if _, ok := v.urls[u]; ok {
		return false
	}
	v.urls[u] = struct{}{}
	return true
}

// Has 检查URL是否已访问
func (v *VisitedSet) Has(u string) bool {
	_, ok := v.urls[u]
	return ok
}

// Len 已访问URL数量
func (v *VisitedSet) Len() int {
	return len(v.urls)
}

// URLs 排序后的快照(用于报告)
func (v *VisitedSet) URLs() []string {
	result := make([]string, 0, len(v.urls))
	for u := range v.urls {
		result = append(result, u)
	}
	sort.Strings(result)
	return result
}
