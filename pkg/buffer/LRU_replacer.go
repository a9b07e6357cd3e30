package buffer

import (
	"blockmem/pkg/storage/page"
)

// LRUReplacer 负责决定淘汰哪个页面
// 页面数组本身就记录了 lastUse，所以这里不维护链表，每次扫描一遍找最旧的
type LRUReplacer struct{}

func NewLRUReplacer() *LRUReplacer {
	return &LRUReplacer{}
}

// Victim 返回常驻页面中 lastUse 最小的那个的下标
// lastUse 为 0 的页面（刚加载还没被访问）不参与淘汰
// lastUse 相同时取下标最小的；没有候选时返回 InvalidPageID
func (l *LRUReplacer) Victim(pages []*page.Page) page.PageID {
	victim := page.InvalidPageID
	var oldest uint64
	for i, p := range pages {
		if !p.IsLoaded() || p.LastUse() == 0 {
			continue
		}
		if victim == page.InvalidPageID || p.LastUse() < oldest {
			victim = page.PageID(i)
			oldest = p.LastUse()
		}
	}
	return victim
}
