package buffer

// Stats 记录分页内存的运行计数
type Stats struct {
	Hits       int64 // 访问时页面已常驻
	Faults     int64 // 访问触发了加载
	Evictions  int64 // 因内存压力被淘汰的页
	WriteBacks int64 // 写回磁盘的脏页（包括 Save 时的）
}
