package types

func NewPagination(filter Filter, total uint64) Pagination {
	p := Pagination{TotalCount: total, Page: filter.Page, Limit: filter.Limit}
	if filter.Limit > 0 {
		p.TotalPages = int((total + uint64(filter.Limit) - 1) / uint64(filter.Limit))
	}
	return p
}
