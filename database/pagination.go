package database

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jinzhu/gorm"
)

var orderColumn = regexp.MustCompile(`^[a-z_]+$`)

// PaginationParams is embedded in api requests that return lists
type PaginationParams struct {
	Limit   int32  `json:"limit"`
	Offset  int32  `json:"offset"`
	Order   string `json:"order"`
	OrderBy string `json:"orderby"`
}

type PaginationResponse struct {
	TotalRecords int `json:"totalrecords"`
	Records      int `json:"records"`
}

// Default fills in any unset fields
func (p *PaginationParams) Default(limit int32, order, orderBy string) *PaginationParams {
	if p.Limit <= 0 {
		p.Limit = limit
	}
	if p.Order == "" {
		p.Order = order
	}
	if p.OrderBy == "" {
		p.OrderBy = orderBy
	}
	return p
}

// Max caps the limit
func (p *PaginationParams) Max(limit int32) *PaginationParams {
	if p.Limit > limit {
		p.Limit = limit
	}
	return p
}

// SimplePagination applies the params to the query. The order column is user
// input, so it is checked before going anywhere near the sql.
func SimplePagination(db *gorm.DB, p PaginationParams) (*gorm.DB, error) {
	order := strings.ToLower(p.Order)
	if order != "asc" && order != "desc" {
		return nil, fmt.Errorf("order must be 'asc' or 'desc'")
	}
	if !orderColumn.MatchString(p.OrderBy) {
		return nil, fmt.Errorf("invalid order by column")
	}
	if p.Offset < 0 {
		return nil, fmt.Errorf("offset cannot be negative")
	}

	return db.Order(fmt.Sprintf("%s %s", p.OrderBy, order)).Limit(p.Limit).Offset(p.Offset), nil
}

// TotalCount counts the rows the query would return without its pagination.
func TotalCount(db *gorm.DB) (int, error) {
	var total int
	if err := db.Limit(-1).Offset(-1).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
