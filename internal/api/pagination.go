package api

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

// Pager reads page/limit query params within configured bounds.
type Pager struct {
	DefaultSize int
	MaxSize     int
}

func (p Pager) Parse(c *gin.Context) types.PageRequest {
	page := positiveInt(c.Query("page"), 1)
	limit := positiveInt(c.Query("limit"), p.DefaultSize)
	if p.MaxSize > 0 && limit > p.MaxSize {
		limit = p.MaxSize
	}
	if maxPage := types.MaxPage(limit); page > maxPage {
		page = maxPage
	}
	return types.PageRequest{Page: page, Limit: limit}
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// paginate wraps one page of results with absolute next/previous links.
func paginate[T any](c *gin.Context, req types.PageRequest, total int64, results []T) types.PaginatedResponse[T] {
	if results == nil {
		results = []T{}
	}
	resp := types.PaginatedResponse[T]{Count: total, Results: results}
	if int64(req.Page)*int64(req.Limit) < total {
		next := pageURL(c, req.Page+1)
		resp.Next = &next
	}
	if req.Page > 1 {
		prev := pageURL(c, req.Page-1)
		resp.Previous = &prev
	}
	return resp
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}

	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
